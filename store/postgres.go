package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresSlots stores slots as rows of the slots table (see db.EnsureSchema).
type PostgresSlots struct {
	db *sql.DB
}

func NewPostgresSlots(db *sql.DB) *PostgresSlots {
	return &PostgresSlots{db: db}
}

func (p *PostgresSlots) Read(ctx context.Context, slot string) ([]byte, bool, error) {
	if err := validateSlot(slot); err != nil {
		return nil, false, err
	}
	query := `SELECT value FROM slots WHERE name = $1`

	var value []byte
	err := p.db.QueryRowContext(ctx, query, slot).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading slot %s: %w", slot, err)
	}
	return value, true, nil
}

func (p *PostgresSlots) Write(ctx context.Context, slot string, data []byte) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	query := `INSERT INTO slots (name, value, updated_at)
              VALUES ($1, $2::jsonb, $3)
              ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := p.db.ExecContext(ctx, query, slot, string(data), time.Now()); err != nil {
		return fmt.Errorf("error writing slot %s: %w", slot, err)
	}
	return nil
}
