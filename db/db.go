package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"dashboard-service/config"
)

// Schema creates the table backing store.PostgresSlots.
const Schema = `CREATE TABLE IF NOT EXISTS slots (
    name       TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DSN builds a lib/pq connection string.
func DSN(pg config.Postgres) string {
	sslMode := pg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultSSLMode
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Name, sslMode)
	if pg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", pg.Password)
	}
	return dsn
}

// Open connects to PostgreSQL and pings it.
func Open(ctx context.Context, pg config.Postgres) (*sql.DB, error) {
	conn, err := sql.Open("postgres", DSN(pg))
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error pinging database %s on %s:%d: %w", pg.Name, pg.Host, pg.Port, err)
	}
	return conn, nil
}

// EnsureSchema applies Schema; it is safe to run on every start.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
