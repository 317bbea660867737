package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"dashboard-service/models"
)

// Collection is the repository for one kind of saved entity. All records live
// in a single slot that is rewritten wholesale on every mutation, so the last
// writer wins.
type Collection[E models.Entity[E]] struct {
	mu     sync.Mutex
	slots  SlotStore
	slot   string
	logger *slog.Logger
	now    func() time.Time
}

// NewCollection returns a repository over slot. A nil logger uses slog.Default.
func NewCollection[E models.Entity[E]](slots SlotStore, slot string, logger *slog.Logger) *Collection[E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[E]{
		slots:  slots,
		slot:   slot,
		logger: logger.With("slot", slot),
		now:    time.Now,
	}
}

// NewDashboards returns the dashboards repository.
func NewDashboards(slots SlotStore, logger *slog.Logger) *Collection[*models.Dashboard] {
	return NewCollection[*models.Dashboard](slots, SlotDashboards, logger)
}

// NewWidgets returns the widgets repository.
func NewWidgets(slots SlotStore, logger *slog.Logger) *Collection[*models.Widget] {
	return NewCollection[*models.Widget](slots, SlotWidgets, logger)
}

// SetClock replaces the time source used for timestamps.
func (c *Collection[E]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// List returns every record in stored order (newest first).
func (c *Collection[E]) List(ctx context.Context) ([]E, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Get returns the record with id or ErrNotFound.
func (c *Collection[E]) Get(ctx context.Context, id string) (E, error) {
	var zero E
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, fmt.Errorf("%s %q: %w", c.slot, id, ErrNotFound)
}

// Save creates the record when it has no id (or an id not yet stored) and
// replaces the stored one otherwise. CreatedAt survives updates and UpdatedAt
// never moves backwards. The saved copy is returned; e itself is not modified.
func (c *Collection[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	if err := e.Validate(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}

	rec := e.Clone()
	rec.Normalize()
	now := c.now().UTC()

	if rec.GetID() == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return zero, fmt.Errorf("error generating id: %w", err)
		}
		rec.SetID(id.String())
	}

	next := make([]E, 0, len(items)+1)
	if i := indexOf(items, rec.GetID()); i >= 0 {
		prev := items[i]
		updated := now
		if prev.Updated().After(updated) {
			updated = prev.Updated()
		}
		rec.SetTimestamps(prev.Created(), updated)
		next = append(next, items...)
		next[i] = rec
	} else {
		rec.SetTimestamps(now, now)
		next = append(next, rec)
		next = append(next, items...)
	}

	if err := c.write(ctx, next); err != nil {
		return zero, err
	}
	return rec.Clone(), nil
}

// Delete removes the record with id, or returns ErrNotFound.
func (c *Collection[E]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", c.slot, id, ErrNotFound)
	}

	next := make([]E, 0, len(items)-1)
	next = append(next, items[:i]...)
	next = append(next, items[i+1:]...)
	return c.write(ctx, next)
}

// load reads the slot. An unparseable document is logged and treated as an
// empty collection; records missing fields are filled with defaults. Records
// without a usable id get one derived from their position and bytes, so every
// load of the same document yields the same ids until a write persists them.
func (c *Collection[E]) load(ctx context.Context) ([]E, error) {
	data, ok, err := c.slots.Read(ctx, c.slot)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", c.slot, err)
	}
	if !ok || len(data) == 0 {
		return []E{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("discarding malformed collection", "error", err)
		return []E{}, nil
	}

	items := make([]E, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		var e E
		if err := json.Unmarshal(r, &e); err != nil {
			c.logger.Warn("skipping malformed record", "index", i, "error", err)
			continue
		}
		if isNil(e) {
			continue
		}
		e.Normalize()
		if e.GetID() == "" || seen[e.GetID()] {
			id := recoveredID(c.slot, i, r)
			c.logger.Warn("assigning id to stored record", "previous", e.GetID(), "id", id)
			e.SetID(id)
		}
		seen[e.GetID()] = true
		items = append(items, e)
	}
	return items, nil
}

func (c *Collection[E]) write(ctx context.Context, items []E) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", c.slot, err)
	}
	if err := c.slots.Write(ctx, c.slot, data); err != nil {
		return fmt.Errorf("error saving %s: %w", c.slot, err)
	}
	return nil
}

func recoveredID(slot string, index int, raw []byte) string {
	name := fmt.Sprintf("%s/%d/%s", slot, index, raw)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func indexOf[E models.Entity[E]](items []E, id string) int {
	for i, e := range items {
		if e.GetID() == id {
			return i
		}
	}
	return -1
}

// isNil catches null entries in the stored array, which decode to nil pointers.
func isNil[E any](e E) bool {
	v := reflect.ValueOf(any(e))
	return !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil())
}
