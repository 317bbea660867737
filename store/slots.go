package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidSlot = errors.New("invalid slot name")
)

// Fixed slot names. Preferences live under PreferencePrefix + name.
const (
	SlotDashboards   = "dashboards"
	SlotWidgets      = "widgets"
	PreferencePrefix = "pref."
)

var slotName = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// SlotStore persists whole JSON documents under fixed names. A write replaces
// the previous document; there are no partial writes or transactions.
type SlotStore interface {
	// Read returns the stored document and false when the slot was never written.
	Read(ctx context.Context, slot string) ([]byte, bool, error)
	Write(ctx context.Context, slot string, data []byte) error
}

func validateSlot(slot string) error {
	if !slotName.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}
