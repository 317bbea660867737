package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// Preference flags understood by the service.
const (
	PrefAskBeforeDeleteDashboard = "ask-before-delete-dashboard"
	PrefAskBeforeDeleteWidget    = "ask-before-delete-widget"
)

var preferenceDefaults = map[string]bool{
	PrefAskBeforeDeleteDashboard: true,
	PrefAskBeforeDeleteWidget:    true,
}

// PreferenceDefault returns the default of a known flag.
func PreferenceDefault(name string) (bool, bool) {
	v, ok := preferenceDefaults[name]
	return v, ok
}

// PreferenceNames lists the known flags in alphabetical order.
func PreferenceNames() []string {
	names := make([]string, 0, len(preferenceDefaults))
	for name := range preferenceDefaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preferences stores boolean flags as JSON booleans, one slot per flag.
type Preferences struct {
	slots  SlotStore
	logger *slog.Logger
}

func NewPreferences(slots SlotStore, logger *slog.Logger) *Preferences {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{slots: slots, logger: logger}
}

// Bool returns the stored flag, or def when it was never set or holds
// something other than a JSON boolean.
func (p *Preferences) Bool(ctx context.Context, name string, def bool) (bool, error) {
	data, ok, err := p.slots.Read(ctx, PreferencePrefix+name)
	if err != nil {
		return def, fmt.Errorf("error reading preference %s: %w", name, err)
	}
	if !ok {
		return def, nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		p.logger.Warn("ignoring malformed preference", "name", name, "error", err)
		return def, nil
	}
	return v, nil
}

func (p *Preferences) SetBool(ctx context.Context, name string, v bool) error {
	data, _ := json.Marshal(v)
	if err := p.slots.Write(ctx, PreferencePrefix+name, data); err != nil {
		return fmt.Errorf("error saving preference %s: %w", name, err)
	}
	return nil
}
