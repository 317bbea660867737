package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-service/tree"
)

// ErrNameRequired is returned when a dashboard or widget is saved without a name.
var ErrNameRequired = errors.New("name is required")

// UntitledName replaces a blank name on records read back from storage.
const UntitledName = "Untitled"

// Entity is a saved record kept in a persisted collection.
type Entity[E any] interface {
	GetID() string
	SetID(id string)
	GetName() string
	GetTags() []string
	Created() time.Time
	Updated() time.Time
	SetTimestamps(created, updated time.Time)
	// Count is the number of meaningful components the record holds.
	Count() int
	// Recount derives Count from the record's payload.
	Recount()
	// Normalize fills defaults on a record read from storage.
	Normalize()
	// Validate is run before the record is saved.
	Validate() error
	Clone() E
}

// Dashboard is a saved tiling layout whose tabs host widgets.
type Dashboard struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Layout          json.RawMessage `json:"layout"`
	Tags            []string        `json:"tags"`
	Public          bool            `json:"public"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ComponentsCount int             `json:"componentsCount"`
}

func (d *Dashboard) GetID() string      { return d.ID }
func (d *Dashboard) SetID(id string)    { d.ID = id }
func (d *Dashboard) GetName() string    { return d.Name }
func (d *Dashboard) GetTags() []string  { return d.Tags }
func (d *Dashboard) Created() time.Time { return d.CreatedAt }
func (d *Dashboard) Updated() time.Time { return d.UpdatedAt }
func (d *Dashboard) Count() int         { return d.ComponentsCount }
func (d *Dashboard) IsPublic() bool     { return d.Public }

func (d *Dashboard) SetTimestamps(created, updated time.Time) {
	d.CreatedAt = created
	d.UpdatedAt = updated
}

// Recount leaves the count at zero when the layout cannot be parsed.
func (d *Dashboard) Recount() {
	n, err := CountLayoutComponents(d.Layout)
	if err != nil {
		n = 0
	}
	d.ComponentsCount = n
}

func (d *Dashboard) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = UntitledName
	}
	if len(d.Layout) == 0 || string(d.Layout) == "null" {
		d.Layout = append(json.RawMessage(nil), DefaultLayout...)
	}
	d.Tags = NormalizeTags(d.Tags)
	d.Recount()
}

func (d *Dashboard) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if len(d.Layout) > 0 {
		if _, err := ParseLayout(d.Layout); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dashboard) Clone() *Dashboard {
	c := *d
	c.Layout = append(json.RawMessage(nil), d.Layout...)
	c.Tags = cloneStrings(d.Tags)
	return &c
}

// Widget is a saved component tree authored in the widget editor.
type Widget struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Components      []ComponentNode `json:"components"`
	Tags            []string        `json:"tags"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ComponentsCount int             `json:"componentsCount"`
}

func (w *Widget) GetID() string      { return w.ID }
func (w *Widget) SetID(id string)    { w.ID = id }
func (w *Widget) GetName() string    { return w.Name }
func (w *Widget) GetTags() []string  { return w.Tags }
func (w *Widget) Created() time.Time { return w.CreatedAt }
func (w *Widget) Updated() time.Time { return w.UpdatedAt }
func (w *Widget) Count() int         { return w.ComponentsCount }

func (w *Widget) SetTimestamps(created, updated time.Time) {
	w.CreatedAt = created
	w.UpdatedAt = updated
}

func (w *Widget) Recount() {
	w.ComponentsCount = CountComponents(w.Components)
}

func (w *Widget) Normalize() {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		w.Name = UntitledName
	}
	if w.Components == nil {
		w.Components = []ComponentNode{}
	}
	w.Tags = NormalizeTags(w.Tags)
	w.Recount()
}

func (w *Widget) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrNameRequired
	}
	if err := ValidateTree(w.Components); err != nil {
		return fmt.Errorf("widget %q: %w", w.Name, err)
	}
	return nil
}

func (w *Widget) Clone() *Widget {
	c := *w
	c.Components = tree.Clone(w.Components)
	c.Tags = cloneStrings(w.Tags)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
