package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-service/models"
)

// failingSlots wraps MemorySlots and fails every write while fail is set.
type failingSlots struct {
	*MemorySlots
	fail bool
}

func (f *failingSlots) Write(ctx context.Context, slot string, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemorySlots.Write(ctx, slot, data)
}

// clock hands out the queued times in order, then repeats the last one.
type clock struct {
	times []time.Time
}

func (c *clock) now() time.Time {
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func labelNode(id, content string) models.ComponentNode {
	return models.ComponentNode{ID: id, Content: models.Component{Kind: models.KindLabel, Props: models.LabelProps{Content: content, FontSize: 14}}}
}

func TestCollectionSaveCreates(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	widgets := NewWidgets(NewMemorySlots(), quietLogger(&logs))
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	widgets.SetClock(func() time.Time { return t0 })

	in := &models.Widget{
		Name:       "Login form",
		Tags:       []string{"Auth", "auth"},
		Components: []models.ComponentNode{labelNode("l1", "Hi"), labelNode("l2", "")},
	}
	saved, err := widgets.Save(ctx, in)
	require.NoError(t, err)

	id, err := uuid.Parse(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Empty(t, in.ID, "caller's value is not modified")
	assert.Equal(t, t0, saved.CreatedAt)
	assert.Equal(t, t0, saved.UpdatedAt)
	assert.Equal(t, []string{"auth"}, saved.Tags)
	assert.Equal(t, 1, saved.ComponentsCount)

	got, err := widgets.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestCollectionNewRecordsArePrepended(t *testing.T) {
	ctx := context.Background()
	dashboards := NewDashboards(NewMemorySlots(), nil)

	first, err := dashboards.Save(ctx, &models.Dashboard{Name: "first"})
	require.NoError(t, err)
	second, err := dashboards.Save(ctx, &models.Dashboard{Name: "second"})
	require.NoError(t, err)

	all, err := dashboards.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.JSONEq(t, string(models.DefaultLayout), string(all[0].Layout))
}

func TestCollectionUpdateTimestamps(t *testing.T) {
	ctx := context.Background()
	dashboards := NewDashboards(NewMemorySlots(), nil)

	t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{times: []time.Time{t0, t0.Add(time.Hour), t0.Add(-24 * time.Hour)}}
	dashboards.SetClock(clk.now)

	created, err := dashboards.Save(ctx, &models.Dashboard{Name: "Ops", Public: true})
	require.NoError(t, err)

	t.Run("update keeps CreatedAt and advances UpdatedAt", func(t *testing.T) {
		edit := created.Clone()
		edit.Name = "Ops v2"
		edit.CreatedAt = time.Time{}
		updated, err := dashboards.Save(ctx, edit)
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, t0, updated.CreatedAt)
		assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
	})

	t.Run("clock going backwards does not move UpdatedAt back", func(t *testing.T) {
		edit := created.Clone()
		edit.Name = "Ops v3"
		updated, err := dashboards.Save(ctx, edit)
		require.NoError(t, err)
		assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
		assert.Equal(t, "Ops v3", updated.Name)
	})

	all, err := dashboards.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "updates replace in place")
}

func TestCollectionSaveWithUnknownIDCreates(t *testing.T) {
	ctx := context.Background()
	widgets := NewWidgets(NewMemorySlots(), nil)

	saved, err := widgets.Save(ctx, &models.Widget{ID: "client-chosen", Name: "W"})
	require.NoError(t, err)
	assert.Equal(t, "client-chosen", saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestCollectionValidation(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	widgets := NewWidgets(slots, nil)

	_, err := widgets.Save(ctx, &models.Widget{Name: "   "})
	assert.ErrorIs(t, err, models.ErrNameRequired)

	bad := &models.Widget{Name: "dup", Components: []models.ComponentNode{labelNode("a", "x"), labelNode("a", "y")}}
	_, err = widgets.Save(ctx, bad)
	assert.ErrorIs(t, err, models.ErrInvalidTree)

	_, ok, _ := slots.Read(ctx, SlotWidgets)
	assert.False(t, ok, "nothing is written when validation fails")
}

func TestCollectionDelete(t *testing.T) {
	ctx := context.Background()
	widgets := NewWidgets(NewMemorySlots(), nil)

	a, err := widgets.Save(ctx, &models.Widget{Name: "a"})
	require.NoError(t, err)
	b, err := widgets.Save(ctx, &models.Widget{Name: "b"})
	require.NoError(t, err)

	require.NoError(t, widgets.Delete(ctx, a.ID))

	_, err = widgets.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, widgets.Delete(ctx, a.ID), ErrNotFound)

	all, err := widgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestCollectionMalformedData(t *testing.T) {
	ctx := context.Background()

	t.Run("unparseable slot reads as empty", func(t *testing.T) {
		var logs bytes.Buffer
		slots := NewMemorySlots()
		require.NoError(t, slots.Write(ctx, SlotDashboards, []byte(`{not json`)))
		dashboards := NewDashboards(slots, quietLogger(&logs))

		all, err := dashboards.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Contains(t, logs.String(), "discarding malformed collection")

		_, err = dashboards.Save(ctx, &models.Dashboard{Name: "fresh"})
		require.NoError(t, err)
		all, err = dashboards.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("bad records are skipped, missing fields defaulted", func(t *testing.T) {
		var logs bytes.Buffer
		slots := NewMemorySlots()
		require.NoError(t, slots.Write(ctx, SlotWidgets, []byte(`[
			{"id": "w1", "name": "ok", "components": [{"id": "l1", "content": {"kind": "label", "properties": {"content": "Hi"}}}]},
			{"id": "w2", "components": [{"id": "x", "content": {"kind": "hologram"}}]},
			null,
			{"name": ""},
			{"id": "w1", "name": "duplicate id"}
		]`)))
		widgets := NewWidgets(slots, quietLogger(&logs))

		all, err := widgets.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		assert.Equal(t, "w1", all[0].ID)
		assert.Equal(t, 1, all[0].ComponentsCount)
		assert.Equal(t, []string{}, all[0].Tags)

		assert.NotEmpty(t, all[1].ID)
		assert.Equal(t, models.UntitledName, all[1].Name)

		assert.NotEqual(t, "w1", all[2].ID)
		assert.Equal(t, "duplicate id", all[2].Name)

		again, err := widgets.List(ctx)
		require.NoError(t, err)
		require.Len(t, again, 3)
		assert.Equal(t, all[1].ID, again[1].ID)
		assert.Equal(t, all[2].ID, again[2].ID)

		assert.Contains(t, logs.String(), "skipping malformed record")
	})
}

func TestCollectionRecoveredIDsAreStable(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	require.NoError(t, slots.Write(ctx, SlotWidgets, []byte(`[{"name":"legacy"},{"name":"legacy"}]`)))
	widgets := NewWidgets(slots, nil)

	all, err := widgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)

	got, err := widgets.Get(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Name)

	renamed := all[0].Clone()
	renamed.Name = "renamed"
	_, err = widgets.Save(ctx, renamed)
	require.NoError(t, err)

	after, err := widgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, all[0].ID, after[0].ID)
	assert.Equal(t, "renamed", after[0].Name)
	assert.Equal(t, all[1].ID, after[1].ID)

	require.NoError(t, widgets.Delete(ctx, all[1].ID))
	after, err = widgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, all[0].ID, after[0].ID)
}

func TestCollectionWriteFailureKeepsStoredState(t *testing.T) {
	ctx := context.Background()
	slots := &failingSlots{MemorySlots: NewMemorySlots()}
	widgets := NewWidgets(slots, nil)

	w, err := widgets.Save(ctx, &models.Widget{Name: "keep me"})
	require.NoError(t, err)

	slots.fail = true
	_, err = widgets.Save(ctx, &models.Widget{Name: "lost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Error(t, widgets.Delete(ctx, w.ID))

	slots.fail = false
	all, err := widgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep me", all[0].Name)
}

func TestCollectionStoredShape(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	dashboards := NewDashboards(slots, nil)

	_, err := dashboards.Save(ctx, &models.Dashboard{Name: "Ops", Tags: []string{"infra"}, Public: true})
	require.NoError(t, err)

	data, ok, err := slots.Read(ctx, SlotDashboards)
	require.NoError(t, err)
	require.True(t, ok)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	for _, key := range []string{"id", "name", "layout", "tags", "public", "createdAt", "updatedAt", "componentsCount"} {
		assert.Contains(t, stored[0], key)
	}
}
