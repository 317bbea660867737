package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSlots checks the behaviour every SlotStore shares.
func exerciseSlots(t *testing.T, s SlotStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Read(ctx, "never-written")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, SlotWidgets, []byte(`[{"id":"a"}]`)))
	data, ok, err := s.Read(ctx, SlotWidgets)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	require.NoError(t, s.Write(ctx, SlotWidgets, []byte(`[]`)))
	data, _, err = s.Read(ctx, SlotWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data), "writes replace the whole slot")

	require.NoError(t, s.Write(ctx, PreferencePrefix+PrefAskBeforeDeleteWidget, []byte(`false`)))

	for _, bad := range []string{"", "../etc/passwd", "Upper", "a/b"} {
		_, _, err := s.Read(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidSlot, bad)
		assert.ErrorIs(t, s.Write(ctx, bad, []byte(`1`)), ErrInvalidSlot, bad)
	}
}

func TestMemorySlots(t *testing.T) {
	exerciseSlots(t, NewMemorySlots())

	t.Run("returned data is a copy", func(t *testing.T) {
		ctx := context.Background()
		m := NewMemorySlots()
		require.NoError(t, m.Write(ctx, "x", []byte(`true`)))
		data, _, _ := m.Read(ctx, "x")
		data[0] = 'f'
		again, _, _ := m.Read(ctx, "x")
		assert.Equal(t, `true`, string(again))
	})
}

func TestFileSlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f, err := NewFileSlots(dir)
	require.NoError(t, err)
	exerciseSlots(t, f)

	_, err = os.Stat(filepath.Join(dir, SlotWidgets+".json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temporary files are cleaned up")
	}
}
