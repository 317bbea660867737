package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	var logs bytes.Buffer
	prefs := NewPreferences(slots, quietLogger(&logs))

	v, err := prefs.Bool(ctx, PrefAskBeforeDeleteWidget, true)
	require.NoError(t, err)
	assert.True(t, v, "unset flag falls back to the default")

	require.NoError(t, prefs.SetBool(ctx, PrefAskBeforeDeleteWidget, false))
	v, err = prefs.Bool(ctx, PrefAskBeforeDeleteWidget, true)
	require.NoError(t, err)
	assert.False(t, v)

	data, ok, err := slots.Read(ctx, "pref.ask-before-delete-widget")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "false", string(data))

	t.Run("malformed value falls back to the default", func(t *testing.T) {
		require.NoError(t, slots.Write(ctx, PreferencePrefix+PrefAskBeforeDeleteDashboard, []byte(`"yes"`)))
		v, err := prefs.Bool(ctx, PrefAskBeforeDeleteDashboard, true)
		require.NoError(t, err)
		assert.True(t, v)
		assert.Contains(t, logs.String(), "ignoring malformed preference")
	})

	t.Run("invalid names are rejected", func(t *testing.T) {
		_, err := prefs.Bool(ctx, "../x", false)
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})
}

func TestPreferenceDefaults(t *testing.T) {
	assert.Equal(t, []string{PrefAskBeforeDeleteDashboard, PrefAskBeforeDeleteWidget}, PreferenceNames())

	def, ok := PreferenceDefault(PrefAskBeforeDeleteDashboard)
	assert.True(t, ok)
	assert.True(t, def)

	_, ok = PreferenceDefault("dark-mode")
	assert.False(t, ok)
}
