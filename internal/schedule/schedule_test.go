package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, date, clock string) Slot {
	t.Helper()
	s, err := ParseSlot(date, clock)
	require.NoError(t, err)
	return s
}

func TestParseSlot(t *testing.T) {
	t.Run("Canonical Input", func(t *testing.T) {
		s, err := ParseSlot("2026-10-16", "10:00")
		require.NoError(t, err)
		assert.Equal(t, Slot{Date: "2026-10-16", Time: "10:00"}, s)
	})

	t.Run("Seconds Are Dropped", func(t *testing.T) {
		s, err := ParseSlot(" 2026-10-16 ", "09:30:00")
		require.NoError(t, err)
		assert.Equal(t, "09:30", s.Time)
		assert.Equal(t, 9*60+30, s.Minutes())
	})

	t.Run("Bad Date", func(t *testing.T) {
		_, err := ParseSlot("16/10/2026", "10:00")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("Bad Time", func(t *testing.T) {
		_, err := ParseSlot("2026-10-16", "25:00")
		assert.ErrorIs(t, err, ErrInvalidTime)
	})
}

func TestScheduleReserveRelease(t *testing.T) {
	s := New()
	slot := mustSlot(t, "2026-10-16", "10:00")
	other := mustSlot(t, "2026-10-16", "11:00")

	assert.True(t, s.IsAvailable(slot))

	assert.True(t, s.Reserve(slot))
	assert.False(t, s.IsAvailable(slot), "reserved slot must not be available")
	assert.True(t, s.IsAvailable(other), "other slots stay free")

	assert.False(t, s.Reserve(slot), "second reserve of the same slot is refused")
	assert.Equal(t, 1, s.Len())

	s.Release(slot)
	assert.True(t, s.IsAvailable(slot))

	// Releasing twice is the same as releasing once.
	s.Release(slot)
	assert.True(t, s.IsAvailable(slot))
	assert.Equal(t, 0, s.Len())
}

func TestScheduleSlotsOrdered(t *testing.T) {
	s := New()
	s.Reserve(mustSlot(t, "2026-10-17", "08:00"))
	s.Reserve(mustSlot(t, "2026-10-16", "14:00"))
	s.Reserve(mustSlot(t, "2026-10-16", "09:00"))

	assert.Equal(t, []Slot{
		{Date: "2026-10-16", Time: "09:00"},
		{Date: "2026-10-16", Time: "14:00"},
		{Date: "2026-10-17", Time: "08:00"},
	}, s.Slots())
}
