package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPgxStore connects to TEST_DB_DSN or skips the test.
func newTestPgxStore(t *testing.T) *PgxStore {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPgxStore(pool)
	require.NoError(t, s.Migrate(ctx))
	for _, table := range []string{"public.users", "public.rooms", "public.bookings"} {
		_, err := pool.Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err)
	}
	return s
}

func TestPgxStoreRoundTrip(t *testing.T) {
	s := newTestPgxStore(t)
	ctx := context.Background()

	users := []UserRecord{{ID: "C001", Name: "Alice", Role: "Customer", PasswordHash: "h"}}
	rooms := []RoomRecord{
		{Branch: "HQ", RoomID: "R2", Type: "Large", Capacity: 12},
		{Branch: "HQ", RoomID: "R1", Type: "Small", Capacity: 4},
		{Branch: "Annex", RoomID: "", Type: "", Capacity: 0},
	}
	bookings := []BookingRecord{
		{ID: "B002", CustomerID: "C001", Branch: "HQ", RoomID: "R1", Date: "2026-10-16", Time: "10:00"},
		{ID: "B001", CustomerID: "C001", Branch: "HQ", RoomID: "R2", Date: "2026-10-16", Time: "10:00"},
	}

	require.NoError(t, s.SaveUsers(ctx, users))
	require.NoError(t, s.SaveRooms(ctx, rooms))
	require.NoError(t, s.SaveBookings(ctx, bookings))

	gotUsers, _, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, gotUsers)

	gotRooms, _, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, rooms, gotRooms, "insertion order is kept")

	gotBookings, _, err := s.LoadBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, bookings, gotBookings)
}

func TestPgxStoreDuplicateSlot(t *testing.T) {
	s := newTestPgxStore(t)
	ctx := context.Background()

	first := []BookingRecord{{ID: "B001", CustomerID: "C001", Branch: "HQ", RoomID: "R1", Date: "2026-10-16", Time: "10:00"}}
	require.NoError(t, s.SaveBookings(ctx, first))

	dup := append(first, BookingRecord{ID: "B002", CustomerID: "C002", Branch: "HQ", RoomID: "R1", Date: "2026-10-16", Time: "10:00"})
	err := s.SaveBookings(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	got, _, err := s.LoadBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got, "failed save keeps the previous rows")
}
