package store

import (
	"context"
	"errors"
)

var ErrDuplicateRecord = errors.New("duplicate record")

// UserRecord is one line of users.txt.
type UserRecord struct {
	ID           string
	Name         string
	Role         string
	PasswordHash string
}

// RoomRecord is one line of rooms.txt. A record with an empty RoomID stands
// for a branch that has no rooms.
type RoomRecord struct {
	Branch   string
	RoomID   string
	Type     string
	Capacity int
}

// BookingRecord is one line of bookings.txt. Date is yyyy-MM-dd, Time is HH:mm.
type BookingRecord struct {
	ID         string
	CustomerID string
	Branch     string
	RoomID     string
	Date       string
	Time       string
}

// Store persists the full set of records of each kind. Save replaces what was
// stored before; Load of a never-saved kind returns no records and no error.
// Loaders skip malformed entries and report how many they skipped.
type Store interface {
	LoadUsers(ctx context.Context) ([]UserRecord, int, error)
	SaveUsers(ctx context.Context, records []UserRecord) error
	LoadRooms(ctx context.Context) ([]RoomRecord, int, error)
	SaveRooms(ctx context.Context, records []RoomRecord) error
	LoadBookings(ctx context.Context) ([]BookingRecord, int, error)
	SaveBookings(ctx context.Context, records []BookingRecord) error
}
