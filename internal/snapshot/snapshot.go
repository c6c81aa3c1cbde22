package snapshot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
	"github.com/nekogravitycat/smart-room-booking/internal/store"
	"github.com/nekogravitycat/smart-room-booking/internal/user"
)

// Report counts what a Load restored and what it had to skip.
type Report struct {
	Users    int
	Rooms    int
	Bookings int
	Skipped  int
}

// Snapshot moves state between the live registries and a Store.
// It resolves the identifiers in persisted records against live users,
// branches and rooms before handing objects to the booking engine.
//
// Each Save holds mu from reading live state until the store write returns,
// so the last write to land always carries the newest state.
type Snapshot struct {
	mu       sync.Mutex
	store    store.Store
	users    user.Service
	branches *room.Registry
	bookings *booking.Manager
}

func New(st store.Store, users user.Service, branches *room.Registry, bookings *booking.Manager) *Snapshot {
	return &Snapshot{
		store:    st,
		users:    users,
		branches: branches,
		bookings: bookings,
	}
}

// Load restores users, then rooms, then bookings. Records that cannot be
// resolved or that conflict with already restored state are logged and
// skipped. Only storage failures are returned.
func (s *Snapshot) Load(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep Report

	userRecs, skipped, err := s.store.LoadUsers(ctx)
	if err != nil {
		return rep, fmt.Errorf("load users: %w", err)
	}
	rep.Skipped += skipped
	for _, rec := range userRecs {
		u := &user.User{
			ID:           rec.ID,
			Name:         rec.Name,
			Role:         user.ParseRole(rec.Role),
			PasswordHash: rec.PasswordHash,
		}
		if err := s.users.Restore(u); err != nil {
			log.Printf("restore user %s: %v", rec.ID, err)
			rep.Skipped++
			continue
		}
		rep.Users++
	}

	roomRecs, skipped, err := s.store.LoadRooms(ctx)
	if err != nil {
		return rep, fmt.Errorf("load rooms: %w", err)
	}
	rep.Skipped += skipped
	for _, rec := range roomRecs {
		if err := s.restoreRoom(rec); err != nil {
			log.Printf("restore room %s/%s: %v", rec.Branch, rec.RoomID, err)
			rep.Skipped++
			continue
		}
		if rec.RoomID != "" {
			rep.Rooms++
		}
	}

	bookingRecs, skipped, err := s.store.LoadBookings(ctx)
	if err != nil {
		return rep, fmt.Errorf("load bookings: %w", err)
	}
	rep.Skipped += skipped
	s.bookings.ClearBookings()
	for _, rec := range bookingRecs {
		if err := s.restoreBooking(rec); err != nil {
			log.Printf("restore booking %s: %v", rec.ID, err)
			rep.Skipped++
			continue
		}
		rep.Bookings++
	}

	return rep, nil
}

func (s *Snapshot) restoreRoom(rec store.RoomRecord) error {
	b, err := s.branches.GetBranch(rec.Branch)
	if err != nil {
		if b, err = s.branches.AddBranch(rec.Branch); err != nil {
			return err
		}
	}
	if rec.RoomID == "" {
		return nil
	}
	r, err := room.New(rec.RoomID, rec.Type, rec.Capacity)
	if err != nil {
		return err
	}
	return b.AddRoom(r)
}

func (s *Snapshot) restoreBooking(rec store.BookingRecord) error {
	slot, err := schedule.ParseSlot(rec.Date, rec.Time)
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(rec.CustomerID)
	if err != nil {
		return fmt.Errorf("customer %s: %w", rec.CustomerID, err)
	}
	if !u.IsCustomer() {
		return fmt.Errorf("user %s is not a customer", u.ID)
	}
	b, err := s.branches.GetBranch(rec.Branch)
	if err != nil {
		return fmt.Errorf("branch %q: %w", rec.Branch, err)
	}
	r, err := b.GetRoomByID(rec.RoomID)
	if err != nil {
		return fmt.Errorf("room %q: %w", rec.RoomID, err)
	}
	return s.bookings.AddBookingFromFile(rec.ID, booking.Customer{ID: u.ID, Name: u.Name}, b, r, slot)
}

// SaveUsers writes every user, deleted accounts included so their ids stay
// reserved across restarts.
func (s *Snapshot) SaveUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := append(s.users.List(), s.users.Retired()...)
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	recs := make([]store.UserRecord, len(users))
	for i, u := range users {
		recs[i] = store.UserRecord{
			ID:           u.ID,
			Name:         u.Name,
			Role:         string(u.Role),
			PasswordHash: u.PasswordHash,
		}
	}
	return s.store.SaveUsers(ctx, recs)
}

// SaveRooms writes every branch and its rooms in registry order.
func (s *Snapshot) SaveRooms(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []store.RoomRecord
	for _, b := range s.branches.Branches() {
		rooms := b.Rooms()
		if len(rooms) == 0 {
			recs = append(recs, store.RoomRecord{Branch: b.Name})
			continue
		}
		for _, r := range rooms {
			recs = append(recs, store.RoomRecord{
				Branch:   b.Name,
				RoomID:   r.ID,
				Type:     string(r.Type),
				Capacity: r.Capacity,
			})
		}
	}
	return s.store.SaveRooms(ctx, recs)
}

// SaveBookings writes every live booking in creation order.
func (s *Snapshot) SaveBookings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.bookings.GetAllBookings()
	recs := make([]store.BookingRecord, len(all))
	for i, b := range all {
		recs[i] = store.BookingRecord{
			ID:         b.ID,
			CustomerID: b.Customer.ID,
			Branch:     b.Branch.Name,
			RoomID:     b.Room.ID,
			Date:       b.Slot.Date,
			Time:       b.Slot.Time,
		}
	}
	return s.store.SaveBookings(ctx, recs)
}

// SaveAll writes users, rooms and bookings, stopping at the first failure.
func (s *Snapshot) SaveAll(ctx context.Context) error {
	if err := s.SaveUsers(ctx); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := s.SaveRooms(ctx); err != nil {
		return fmt.Errorf("save rooms: %w", err)
	}
	if err := s.SaveBookings(ctx); err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}
	return nil
}
