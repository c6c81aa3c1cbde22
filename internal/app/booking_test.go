package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/smart-room-booking/internal/booking/http"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/response"
	roomHttp "github.com/nekogravitycat/smart-room-booking/internal/room/http"
)

// setupRooms creates branch HQ with R1 (Small, 4 seats) and R2 (Large, 12 seats).
func setupRooms(t *testing.T, a *testApp, adminToken string) {
	t.Helper()
	w := a.executeRequest("POST", "/v1/branches", roomHttp.CreateBranchRequest{Name: "HQ"}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, body := range []roomHttp.CreateRoomRequest{
		{RoomID: "R1", Type: "small", Capacity: 4},
		{RoomID: "R2", Type: "Large", Capacity: 12},
	} {
		w := a.executeRequest("POST", "/v1/branches/HQ/rooms", body, adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

func bookingBody(roomID, date, clock string) bookingHttp.CreateBookingRequest {
	return bookingHttp.CreateBookingRequest{Branch: "HQ", RoomID: roomID, Date: date, Time: clock}
}

func TestBookingLifecycle(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	adminToken := a.adminToken(t)
	setupRooms(t, a, adminToken)

	aliceID, aliceToken := a.registerCustomer(t, "Alice", "pass1234")
	_, bobToken := a.registerCustomer(t, "Bob", "pass1234")

	var bookingID string

	t.Run("Create: succeeds and reserves the slot", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "2026-10-16", "10:00"), aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		b := decode[bookingHttp.BookingResponse](t, w)
		bookingID = b.ID
		assert.Equal(t, "B001", b.ID)
		assert.Equal(t, bookingHttp.CustomerTag{ID: aliceID, Name: "Alice"}, b.Customer)
		assert.Equal(t, "HQ", b.Branch)
		assert.Equal(t, bookingHttp.RoomTag{ID: "R1", Type: "Small"}, b.Room)
		assert.Equal(t, "2026-10-16", b.Date)
		assert.Equal(t, "10:00", b.Time)
	})

	t.Run("Create: double booking is rejected", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "2026-10-16", "10:00:00"), bobToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "room_unavailable", decode[response.ErrorResponse](t, w).Reason)
	})

	t.Run("Create: rule violations name their reason", func(t *testing.T) {
		cases := []struct {
			name   string
			body   bookingHttp.CreateBookingRequest
			status int
			reason string
		}{
			{"before opening", bookingBody("R2", "2026-10-16", "07:59"), http.StatusBadRequest, "invalid_time"},
			{"after closing", bookingBody("R2", "2026-10-16", "20:01"), http.StatusBadRequest, "invalid_time"},
			{"yesterday", bookingBody("R2", "2026-10-14", "10:00"), http.StatusBadRequest, "invalid_date"},
			{"bad time wins over bad date", bookingBody("R2", "2026-10-14", "21:00"), http.StatusBadRequest, "invalid_time"},
		}
		for _, tc := range cases {
			w := a.executeRequest("POST", "/v1/bookings", tc.body, bobToken)
			assert.Equal(t, tc.status, w.Code, tc.name)
			assert.Equal(t, tc.reason, decode[response.ErrorResponse](t, w).Reason, tc.name)
		}

		big := bookingBody("R1", "2026-10-16", "11:00")
		big.PartySize = 5
		w := a.executeRequest("POST", "/v1/bookings", big, bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "insufficient_capacity", decode[response.ErrorResponse](t, w).Reason)
	})

	t.Run("Create: boundary times and today are accepted", func(t *testing.T) {
		for _, clock := range []string{"08:00", "20:00"} {
			w := a.executeRequest("POST", "/v1/bookings", bookingBody("R2", "2026-10-15", clock), bobToken)
			assert.Equal(t, http.StatusCreated, w.Code, clock)
		}
	})

	t.Run("Create: unknown targets and malformed input", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingBody("R9", "2026-10-16", "10:00"), bobToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		body := bookingBody("R1", "2026-10-16", "10:00")
		body.Branch = "Nowhere"
		w = a.executeRequest("POST", "/v1/bookings", body, bobToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "16/10/2026", "10:00"), bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "2026-10-16", "ten"), bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Create: admins cannot book", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingBody("R2", "2026-10-17", "10:00"), adminToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Available rooms: excludes booked rooms", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/branches/HQ/available-rooms?type=Small&date=2026-10-16&time=10:00", nil, bobToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[response.PageResponse[roomHttp.RoomResponse]](t, w).Items)

		w = a.executeRequest("GET", "/v1/branches/HQ/available-rooms?type=small&date=2026-10-16&time=11:00", nil, bobToken)
		page := decode[response.PageResponse[roomHttp.RoomResponse]](t, w)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "R1", page.Items[0].ID)

		w = a.executeRequest("GET", "/v1/branches/HQ/available-rooms?type=Medium&date=2026-10-16&time=11:00", nil, bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest("GET", "/v1/branches/HQ/available-rooms?type=Small", nil, bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get/Delete: owner or admin only", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/bookings/"+bookingID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("GET", "/v1/bookings/"+bookingID, nil, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = a.executeRequest("GET", "/v1/bookings/"+bookingID, nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = a.executeRequest("GET", "/v1/bookings/B999", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List: my bookings and the admin view", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/me/bookings", nil, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)
		mine := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		require.Len(t, mine.Items, 1)
		assert.Equal(t, bookingID, mine.Items[0].ID)

		w = a.executeRequest("GET", "/v1/bookings", nil, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("GET", "/v1/bookings", nil, adminToken)
		all := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 3, all.Total)
		assert.Equal(t, []string{"B001", "B002", "B003"}, []string{all.Items[0].ID, all.Items[1].ID, all.Items[2].ID})

		w = a.executeRequest("GET", "/v1/bookings?customer_name=Bob", nil, adminToken)
		bobs := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 2, bobs.Total)
	})

	t.Run("Delete: frees the slot", func(t *testing.T) {
		w := a.executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, aliceToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, aliceToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "2026-10-16", "10:00"), bobToken)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "B004", decode[bookingHttp.BookingResponse](t, w).ID, "ids are never reused")
	})
}

func TestRoomAdministrationCascades(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	adminToken := a.adminToken(t)
	setupRooms(t, a, adminToken)
	_, aliceToken := a.registerCustomer(t, "Alice", "pass1234")

	for _, body := range []bookingHttp.CreateBookingRequest{
		bookingBody("R1", "2026-10-16", "10:00"),
		bookingBody("R1", "2026-10-16", "11:00"),
		bookingBody("R2", "2026-10-16", "10:00"),
	} {
		w := a.executeRequest("POST", "/v1/bookings", body, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	t.Run("Rooms: customers cannot manage rooms", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/branches/HQ/rooms", roomHttp.CreateRoomRequest{RoomID: "R3", Type: "Small", Capacity: 2}, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("DELETE", "/v1/branches/HQ/rooms/R1", nil, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Rooms: invalid definitions are rejected", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/branches/HQ/rooms", roomHttp.CreateRoomRequest{RoomID: "R1", Type: "Small", Capacity: 2}, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.executeRequest("POST", "/v1/branches/HQ/rooms", roomHttp.CreateRoomRequest{RoomID: "R3", Type: "Huge", Capacity: 2}, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest("POST", "/v1/branches/HQ/rooms", map[string]any{"room_id": "R3", "type": "Small", "capacity": 0}, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest("POST", "/v1/branches", roomHttp.CreateBranchRequest{Name: "HQ"}, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Rooms: listing keeps insertion order", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/branches/HQ/rooms", nil, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[roomHttp.RoomResponse]](t, w)
		require.Len(t, page.Items, 2)
		assert.Equal(t, roomHttp.RoomResponse{ID: "R1", Branch: "HQ", Type: "Small", Capacity: 4}, page.Items[0])
		assert.Equal(t, "R2", page.Items[1].ID)
	})

	t.Run("Delete room: removes its bookings", func(t *testing.T) {
		w := a.executeRequest("DELETE", "/v1/branches/HQ/rooms/R1", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decode[roomHttp.DeleteResponse](t, w).RemovedBookings)
		assert.Equal(t, 1, a.Manager.Count())

		w = a.executeRequest("DELETE", "/v1/branches/HQ/rooms/R1", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete branch: removes every booking in it", func(t *testing.T) {
		w := a.executeRequest("DELETE", "/v1/branches/HQ", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[roomHttp.DeleteResponse](t, w).RemovedBookings)
		assert.Equal(t, 0, a.Manager.Count())

		w = a.executeRequest("GET", "/v1/branches", nil, aliceToken)
		assert.Empty(t, decode[response.PageResponse[roomHttp.BranchResponse]](t, w).Items)

		w = a.executeRequest("DELETE", "/v1/branches/HQ", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
