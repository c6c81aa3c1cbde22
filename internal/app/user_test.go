package app_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/smart-room-booking/internal/booking/http"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/response"
	"github.com/nekogravitycat/smart-room-booking/internal/store"
	userHttp "github.com/nekogravitycat/smart-room-booking/internal/user/http"
)

func TestUserAuthAndAdministration(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	adminToken := a.adminToken(t)

	var aliceID, aliceToken string

	t.Run("Register: creates customers with sequential ids", func(t *testing.T) {
		aliceID, aliceToken = a.registerCustomer(t, "Alice", "pass1234")
		assert.Equal(t, "C001", aliceID)

		bobID, _ := a.registerCustomer(t, "Bob", "pass1234")
		assert.Equal(t, "C002", bobID)
	})

	t.Run("Register: rejects bad input", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/auth/register", userHttp.RegisterRequest{Name: "Eve", Password: "abc"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "password too short")

		w = a.executeRequest("POST", "/v1/auth/register", userHttp.RegisterRequest{Name: "Eve,Evil", Password: "pass1234"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "comma in name")

		w = a.executeRequest("POST", "/v1/auth/register", map[string]string{"name": "Eve"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "missing password")
	})

	t.Run("Login: every field must match", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{UserID: aliceID, Name: "Bob", Password: "pass1234"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = a.executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{UserID: aliceID, Name: "Alice", Password: "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me: returns the caller", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/me", nil, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)
		me := decode[userHttp.MeResponse](t, w)
		assert.Equal(t, userHttp.UserResponse{ID: aliceID, Name: "Alice", Role: "Customer"}, me.User)

		w = a.executeRequest("GET", "/v1/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = a.executeRequest("GET", "/v1/me", nil, "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Users: admin only", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/users", nil, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("GET", "/v1/users", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[userHttp.UserResponse]](t, w)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, "A000", page.Items[0].ID)

		w = a.executeRequest("GET", "/v1/users?page=2&page_size=2", nil, adminToken)
		page = decode[response.PageResponse[userHttp.UserResponse]](t, w)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, "C002", page.Items[0].ID)
	})

	t.Run("Users: admin creates another admin", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/users", userHttp.CreateUserRequest{Name: "Root", Role: "admin", Password: "rootpass"}, adminToken)
		assert.Equal(t, http.StatusCreated, w.Code)
		created := decode[userHttp.UserResponse](t, w)
		assert.Equal(t, "A001", created.ID)
		assert.Equal(t, "Admin", created.Role)

		rootToken := a.login(t, "A001", "Root", "rootpass")
		w = a.executeRequest("GET", "/v1/users", nil, rootToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Users: default admin cannot be deleted", func(t *testing.T) {
		w := a.executeRequest("DELETE", "/v1/users/A000", nil, adminToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest("DELETE", "/v1/users/C999", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Users: deleted admins lose access at once", func(t *testing.T) {
		rootToken := a.login(t, "A001", "Root", "rootpass")
		w := a.executeRequest("DELETE", "/v1/users/A001", nil, adminToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest("GET", "/v1/users", nil, rootToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDeletedCustomerIDIsNeverReissued(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, dir)
	adminToken := a.adminToken(t)
	setupRooms(t, a, adminToken)

	aliceID, aliceToken := a.registerCustomer(t, "Alice", "pass1234")
	require.Equal(t, "C001", aliceID)
	w := a.executeRequest("POST", "/v1/bookings", bookingBody("R1", "2026-10-16", "10:00"), aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.executeRequest("DELETE", "/v1/users/"+aliceID, nil, adminToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	t.Run("Bookings of the deleted user go with them", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/bookings/B001", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		raw, err := os.ReadFile(filepath.Join(dir, store.BookingsFile))
		require.NoError(t, err)
		assert.Empty(t, string(raw))
	})

	t.Run("A new customer gets a fresh id", func(t *testing.T) {
		malloryID, malloryToken := a.registerCustomer(t, "Mallory", "pass1234")
		assert.Equal(t, "C002", malloryID)

		w := a.executeRequest("GET", "/v1/me/bookings", nil, malloryToken)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Empty(t, page.Items)

		w = a.executeRequest("GET", "/v1/me", nil, aliceToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "old token must not reach another account")
	})

	t.Run("Deleted ids stay reserved across restart", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(dir, store.UsersFile))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "C001,Alice,Customer,\n")

		restarted := newTestApp(t, dir)
		w := restarted.executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{UserID: aliceID, Name: "Alice", Password: "pass1234"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		id, _ := restarted.registerCustomer(t, "Trent", "pass1234")
		assert.Equal(t, "C003", id)

		w = restarted.executeRequest("GET", "/v1/me", nil, aliceToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
