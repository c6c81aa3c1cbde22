package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/smart-room-booking/internal/app"
	"github.com/nekogravitycat/smart-room-booking/internal/event"
	"github.com/nekogravitycat/smart-room-booking/internal/store"
	userHttp "github.com/nekogravitycat/smart-room-booking/internal/user/http"
)

const adminPassword = "admin-pass"

// testToday is the validator's "now": 2026-10-15 09:30 local time.
var testToday = time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testApp struct {
	*app.Container
	dir    string
	events *recordingPublisher
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp builds a container over a file store in dir and bootstraps it.
func newTestApp(t *testing.T, dir string) *testApp {
	t.Helper()
	st, err := store.NewFileStore(dir)
	require.NoError(t, err)

	events := &recordingPublisher{}
	c := app.NewContainer(app.Config{
		Store:                st,
		JWTSecret:            "test-secret",
		JWTTTL:               30 * time.Minute,
		BcryptCost:           4, // Lower cost for testing purposes
		DefaultAdminPassword: adminPassword,
		Clock:                fixedClock{testToday},
		Publisher:            events,
	})
	_, err = c.Bootstrap(context.Background())
	require.NoError(t, err)

	return &testApp{Container: c, dir: dir, events: events}
}

func (a *testApp) executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, id, name, password string) string {
	t.Helper()
	w := a.executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{UserID: id, Name: name, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (a *testApp) adminToken(t *testing.T) string {
	return a.login(t, "A000", "admin", adminPassword)
}

// registerCustomer signs up a customer and returns its id and a token.
func (a *testApp) registerCustomer(t *testing.T, name, password string) (string, string) {
	t.Helper()
	w := a.executeRequest("POST", "/v1/auth/register", userHttp.RegisterRequest{Name: name, Password: password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp userHttp.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, a.login(t, resp.User.ID, name, password)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
