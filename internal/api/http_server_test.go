package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"nomadx/internal/auth"
	"nomadx/internal/config"
	"nomadx/internal/database"
	"nomadx/internal/events"
	"nomadx/internal/models"
	"nomadx/internal/service"
)

var testAPIConfig = config.APIConfig{
	HTTP: config.APIHTTPConfig{Port: 0, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
	Auth: config.APIAuthConfig{Secret: "0123456789abcdef", Issuer: "nomadx", TokenTTL: time.Hour},
}

type testEnv struct {
	server *HTTPServer
	tokens *auth.Service
	db     *database.DB
}

func newTestEnv(t *testing.T, cfg config.APIConfig) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(context.Background(), filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	svc := Services{
		Bookings:      service.NewBookingService(db, nil, bus, &logger),
		Vehicles:      service.NewVehicleService(db, nil, &logger),
		Employees:     service.NewEmployeeService(db, &logger),
		Reviews:       service.NewReviewService(db, &logger),
		Notifications: service.NewNotificationService(db, bus, &logger),
		Users:         service.NewUserService(db, &logger),
		Dashboard:     service.NewDashboardService(db, &logger),
		Suggestions:   service.NewSuggestionService(db, nil, &logger),
	}
	tokens := auth.NewService(cfg.Auth)
	return &testEnv{server: NewHTTPServer(cfg, svc, tokens, &logger), tokens: tokens, db: db}
}

func (e *testEnv) token(t *testing.T, account models.Account) string {
	t.Helper()
	token, err := e.tokens.Issue(account)
	require.NoError(t, err)
	return token
}

// register issues a token for account and gives it a profile with role.
func (e *testEnv) register(t *testing.T, account models.Account, role models.Role) string {
	t.Helper()
	token := e.token(t, account)
	rec := e.do(t, http.MethodPost, "/api/v1/profile", token, map[string]any{"role": role})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)

	rec := env.do(t, http.MethodGet, "/api/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a valid token without a profile has no role
	rec = env.do(t, http.MethodGet, "/api/v1/bookings", env.token(t, models.Account{ID: "nobody"}), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/profile", env.token(t, models.Account{ID: "x", Email: "x@y.z"}), map[string]any{"role": "driver"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingDenialFlow(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	customer := env.register(t, models.Account{ID: "cust-1", Email: "ana@example.com", DisplayName: "Ana"}, models.RoleCustomer)
	agency := env.register(t, models.Account{ID: "ag-1", Email: "desk@agency.test"}, models.RoleAgency)
	rival := env.register(t, models.Account{ID: "ag-2", Email: "desk@rival.test"}, models.RoleAgency)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", customer, map[string]any{
		"agency_id":       "ag-1",
		"pickup_location": "Central Station",
		"pickup_date":     "2026-11-03T09:30:00Z",
		"waypoints":       []string{"Museum"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+created.ID, rival, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/missing", agency, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/bookings/"+created.ID+"/status", customer, map[string]any{"status": "Confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/bookings/"+created.ID+"/status", agency, map[string]any{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/bookings/"+created.ID+"/status", agency, map[string]any{"status": "Denied"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/notifications", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox struct {
		Notifications []models.Notification `json:"notifications"`
	}
	decodeBody(t, rec, &inbox)
	require.Len(t, inbox.Notifications, 1)
	assert.Contains(t, inbox.Notifications[0].Description, "Central Station")
	assert.Equal(t, models.CustomerTarget{CustomerID: "cust-1"}, inbox.Notifications[0].Target)

	rec = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", customer, nil)
	assert.JSONEq(t, `{"unread":1}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", agency, nil)
	var listed struct {
		Bookings []models.Booking `json:"bookings"`
	}
	decodeBody(t, rec, &listed)
	require.Len(t, listed.Bookings, 1)
	assert.Equal(t, models.StatusDenied, listed.Bookings[0].Status)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", rival, nil)
	decodeBody(t, rec, &listed)
	assert.Empty(t, listed.Bookings)
}

func TestProfileRejectsSelfAssignedAdmin(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	agency := env.register(t, models.Account{ID: "ag-1", Email: "desk@agency.test"}, models.RoleAgency)
	rec := env.do(t, http.MethodPost, "/api/v1/bookings", agency, map[string]any{"pickup_location": "Secret St"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	intruder := env.token(t, models.Account{ID: "mallory", Email: "m@evil.test"})
	rec = env.do(t, http.MethodPost, "/api/v1/profile", intruder, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Secret St")
}

func TestCustomerCannotEditDispatchFields(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	customer := env.register(t, models.Account{ID: "cust-1", Email: "ana@example.com"}, models.RoleCustomer)
	agency := env.register(t, models.Account{ID: "ag-1", Email: "desk@agency.test"}, models.RoleAgency)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", customer, map[string]any{"agency_id": "ag-1", "pickup_location": "Harbour"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+created.ID, customer, map[string]any{"employee_id": "emp-9", "vehicle_id": "veh-9"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+created.ID, customer, map[string]any{"notes": "late flight"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+created.ID, agency, map[string]any{"vehicle_id": "veh-9"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	customer := env.register(t, models.Account{ID: "cust-1", Email: "ana@example.com", DisplayName: "Ana"}, models.RoleCustomer)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", customer, map[string]any{"agency_id": "ag-1", "pickup_location": "Port"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodPost, "/api/v1/reviews", customer, map[string]any{"booking_id": created.ID, "rating": 0, "comment": "meh"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/reviews", customer, map[string]any{"booking_id": created.ID, "rating": 5, "comment": "Great"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/reviews", customer, map[string]any{"booking_id": created.ID, "rating": 4, "comment": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reviews/reviewed-bookings", customer, nil)
	var reviewed struct {
		BookingIDs []string `json:"booking_ids"`
	}
	decodeBody(t, rec, &reviewed)
	assert.Equal(t, []string{created.ID}, reviewed.BookingIDs)
}

func TestSuggestionUnavailable(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	agency := env.register(t, models.Account{ID: "ag-1", Email: "desk@agency.test"}, models.RoleAgency)

	rec := env.do(t, http.MethodPost, "/api/v1/suggestions", agency, map[string]any{"booking_details": "4 passengers"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/suggestions", agency, map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVehiclesAndExport(t *testing.T) {
	env := newTestEnv(t, testAPIConfig)
	agency := env.register(t, models.Account{ID: "ag-1", Email: "desk@agency.test"}, models.RoleAgency)
	customer := env.register(t, models.Account{ID: "cust-1", Email: "ana@example.com"}, models.RoleCustomer)

	rec := env.do(t, http.MethodPost, "/api/v1/vehicles", agency, map[string]any{"make": "Ford", "model": "Transit", "seating_capacity": 9})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/vehicles", customer, map[string]any{"make": "Ford", "seating_capacity": 9})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard", agency, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary service.AgencySummary
	decodeBody(t, rec, &summary)
	assert.Equal(t, 1, summary.AvailableVehicles)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/export", agency, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestRateLimit(t *testing.T) {
	cfg := testAPIConfig
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 0.001, Burst: 1}
	env := newTestEnv(t, cfg)
	token := env.token(t, models.Account{ID: "u1"})

	rec := env.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestServerLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	logger := zerolog.Nop()
	srv := NewHTTPServer(testAPIConfig, Services{}, auth.NewService(testAPIConfig.Auth), &logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
	client.CloseIdleConnections()
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, errorStatus(service.ErrValidation))
	assert.Equal(t, http.StatusForbidden, errorStatus(service.ErrForbidden))
	assert.Equal(t, http.StatusNotFound, errorStatus(database.ErrNotFound))
	assert.Equal(t, http.StatusConflict, errorStatus(service.ErrAlreadyReviewed))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(assert.AnError))
}
