// Package api exposes the booking services over a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"nomadx/internal/auth"
	"nomadx/internal/config"
	"nomadx/internal/database"
	"nomadx/internal/metrics"
	"nomadx/internal/service"
	"nomadx/internal/suggest"
)

const maxBodyBytes = 1 << 20

// Services are the operations the API routes to.
type Services struct {
	Bookings      *service.BookingService
	Vehicles      *service.VehicleService
	Employees     *service.EmployeeService
	Reviews       *service.ReviewService
	Notifications *service.NotificationService
	Users         *service.UserService
	Dashboard     *service.DashboardService
	Suggestions   *service.SuggestionService
}

type HTTPServer struct {
	cfg     config.APIConfig
	svc     Services
	tokens  *auth.Service
	limiter *rateLimiter
	logger  *zerolog.Logger
	server  *http.Server
}

func NewHTTPServer(cfg config.APIConfig, svc Services, tokens *auth.Service, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	srv := &HTTPServer{
		cfg:     cfg,
		svc:     svc,
		tokens:  tokens,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           loggingMiddleware(logger, mux),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured port and serves until Shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP API listening")
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handle registers fn under pattern and counts requests per pattern.
func handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(pattern)
		fn(w, r)
	})
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	handle(mux, "GET /healthz", s.handleHealth)

	handle(mux, "POST /api/v1/profile", s.authenticated(s.handleCreateProfile))
	handle(mux, "GET /api/v1/profile", s.authenticated(s.handleGetProfile))

	handle(mux, "GET /api/v1/dashboard", s.withSession(s.handleDashboard))

	handle(mux, "GET /api/v1/bookings", s.withSession(s.handleListBookings))
	handle(mux, "POST /api/v1/bookings", s.withSession(s.handleCreateBooking))
	handle(mux, "GET /api/v1/bookings/export", s.withSession(s.handleExportBookings))
	handle(mux, "GET /api/v1/bookings/{id}", s.withSession(s.handleGetBooking))
	handle(mux, "PATCH /api/v1/bookings/{id}", s.withSession(s.handleUpdateBooking))
	handle(mux, "DELETE /api/v1/bookings/{id}", s.withSession(s.handleDeleteBooking))
	handle(mux, "PUT /api/v1/bookings/{id}/status", s.withSession(s.handleSetBookingStatus))
	handle(mux, "POST /api/v1/bookings/{id}/suggestion", s.withSession(s.handleSuggestForBooking))

	handle(mux, "POST /api/v1/suggestions", s.withSession(s.handleSuggest))

	handle(mux, "GET /api/v1/vehicles", s.withSession(s.handleListVehicles))
	handle(mux, "POST /api/v1/vehicles", s.withSession(s.handleCreateVehicle))
	handle(mux, "GET /api/v1/vehicles/{id}", s.withSession(s.handleGetVehicle))
	handle(mux, "PATCH /api/v1/vehicles/{id}", s.withSession(s.handleUpdateVehicle))
	handle(mux, "DELETE /api/v1/vehicles/{id}", s.withSession(s.handleDeleteVehicle))

	handle(mux, "GET /api/v1/employees", s.withSession(s.handleListEmployees))
	handle(mux, "POST /api/v1/employees", s.withSession(s.handleCreateEmployee))
	handle(mux, "GET /api/v1/employees/{id}", s.withSession(s.handleGetEmployee))
	handle(mux, "PATCH /api/v1/employees/{id}", s.withSession(s.handleUpdateEmployee))
	handle(mux, "DELETE /api/v1/employees/{id}", s.withSession(s.handleDeleteEmployee))

	handle(mux, "GET /api/v1/reviews", s.withSession(s.handleListReviews))
	handle(mux, "POST /api/v1/reviews", s.withSession(s.handleSubmitReview))
	handle(mux, "GET /api/v1/reviews/reviewed-bookings", s.withSession(s.handleReviewedBookings))
	handle(mux, "DELETE /api/v1/reviews/{id}", s.withSession(s.handleDeleteReview))

	handle(mux, "GET /api/v1/notifications", s.withSession(s.handleListNotifications))
	handle(mux, "POST /api/v1/notifications", s.withSession(s.handleCreateNotification))
	handle(mux, "GET /api/v1/notifications/unread-count", s.withSession(s.handleUnreadCount))
	handle(mux, "POST /api/v1/notifications/read-all", s.withSession(s.handleMarkAllRead))
	handle(mux, "POST /api/v1/notifications/{id}/read", s.withSession(s.handleMarkRead))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// errorStatus maps service and storage errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, suggest.ErrSuggestionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON body into dest, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
