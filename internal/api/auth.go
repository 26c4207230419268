package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	ua "github.com/mssola/user_agent"
	"github.com/rs/zerolog"

	"nomadx/internal/database"
	"nomadx/internal/models"
	"nomadx/internal/service"
)

const (
	requestIDHeader  = "X-Request-ID"
	clientKeyUnknown = "unknown"
)

type ctxKey int

const (
	accountKey ctxKey = iota
	sessionKey
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNoRole       = errors.New("no role assigned to this account")
	errRateLimited  = errors.New("rate limit exceeded")
)

// authenticated verifies the bearer token and attaches the account to the request.
func (s *HTTPServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, errMissingToken.Error())
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		account := claims.Account()

		if !s.limiter.allow(account.ID) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("account_id", account.ID)
		})
		next(w, r.WithContext(ctx))
	}
}

// withSession additionally resolves the account's role. An account without a profile
// is rejected with 403.
func (s *HTTPServer) withSession(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		account := accountFrom(r.Context())

		role, err := s.svc.Users.GetRole(r.Context(), account.ID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusForbidden, errNoRole.Error())
				return
			}
			s.respondError(w, r, err)
			return
		}
		if !role.Valid() {
			writeError(w, http.StatusForbidden, errNoRole.Error())
			return
		}

		sess := service.Session{Account: account, Role: role}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func accountFrom(ctx context.Context) models.Account {
	account, _ := ctx.Value(accountKey).(models.Account)
	return account
}

func sessionFrom(ctx context.Context) service.Session {
	sess, _ := ctx.Value(sessionKey).(service.Session)
	return sess
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// loggingMiddleware assigns a request id, puts a request-scoped logger in the context
// and logs one line per request with the caller's device summary.
func loggingMiddleware(base *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		reqLogger := base.With().Str("request_id", requestID).Logger()
		r = r.WithContext(reqLogger.WithContext(r.Context()))

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		device := ua.New(r.UserAgent())
		browser, _ := device.Browser()

		zerolog.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Str("remote", remoteHost(r)).
			Str("browser", browser).
			Str("os", device.OS()).
			Bool("mobile", device.Mobile()).
			Bool("bot", device.Bot()).
			Msg("http request")
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
