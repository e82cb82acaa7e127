package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"munlink-backend/internal/config"
	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

type actorKey struct{}

// ActorFromContext returns the authenticated caller, or nil on public routes.
func ActorFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(actorKey{}).(*domain.User)
	return u
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

// requestID tags the request-scoped logger with the caller's request id or a
// fresh one, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// observe logs one line per request and feeds the HTTP collectors.
func observe(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			name := routeName(r)
			m.ObserveHTTP(name, r.Method, rec.status, elapsed)
			logger.InfoContext(r.Context(), "HTTP request",
				"route", name,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}

// recoverPanics turns a handler panic into a 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(r.Context(), "Handler panicked",
					"panic", fmt.Sprint(p),
					"stack", string(debug.Stack()),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate enforces the security level registered for the matched route
// name and stores the caller in the request context.
func authenticate(tokens security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			level := config.GetSecurityLevel(routeName(r))
			if level == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(r.Context(), "Unauthorized access, invalid token", "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			actor := claims.Principal()
			if level == config.SecurityAdmin && !actor.Role.IsAdmin() {
				writeJSONError(w, http.StatusForbidden, "forbidden", "Administrator role required")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			ctx = logger.WithAttrs(ctx, "userID", actor.ID, "role", actor.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
