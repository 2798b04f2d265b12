package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsnap/internal/shared"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated owner id stored by [RequireAuth], or ""
// for unauthenticated requests.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// TokenVerifier resolves a bearer token to an owner id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// StaticVerifier is a [TokenVerifier] backed by a single configured token.
// Suitable for the self-hosted single-owner deployment this service targets.
type StaticVerifier struct {
	Token  string
	UserID string
}

// Verify checks token against the configured value.
func (v StaticVerifier) Verify(token string) (string, error) {
	if v.Token == "" || token != v.Token {
		return "", fmt.Errorf("%w: invalid token", shared.ErrInvalidInput)
	}
	return v.UserID, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved owner id on the request context.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs each request's method, path, status, and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
