package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roster/roster/internal/auth"
	"github.com/roster/roster/internal/jwks"
	"github.com/roster/roster/internal/metrics"
)

// TokenValidator checks a bearer token. *jwks.Validator satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger    *slog.Logger
	Validator TokenValidator
	Metrics   metrics.Recorder
}

// Auth returns a middleware that authenticates requests with a bearer token.
// It extracts the token from the Authorization header, validates it against
// the authority's key set, and injects the token subject into the request
// context. Every failure mode rejects with 401; a validator error never takes
// the process down.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure("missing_token")
				writeAuthError(w)
				return
			}

			valid, err := cfg.Validator.Validate(r.Context(), token)
			if err != nil {
				cfg.Logger.Error("error validating token",
					slog.String("reason", failureReason(err)),
					slog.String("error", err.Error()),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure(failureReason(err))
				writeAuthError(w)
				return
			}

			if !valid {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure("invalid_token")
				writeAuthError(w)
				return
			}

			recorder.IncAuthSuccess()

			ctx := auth.ContextWithSubject(r.Context(), jwks.Subject(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwks.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, jwks.ErrKeySetFetch):
		return "fetch_error"
	default:
		return "validator_error"
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent probing.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid or missing credentials"}`))
}
