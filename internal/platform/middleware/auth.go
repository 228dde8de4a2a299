package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating profile tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*ProfileClaims, error)
}

// ProfileClaims represents the claims we expect from the token validator.
type ProfileClaims struct {
	ProfileID   string
	ProfileType string
	DisplayName string
}

// Context keys for storing authenticated profile information.
type contextKeyProfileID struct{}
type contextKeyProfileType struct{}

var (
	ContextKeyProfileID   = contextKeyProfileID{}
	ContextKeyProfileType = contextKeyProfileType{}
)

// GetProfileID retrieves the authenticated profile ID from the context.
func GetProfileID(ctx context.Context) string {
	profileID, ok := ctx.Value(ContextKeyProfileID).(string)
	if !ok {
		return ""
	}
	return profileID
}

// GetProfileType retrieves the authenticated profile type from the context.
func GetProfileType(ctx context.Context) string {
	profileType, ok := ctx.Value(ContextKeyProfileType).(string)
	if !ok {
		return ""
	}
	return profileType
}

// RequireAuth validates the bearer token and stores profile identity in the
// request context. Requests without a valid token are rejected with 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					ctx := r.Context()
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					writeUnauthorized(w, "Invalid or expired token")
					return
				}

				ctx := context.WithValue(r.Context(), ContextKeyProfileID, claims.ProfileID)
				ctx = context.WithValue(ctx, ContextKeyProfileType, claims.ProfileType)

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx := r.Context()
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", GetRequestID(ctx),
			)
			writeUnauthorized(w, "Missing or invalid Authorization header")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
