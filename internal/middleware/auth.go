package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/saya/booking-api/internal/pkg/jwt"
	"github.com/saya/booking-api/internal/pkg/response"
)

type contextKey string

const (
	GuestEmailKey contextKey = "guest_email"
	GuestNameKey  contextKey = "guest_name"
)

// GuestAuth returns middleware that validates the guest JWT
func GuestAuth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), GuestEmailKey, claims.Email)
			ctx = context.WithValue(ctx, GuestNameKey, claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetGuestEmail extracts the authenticated guest email from context
func GetGuestEmail(ctx context.Context) string {
	if email, ok := ctx.Value(GuestEmailKey).(string); ok {
		return email
	}
	return ""
}

// GetGuestName extracts the authenticated guest display name from context
func GetGuestName(ctx context.Context) string {
	if name, ok := ctx.Value(GuestNameKey).(string); ok {
		return name
	}
	return ""
}
