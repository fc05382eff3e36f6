package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/pkg/actor"
	"clinic-front-desk/pkg/jwt"
	"clinic-front-desk/pkg/response"

	"github.com/google/uuid"
)

// AuthMiddleware verifies bearer tokens by signature and expiry only.
// There is no server-side token store.
type AuthMiddleware struct {
	jwtService *jwt.JWTService
}

func NewAuthMiddleware(jwtService *jwt.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := actor.WithActor(r.Context(), actor.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	a, ok := actor.FromContext(ctx)
	if !ok || a.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return a.UserID, true
}

// GetRoleFromContext extracts the caller's role from context
func GetRoleFromContext(ctx context.Context) (entity.Role, bool) {
	a, ok := actor.FromContext(ctx)
	if !ok || a.Role == "" {
		return "", false
	}
	return entity.Role(a.Role), true
}
