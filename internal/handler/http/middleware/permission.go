package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/auth"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// LoadUser resolves the token's subject from the store so roles, status and
// the active role are current on every request. It must run after AuthRequired.
func LoadUser(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			userID, _ := claims["user_id"].(string)
			if userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					response.HandleError(w, auth.ErrInvalidToken)
					return
				}
				slog.Error("Failed to load authenticated user", "user_id", userID, "error", err)
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
		})
	}
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if !user.HasPermission(u, permission) {
				if !u.IsActive() {
					response.HandleError(w, user.ErrUserInactive)
					return
				}
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but active role is '%s'", permission, u.ActiveRole))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
