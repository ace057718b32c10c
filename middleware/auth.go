package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"iap-backoffice/models"
	"iap-backoffice/services/auth"
	"iap-backoffice/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

const (
	// SessionName is the backoffice cookie that carries the access token for browser clients.
	SessionName     = "iap_session"
	SessionTokenKey = "token"
)

type TokenValidator interface {
	ValidateToken(token string) (*models.AdminUser, error)
}

// AuthMiddleware accepts a Bearer token, falling back to the session cookie.
func AuthMiddleware(validator TokenValidator, store sessions.Store, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := tokenFromRequest(r, store)
			if problem != "" {
				logger.Infof("Rejected request from %s: %s", r.RemoteAddr, problem)
				utils.SendErrorResponse(w, http.StatusUnauthorized, problem)
				return
			}

			user, err := validator.ValidateToken(token)
			if err != nil {
				logger.Infof("Token validation failed from %s: %v", r.RemoteAddr, err)

				message := "Authentication failed"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					message = "Token expired"
				case errors.Is(err, auth.ErrInvalidToken):
					message = "Invalid token"
				}
				utils.SendErrorResponse(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest returns the token, or a client-facing reason why there is none.
func tokenFromRequest(r *http.Request, store sessions.Store) (string, string) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", "Invalid authorization header format"
		}
		return parts[1], ""
	}

	if store != nil {
		session, err := store.Get(r, SessionName)
		if err == nil {
			if token, ok := session.Values[SessionTokenKey].(string); ok && token != "" {
				return token, ""
			}
		}
	}
	return "", "Missing authorization"
}

func GetUserFromContext(ctx context.Context) *models.AdminUser {
	user, ok := ctx.Value(UserContextKey).(*models.AdminUser)
	if !ok {
		return nil
	}
	return user
}
