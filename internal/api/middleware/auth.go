package middleware

import (
	"context"
	"errors"
	"net/http"
	"vaccitrack/internal/common"
	"vaccitrack/internal/common/security"
	"vaccitrack/internal/domain/model"
	"vaccitrack/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type contextKey string

const UserCtxKey contextKey = "user"

// AuthCookieName is the cookie the login flow sets.
const AuthCookieName = "Authorization"

// TokenFromAuthCookie is a jwtauth token finder for the session cookie.
func TokenFromAuthCookie(r *http.Request) string {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Authenticator requires a token verified by jwtauth.Verify, loads the user
// it names and stores it in the request context.
func Authenticator(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "Authentication token missing")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Wrong authentication token")
				}
				return
			}
			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Wrong authentication token")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Wrong authentication token")
				return
			}

			user, err := userRepo.FindOne(r.Context(), model.UserFilter{ID: userID})
			if err != nil {
				if !errors.Is(err, common.ErrNotFound) {
					logger.Error("failed to load authenticated user", zap.String("user_id", userID), zap.Error(err))
				}
				common.RespondWithError(w, http.StatusUnauthorized, "Wrong authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user placed by Authenticator.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}
