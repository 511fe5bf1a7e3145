package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	userStore  store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, userStore store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userStore:  userStore,
	}
}

// Authenticate validates the bearer token, loads the user it names and stores
// the resulting domain.Requester in the request context. Role and enabled
// flag come from the database, so blocking a user or changing its role takes
// effect on the next request.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}
		if !user.Enabled {
			shared.RespondWithError(w, r, http.StatusForbidden, "Account is disabled")
			return
		}

		ctx := shared.WithRequester(r.Context(), user.Requester())
		log := logger.FromContext(ctx).With(slog.String("user_id", user.ID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose authenticated user is not an ADMIN.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, ok := shared.RequesterFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !requester.IsAdmin() {
			logger.FromContext(r.Context()).Warn("admin endpoint denied",
				slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusForbidden, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
