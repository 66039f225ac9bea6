package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/auth"
)

// requireAuth guards a route behind a verified bearer token. Failures are
// reported in priority order: missing credential, then expired token, then a
// malformed or badly signed one.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respond.Error(w, http.StatusUnauthorized, "You don't have authorization")
			return
		}

		// Clients may send the raw token, a quoted token, or a
		// Bearer-prefixed one.
		tokenStr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(authHeader), "Bearer"))
		tokenStr = strings.Trim(tokenStr, `"'`)
		if tokenStr == "" {
			respond.Error(w, http.StatusUnauthorized, "You don't have authorization")
			return
		}

		claims, err := auth.ValidateJWT(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				respond.Error(w, http.StatusUnauthorized, "Token expired")
				return
			}
			respond.Error(w, http.StatusForbidden, "Token not valid")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), claims)))
	})
}
