package middleware

import (
	"net/http"
	"strings"

	"github.com/trip-board/backend/internal/auth"
)

// RequireToken returns middleware that accepts only requests carrying a
// bearer token signed with secret.
func RequireToken(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Missing bearer token")
				return
			}
			if _, err := auth.ParseToken(secret, token); err != nil {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
