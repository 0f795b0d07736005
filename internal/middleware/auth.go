package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/andriyanb/artikel-be/internal/auth"
	"github.com/andriyanb/artikel-be/internal/http/respond"
)

type ctxKey int

const principalKey ctxKey = iota

// PrincipalFrom extracts the authenticated principal stored by Authenticate.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// Authenticate verifies the Authorization bearer token and stores the
// resulting principal on the request context. It does not enforce roles.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respond.Error(w, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
				return
			}
			principal, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose principal lacks the admin role.
// Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !principal.IsAdmin() {
			respond.Error(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
