package middleware

import (
	"errors"
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/pkg/utils"
)

// RequireGuard rejects requests whose session fails g.
// MUST be used AFTER SessionMiddleware.
func RequireGuard(g domain.Guard, posOpen bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := domain.SessionFromContext(r.Context())
			redirect, err := g.Check(s, posOpen)
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "Unauthorized: sign in required",
					"redirect": redirect,
				})
				return
			case err != nil:
				utils.WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":    "Forbidden: insufficient role",
					"redirect": redirect,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware ensures the session belongs to an admin.
func AdminMiddleware(next http.Handler) http.Handler {
	return RequireGuard(domain.GuardAdmin, false)(next)
}

// AuthMiddleware ensures the request carries a valid session.
func AuthMiddleware(next http.Handler) http.Handler {
	return RequireGuard(domain.GuardAuthenticated, false)(next)
}
