package middleware

import (
	"errors"
	"net/http"
	"time"

	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

// SessionBootstrapper turns an access token into a Session.
type SessionBootstrapper interface {
	Bootstrap(token string) (*domain.Session, error)
	Teardown(userID string)
}

// SessionMiddleware builds the caller's Session once per request. Requests
// without a token continue anonymously. An expired or undecodable token is
// torn down: the cookie is cleared, the cached user dropped, and the request
// continues anonymously so guards can redirect to login.
func SessionMiddleware(auth SessionBootstrapper, cookieName string, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.ExtractToken(r, cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := auth.Bootstrap(token)
			if err != nil {
				teardown(w, r, auth, token, cookieName, secureCookie, err)
				next.ServeHTTP(w, r)
				return
			}

			setUserID(r.Context(), session.UserID)
			ctx := domain.ContextWithSession(r.Context(), session)
			l := logger.WithUserID(*logger.WithContext(ctx), session.UserID)
			ctx = logger.NewContext(ctx, &l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func teardown(w http.ResponseWriter, r *http.Request, auth SessionBootstrapper, token, cookieName string, secure bool, cause error) {
	// Expiry is only reported once the signature has been checked, so the
	// subject can be trusted to drop the cached user. Forged tokens cannot.
	if errors.Is(cause, utils.ErrTokenExpired) {
		if claims, err := utils.DecodeJWT(token, nil, time.Time{}); err == nil {
			auth.Teardown(claims.UserID)
		}
	}
	if _, err := r.Cookie(cookieName); err == nil {
		utils.ClearSessionCookie(w, cookieName, secure)
	}

	event := logger.WithContext(r.Context()).Debug()
	if !errors.Is(cause, utils.ErrTokenExpired) {
		event = logger.WithContext(r.Context()).Warn()
	}
	event.Err(cause).Msg("Session token rejected")
}
