package v1

import (
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/internal/usecase"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	cookieName   string
	secureCookie bool
}

func NewAuthHandler(authUC *usecase.AuthUsecase, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUC: authUC, cookieName: cookieName, secureCookie: secureCookie}
}

type sessionResponse struct {
	AccessToken string          `json:"accessToken"`
	Session     *domain.Session `json:"session"`
	Redirect    string          `json:"redirect"`
}

func (h *AuthHandler) signedIn(w http.ResponseWriter, status int, s *domain.Session) {
	utils.SetSessionCookie(w, h.cookieName, s.Token, s.ExpiresAt, h.secureCookie)
	utils.WriteJSON(w, status, sessionResponse{
		AccessToken: s.Token,
		Session:     s,
		Redirect:    domain.HomeFor(s),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	s, err := h.authUC.Login(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.signedIn(w, http.StatusOK, s)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if !decodeBody(w, r, &reg) {
		return
	}
	s, err := h.authUC.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.signedIn(w, http.StatusCreated, s)
}

// Logout clears the cookie and whatever was cached for the user. It works
// without a valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := domain.SessionFromContext(r.Context()); s.Authenticated() {
		h.authUC.Teardown(s.UserID)
		logger.WithContext(r.Context()).Info().Str("user_id", s.UserID).Msg("User signed out")
	}
	utils.ClearSessionCookie(w, h.cookieName, h.secureCookie)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUC.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s := domain.SessionFromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":      user,
		"role":      s.Role,
		"expiresAt": s.ExpiresAt,
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.authUC.UpdateProfile(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
