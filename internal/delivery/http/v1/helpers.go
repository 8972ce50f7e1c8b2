package v1

import (
	"context"
	"errors"
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

// notFoundView is the resource-not-found payload the client renders with
// retry and back actions.
type notFoundView struct {
	Error   string         `json:"error"`
	View    string         `json:"view"`
	Actions notFoundAction `json:"actions"`
}

type notFoundAction struct {
	Retry string `json:"retry"`
	Back  string `json:"back"`
}

// writeError maps domain errors onto HTTP responses in one place.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var apiErr *domain.APIError

	switch {
	case errors.As(err, &ve):
		utils.WriteFieldErrors(w, http.StatusUnprocessableEntity, ve.Error(), ve.Fields)
	case errors.Is(err, domain.ErrTooManyCombinations):
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNoSelection), errors.Is(err, domain.ErrNoBulkEdit):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, notFoundView{
			Error:   "The requested resource could not be found",
			View:    "ResourceNotFound",
			Actions: notFoundAction{Retry: r.URL.RequestURI(), Back: backFor(r)},
		})
	case errors.Is(err, domain.ErrUnauthorized):
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrSubmitInProgress), errors.Is(err, domain.ErrDraftLocked), errors.Is(err, domain.ErrConflict):
		msg := err.Error()
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		utils.WriteError(w, http.StatusConflict, msg)
	case errors.Is(err, domain.ErrNotIntegrated):
		utils.WriteError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		logger.WithContext(r.Context()).Error().Err(err).Msg("Backend request failed")
		utils.WriteError(w, http.StatusBadGateway, "The backend is unavailable, please try again")
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteError(w, http.StatusGatewayTimeout, "The backend took too long to respond")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("Unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// backFor is the client route to go back to from the current API path.
func backFor(r *http.Request) string {
	if s := domain.SessionFromContext(r.Context()); s.IsAdmin() {
		return "/admin/products"
	}
	return "/shop"
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := utils.DecodeJSON(r, v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFor is the HTTP status writeError would pick for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTooManyCombinations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoSelection), errors.Is(err, domain.ErrNoBulkEdit):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSubmitInProgress), errors.Is(err, domain.ErrDraftLocked), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotIntegrated):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
