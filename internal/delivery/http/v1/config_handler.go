package v1

import (
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

// ConfigHandler publishes the portal route table and answers guard checks.
type ConfigHandler struct {
	posOpen bool
}

func NewConfigHandler(posOpen bool) *ConfigHandler {
	return &ConfigHandler{posOpen: posOpen}
}

// GET /api/v1/config/routes
func (h *ConfigHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"routes":        domain.Routes,
		"posOpenAccess": h.posOpen,
	})
}

// GET /api/v1/config/resolve?path=/admin/products/42
func (h *ConfigHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		utils.WriteError(w, http.StatusBadRequest, "path is required")
		return
	}
	res, err := domain.ResolveRoute(path, domain.SessionFromContext(r.Context()), h.posOpen)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// NotIntegrated answers for views whose backend is not wired yet.
func NotIntegrated(route domain.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.NotIntegrated(r.Context(), route.View)
		utils.WriteJSON(w, http.StatusNotImplemented, map[string]string{
			"error":       domain.ErrNotIntegrated.Error(),
			"integration": route.View,
		})
	}
}
