package v1

import (
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/internal/usecase"
	"storefront-console/pkg/utils"
)

// AdminCatalogHandler manages categories and brands.
type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: uc}
}

// --- Categories ---

func (h *AdminCatalogHandler) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if !decodeBody(w, r, &c) {
		return
	}
	created, err := h.catalogUC.CreateCategory(r.Context(), &c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = r.PathValue("id")
	updated, err := h.catalogUC.UpdateCategory(r.Context(), &c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Brands ---

func (h *AdminCatalogHandler) GetAllBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogUC.ListBrands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, brands)
}

func (h *AdminCatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var b domain.Brand
	if !decodeBody(w, r, &b) {
		return
	}
	created, err := h.catalogUC.CreateBrand(r.Context(), &b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *AdminCatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var b domain.Brand
	if !decodeBody(w, r, &b) {
		return
	}
	b.ID = r.PathValue("id")
	updated, err := h.catalogUC.UpdateBrand(r.Context(), &b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminCatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteBrand(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
