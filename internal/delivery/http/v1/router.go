package v1

import (
	"net/http"

	"storefront-console/internal/delivery/http/middleware"
	"storefront-console/internal/domain"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	AdminCatalog *AdminCatalogHandler
	Drafts       *ProductDraftHandler
	Cart         *CartHandler
	Upload       *UploadHandler
	Config       *ConfigHandler
}

// NewRouter registers the JSON API. Session resolution happens outside the
// mux; each route here only applies its guard.
func NewRouter(h Handlers, posOpen bool) *http.ServeMux {
	mux := http.NewServeMux()

	auth := func(fn http.HandlerFunc) http.Handler { return middleware.AuthMiddleware(fn) }
	admin := func(fn http.HandlerFunc) http.Handler { return middleware.AdminMiddleware(fn) }

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /api/v1/health", healthHandler)

	// Config (Public)
	mux.HandleFunc("GET /api/v1/config/routes", h.Config.GetRoutes)
	mux.HandleFunc("GET /api/v1/config/resolve", h.Config.Resolve)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/v1/auth/me", auth(h.Auth.Me))
	mux.Handle("PUT /api/v1/user/profile", auth(h.Auth.UpdateProfile))

	// Shop (Public)
	mux.HandleFunc("GET /api/v1/shop/products", h.Catalog.ListProducts)
	mux.HandleFunc("GET /api/v1/shop/products/{id}", h.Catalog.GetProduct)
	mux.HandleFunc("GET /api/v1/shop/products/{id}/variants", h.Catalog.GetVariants)
	mux.HandleFunc("GET /api/v1/shop/categories", h.Catalog.GetCategories)

	// Cart & Checkout (Protected)
	mux.Handle("GET /api/v1/cart", auth(h.Cart.GetCart))
	mux.Handle("PUT /api/v1/cart", auth(h.Cart.UpdateCart))
	mux.Handle("DELETE /api/v1/cart/{itemId}", auth(h.Cart.RemoveFromCart))
	mux.Handle("POST /api/v1/cart/select", auth(h.Cart.Select))
	mux.Handle("POST /api/v1/checkout", auth(h.Cart.Checkout))

	// Admin Categories & Brands
	mux.Handle("GET /api/v1/admin/categories", admin(h.AdminCatalog.GetAllCategories))
	mux.Handle("POST /api/v1/admin/categories", admin(h.AdminCatalog.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", admin(h.AdminCatalog.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", admin(h.AdminCatalog.DeleteCategory))
	mux.Handle("GET /api/v1/admin/brands", admin(h.AdminCatalog.GetAllBrands))
	mux.Handle("POST /api/v1/admin/brands", admin(h.AdminCatalog.CreateBrand))
	mux.Handle("PUT /api/v1/admin/brands/{id}", admin(h.AdminCatalog.UpdateBrand))
	mux.Handle("DELETE /api/v1/admin/brands/{id}", admin(h.AdminCatalog.DeleteBrand))
	mux.Handle("POST /api/v1/admin/uploads", admin(h.Upload.UploadFile))

	// Admin Product Drafts
	const drafts = "/api/v1/admin/products/drafts"
	mux.Handle("POST "+drafts, admin(h.Drafts.Create))
	mux.Handle("POST /api/v1/admin/products/{id}/drafts", admin(h.Drafts.EditProduct))
	mux.Handle("GET "+drafts+"/{id}", admin(h.Drafts.Get))
	mux.Handle("DELETE "+drafts+"/{id}", admin(h.Drafts.Discard))
	mux.Handle("PATCH "+drafts+"/{id}/fields", admin(h.Drafts.SetFields))
	mux.Handle("POST "+drafts+"/{id}/attributes/values", admin(h.Drafts.AddAttributeValue))
	mux.Handle("DELETE "+drafts+"/{id}/attributes/{attr}/values/{value}", admin(h.Drafts.RemoveAttributeValue))
	mux.Handle("DELETE "+drafts+"/{id}/attributes/{attr}", admin(h.Drafts.RemoveAttribute))
	mux.Handle("PATCH "+drafts+"/{id}/variants/{variantId}", admin(h.Drafts.UpdateVariant))
	mux.Handle("PUT "+drafts+"/{id}/selection", admin(h.Drafts.ChangeSelection))
	mux.Handle("POST "+drafts+"/{id}/bulk/confirm", admin(h.Drafts.ConfirmBulk))
	mux.Handle("POST "+drafts+"/{id}/bulk/cancel", admin(h.Drafts.CancelBulk))
	mux.Handle("POST "+drafts+"/{id}/bulk/{kind}", admin(h.Drafts.OpenBulk))
	mux.Handle("PUT "+drafts+"/{id}/bulk", admin(h.Drafts.UpdateBulk))
	mux.Handle("POST "+drafts+"/{id}/images", admin(h.Drafts.UploadImages))
	mux.Handle("DELETE "+drafts+"/{id}/images", admin(h.Drafts.RemoveImage))
	mux.Handle("DELETE "+drafts+"/{id}/banner", admin(h.Drafts.DismissBanner))
	mux.Handle("POST "+drafts+"/{id}/submit", admin(h.Drafts.Submit))

	// Views without a backend integration: guarded like their route, then 501.
	for _, route := range domain.StubRoutes() {
		stub := middleware.RequireGuard(route.Guard, posOpen)(NotIntegrated(route))
		mux.Handle(route.API, stub)
		mux.Handle(route.API+"/{rest...}", stub)
	}

	return mux
}
