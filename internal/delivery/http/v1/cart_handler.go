package v1

import (
	"net/http"

	"storefront-console/internal/domain"
	"storefront-console/internal/usecase"
	"storefront-console/pkg/utils"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC}
}

// cartView adds the checkout total of the selected lines.
type cartView struct {
	*domain.Cart
	SelectedTotal float64 `json:"selectedTotal"`
}

func writeCart(w http.ResponseWriter, cart *domain.Cart) {
	utils.WriteJSON(w, http.StatusOK, cartView{Cart: cart, SelectedTotal: cart.SelectedTotal()})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartUC.GetCart(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

// UpdateCart sets a line's quantity; 0 removes it on the backend.
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req domain.CartItemUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.cartUC.UpdateItem(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartUC.RemoveItem(r.Context(), r.PathValue("itemId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req domain.CartSelection
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.cartUC.Select(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order, err := h.cartUC.Checkout(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}
