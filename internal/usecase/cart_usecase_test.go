package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront-console/config"
	"storefront-console/internal/domain"
)

type fakeCart struct {
	cart     *domain.Cart
	updates  []domain.CartItemUpdate
	checkout int
}

func (f *fakeCart) Get(ctx context.Context) (*domain.Cart, error) { return f.cart, nil }

func (f *fakeCart) UpdateItem(ctx context.Context, update domain.CartItemUpdate) (*domain.Cart, error) {
	f.updates = append(f.updates, update)
	return f.cart, nil
}

func (f *fakeCart) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	return f.cart, nil
}

func (f *fakeCart) Select(ctx context.Context, sel domain.CartSelection) (*domain.Cart, error) {
	for i := range f.cart.Items {
		for _, id := range sel.ItemIDs {
			if f.cart.Items[i].ID == id {
				f.cart.Items[i].Selected = sel.Selected
			}
		}
	}
	return f.cart, nil
}

func (f *fakeCart) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Order, error) {
	f.checkout++
	return &domain.Order{ID: "o-1", PaymentMethod: req.PaymentMethod}, nil
}

func TestCartUpdateItemResolvesVariant(t *testing.T) {
	products := &fakeProducts{byID: map[string]*domain.Product{
		"single": {ID: "single", Variants: []domain.ProductVariant{{ID: "v1"}}},
		"multi":  {ID: "multi", Variants: []domain.ProductVariant{{ID: "v1"}, {ID: "v2"}}},
		"plain":  {ID: "plain"},
	}}
	cfg := &config.Config{MaxCartQuantity: 10}

	tests := []struct {
		name        string
		update      domain.CartItemUpdate
		wantVariant string
		wantField   string
	}{
		{name: "single variant", update: domain.CartItemUpdate{ProductID: "single", Quantity: 1}, wantVariant: "v1"},
		{name: "no variants", update: domain.CartItemUpdate{ProductID: "plain", Quantity: 1}},
		{name: "ambiguous", update: domain.CartItemUpdate{ProductID: "multi", Quantity: 1}, wantField: "variantId"},
		{name: "missing product", update: domain.CartItemUpdate{Quantity: 1}, wantField: "productId"},
		{name: "too many", update: domain.CartItemUpdate{ProductID: "plain", Quantity: 11}, wantField: "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := &fakeCart{cart: &domain.Cart{}}
			uc := NewCartUsecase(carts, products, cfg)

			_, err := uc.UpdateItem(context.Background(), tt.update)
			if tt.wantField != "" {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) || ve.Fields[tt.wantField] == "" {
					t.Fatalf("err = %v, want field error on %s", err, tt.wantField)
				}
				if len(carts.updates) != 0 {
					t.Fatal("backend must not be called")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got := carts.updates[0].VariantID
			if tt.wantVariant == "" && got != nil {
				t.Fatalf("variant = %v, want none", *got)
			}
			if tt.wantVariant != "" && (got == nil || *got != tt.wantVariant) {
				t.Fatalf("variant = %v, want %s", got, tt.wantVariant)
			}
		})
	}
}

func TestCheckoutNeedsSelection(t *testing.T) {
	carts := &fakeCart{cart: &domain.Cart{Items: []domain.CartItem{{ID: "i1", Price: 100, Quantity: 2}}}}
	uc := NewCartUsecase(carts, &fakeProducts{}, &config.Config{MaxCartQuantity: 10})
	ctx := context.Background()
	req := domain.CheckoutRequest{PaymentMethod: "cod", FullName: "A B", Phone: "0171234567", Address: "Road 1", City: "Dhaka"}

	if _, err := uc.Checkout(ctx, req); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, err := uc.Select(ctx, domain.CartSelection{ItemIDs: []string{"i1"}, Selected: true}); err != nil {
		t.Fatal(err)
	}
	order, err := uc.Checkout(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if order.ID != "o-1" || carts.checkout != 1 {
		t.Fatalf("unexpected order %+v", order)
	}

	bad := req
	bad.PaymentMethod = "card"
	if _, err := uc.Checkout(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown payment method accepted: %v", err)
	}
}
