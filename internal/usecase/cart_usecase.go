package usecase

import (
	"context"
	"fmt"
	"strconv"

	"storefront-console/config"
	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
)

// CartUsecase keeps the shop cart in sync with the backend.
type CartUsecase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	cfg         *config.Config
}

func NewCartUsecase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, cfg *config.Config) *CartUsecase {
	return &CartUsecase{cartRepo: cartRepo, productRepo: productRepo, cfg: cfg}
}

func (u *CartUsecase) GetCart(ctx context.Context) (*domain.Cart, error) {
	return u.cartRepo.Get(ctx)
}

// UpdateItem sets the quantity of a cart line. A product with exactly one
// variant has it picked automatically; several variants need an explicit choice.
func (u *CartUsecase) UpdateItem(ctx context.Context, update domain.CartItemUpdate) (*domain.Cart, error) {
	if errs := domain.ValidateStruct(update); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid cart item", Fields: errs}
	}
	if update.Quantity > u.cfg.MaxCartQuantity {
		return nil, domain.NewValidationError("quantity", "Must be at most "+strconv.Itoa(u.cfg.MaxCartQuantity))
	}

	if update.VariantID == nil {
		variants, err := u.productRepo.GetVariants(ctx, update.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load variants of %s: %w", update.ProductID, err)
		}
		switch len(variants) {
		case 0:
		case 1:
			id := variants[0].ID
			update.VariantID = &id
			logger.WithContext(ctx).Debug().Str("variant_id", id).Msg("Cart: auto-resolved single variant")
		default:
			return nil, domain.NewValidationError("variantId", "Please select a variant option")
		}
	}

	return u.cartRepo.UpdateItem(ctx, update)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	return u.cartRepo.RemoveItem(ctx, itemID)
}

// Select checks or unchecks cart lines for checkout.
func (u *CartUsecase) Select(ctx context.Context, sel domain.CartSelection) (*domain.Cart, error) {
	if errs := domain.ValidateStruct(sel); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid selection", Fields: errs}
	}
	return u.cartRepo.Select(ctx, sel)
}

// Checkout places an order for the selected cart lines.
func (u *CartUsecase) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Order, error) {
	if errs := domain.ValidateStruct(req); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "Please complete the checkout form", Fields: errs}
	}

	cart, err := u.cartRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cart.HasSelection() {
		return nil, domain.NewValidationError("cart", "Select at least one item to check out")
	}

	order, err := u.cartRepo.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Float64("total", order.TotalAmount).
		Str("payment_method", req.PaymentMethod).
		Msg("Order placed")
	return order, nil
}
