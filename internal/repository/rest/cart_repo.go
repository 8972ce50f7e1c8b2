package rest

import (
	"context"

	"storefront-console/internal/domain"
)

type cartRepository struct {
	c *Client
}

func NewCartRepository(c *Client) domain.CartRepository {
	return &cartRepository{c: c}
}

func (r *cartRepository) Get(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.c.get(ctx, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) UpdateItem(ctx context.Context, update domain.CartItemUpdate) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.c.put(ctx, "/cart/items", update, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.c.delete(ctx, "/cart/items/"+escape(itemID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Select(ctx context.Context, sel domain.CartSelection) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.c.post(ctx, "/cart/select", sel, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Order, error) {
	var order domain.Order
	if err := r.c.post(ctx, "/checkout", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
