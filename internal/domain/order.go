package domain

import (
	"context"
	"time"
)

// Payment Methods
const (
	PaymentMethodCOD   = "cod"
	PaymentMethodBKash = "bkash"
	PaymentMethodNagad = "nagad"
)

// --- Cart Entities ---

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID           string   `json:"id"`
	ProductID    string   `json:"productId"`
	ProductName  string   `json:"productName"`
	VariantID    *string  `json:"variantId"`
	VariantName  *string  `json:"variantName"`
	VariantImage *string  `json:"variantImage"`
	Quantity     int      `json:"quantity"`
	Price        float64  `json:"price"`     // Effective price
	SalePrice    *float64 `json:"salePrice"` // Effective sale price (if any)
	Selected     bool     `json:"selected"`  // included in checkout
}

// SelectedTotal sums price * quantity over checked items.
func (c *Cart) SelectedTotal() float64 {
	var total float64
	for _, it := range c.Items {
		if !it.Selected {
			continue
		}
		price := it.Price
		if it.SalePrice != nil {
			price = *it.SalePrice
		}
		total += price * float64(it.Quantity)
	}
	return total
}

// HasSelection reports whether at least one item is checked for checkout.
func (c *Cart) HasSelection() bool {
	for _, it := range c.Items {
		if it.Selected {
			return true
		}
	}
	return false
}

type CartItemUpdate struct {
	ProductID string  `json:"productId" validate:"required"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
}

type CartSelection struct {
	ItemIDs  []string `json:"itemIds" validate:"required,min=1"`
	Selected bool     `json:"selected"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cod bkash nagad"`
	FullName      string `json:"fullName" validate:"required"`
	Phone         string `json:"phone" validate:"required,min=6"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	Note          string `json:"note"`
}

// --- Order Entities ---

type Order struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	TotalAmount   float64     `json:"totalAmount"`
	ShippingFee   float64     `json:"shippingFee"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at time of purchase
}

// --- Interfaces ---

type CartRepository interface {
	Get(ctx context.Context) (*Cart, error)
	UpdateItem(ctx context.Context, update CartItemUpdate) (*Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*Cart, error)
	Select(ctx context.Context, sel CartSelection) (*Cart, error)
	Checkout(ctx context.Context, req CheckoutRequest) (*Order, error)
}
