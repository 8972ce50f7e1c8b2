package domain

import (
	"context"
	"time"
)

type Category struct {
	ID         string  `json:"id"`
	Name       string  `json:"name" validate:"required,max=120"`
	Slug       string  `json:"slug"`
	ParentID   *string `json:"parentId"`
	Image      string  `json:"image"`
	OrderIndex int     `json:"orderIndex"`
	IsActive   bool    `json:"isActive"`
}

type Brand struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=120"`
	Slug     string `json:"slug"`
	Logo     string `json:"logo"`
	IsActive bool   `json:"isActive"`
}

// Product is the backend's product record as this console sends and reads it.
type Product struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Barcode      string           `json:"barcode,omitempty"`
	CategoryID   string           `json:"categoryId,omitempty"`
	Brand        string           `json:"brand"`
	Description  string           `json:"description"`
	CostPrice    float64          `json:"costPrice"`
	SellingPrice float64          `json:"sellingPrice"`
	Inventory    int              `json:"inventory"`
	Available    int              `json:"available"`
	Weight       float64          `json:"weight"`
	Dimensions   string           `json:"dimensions,omitempty"`
	Images       []string         `json:"images"`
	Attributes   []Attribute      `json:"attributes"`
	Variants     []ProductVariant `json:"variants"`
	IsActive     bool             `json:"isActive"`
	CreatedAt    time.Time        `json:"createdAt,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt,omitempty"`
}

type ProductVariant struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Price      *float64          `json:"price"` // nil falls back to the product price
	Stock      int               `json:"stock"`
	Available  int               `json:"available"`
	Image      string            `json:"image,omitempty"`
	Barcode    string            `json:"barcode,omitempty"`
	SKU        string            `json:"sku,omitempty"`
}

type ProductFilter struct {
	CategorySlug string
	Query        string
	Sort         string // newest, price_asc, price_desc
	Limit        int
	Offset       int
}

type ProductPage struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// --- Interfaces ---

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetVariants(ctx context.Context, productID string) ([]ProductVariant, error)
	Create(ctx context.Context, product *Product) (*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type BrandRepository interface {
	List(ctx context.Context) ([]Brand, error)
	Create(ctx context.Context, brand *Brand) (*Brand, error)
	Update(ctx context.Context, brand *Brand) (*Brand, error)
	Delete(ctx context.Context, id string) error
}

// DraftRepository keeps in-progress product drafts between requests.
// Lock serialises read-modify-write cycles on one draft across every
// process sharing the store; the returned func releases it.
type DraftRepository interface {
	Get(ctx context.Context, id string) (*ProductDraft, error)
	Save(ctx context.Context, draft *ProductDraft) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (func(), error)
}
