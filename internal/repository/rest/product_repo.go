package rest

import (
	"context"
	"net/url"
	"strconv"

	"storefront-console/internal/domain"
)

type productRepository struct {
	c *Client
}

func NewProductRepository(c *Client) domain.ProductRepository {
	return &productRepository{c: c}
}

type productListResponse struct {
	Items []domain.Product `json:"items"`
	Total int64            `json:"total"`
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	q := url.Values{}
	if filter.CategorySlug != "" {
		q.Set("category", filter.CategorySlug)
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	var resp productListResponse
	if err := r.c.get(ctx, "/products", q, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []domain.Product{}
	}
	return &domain.ProductPage{
		Items:      resp.Items,
		Pagination: domain.NewPagination(filter.Limit, filter.Offset, resp.Total),
	}, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.c.get(ctx, "/products/"+escape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	variants := []domain.ProductVariant{}
	if err := r.c.get(ctx, "/products/"+escape(productID)+"/variants", nil, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var created domain.Product
	if err := r.c.post(ctx, "/products", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var updated domain.Product
	if err := r.c.put(ctx, "/products/"+escape(product.ID), product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
