package rest

import (
	"context"

	"storefront-console/internal/domain"
)

type categoryRepository struct {
	c *Client
}

func NewCategoryRepository(c *Client) domain.CategoryRepository {
	return &categoryRepository{c: c}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := r.c.get(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	var created domain.Category
	if err := r.c.post(ctx, "/categories", category, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	var updated domain.Category
	if err := r.c.put(ctx, "/categories/"+escape(category.ID), category, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, "/categories/"+escape(id), nil)
}

type brandRepository struct {
	c *Client
}

func NewBrandRepository(c *Client) domain.BrandRepository {
	return &brandRepository{c: c}
}

func (r *brandRepository) List(ctx context.Context) ([]domain.Brand, error) {
	brands := []domain.Brand{}
	if err := r.c.get(ctx, "/brands", nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) Create(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	var created domain.Brand
	if err := r.c.post(ctx, "/brands", brand, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	var updated domain.Brand
	if err := r.c.put(ctx, "/brands/"+escape(brand.ID), brand, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *brandRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, "/brands/"+escape(id), nil)
}
