package usecase

import (
	"context"
	"fmt"

	"storefront-console/config"
	"storefront-console/internal/domain"
	"storefront-console/pkg/cache"
	"storefront-console/pkg/utils"
)

const (
	keyCategories = "category:all"
	keyBrands     = "brand:all"
)

// CatalogUsecase serves shop and admin catalog reads from the backend with a
// local cache, and forwards category and brand changes.
type CatalogUsecase struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	brands     domain.BrandRepository
	cache      cache.CacheService
	cfg        *config.Config
}

func NewCatalogUsecase(products domain.ProductRepository, categories domain.CategoryRepository, brands domain.BrandRepository, cache cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		products:   products,
		categories: categories,
		brands:     brands,
		cache:      cache,
		cfg:        cfg,
	}
}

func productKey(id string) string  { return "product:id:" + id }
func variantsKey(id string) string { return "product:variants:" + id }

func (u *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return u.products.List(ctx, filter)
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return cache.Remember(u.cache, productKey(id), u.cfg.CacheProductTTL, func() (*domain.Product, error) {
		return u.products.GetByID(ctx, id)
	})
}

func (u *CatalogUsecase) GetVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	return cache.Remember(u.cache, variantsKey(productID), u.cfg.CacheProductTTL, func() ([]domain.ProductVariant, error) {
		return u.products.GetVariants(ctx, productID)
	})
}

// InvalidateProduct drops the cached detail and variants of a product.
func (u *CatalogUsecase) InvalidateProduct(id string) {
	u.cache.Delete(productKey(id))
	u.cache.Delete(variantsKey(id))
}

// --- Categories ---

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cache.Remember(u.cache, keyCategories, u.cfg.CacheCategoryTTL, func() ([]domain.Category, error) {
		return u.categories.List(ctx)
	})
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := prepareNamed(c, &c.Name, &c.Slug); err != nil {
		return nil, err
	}
	created, err := u.categories.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	u.cache.Delete(keyCategories)
	return created, nil
}

func (u *CatalogUsecase) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := prepareNamed(c, &c.Name, &c.Slug); err != nil {
		return nil, err
	}
	updated, err := u.categories.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", c.ID, err)
	}
	u.cache.Delete(keyCategories)
	return updated, nil
}

func (u *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := u.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	u.cache.Delete(keyCategories)
	return nil
}

// --- Brands ---

func (u *CatalogUsecase) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return cache.Remember(u.cache, keyBrands, u.cfg.CacheCategoryTTL, func() ([]domain.Brand, error) {
		return u.brands.List(ctx)
	})
}

func (u *CatalogUsecase) CreateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	if err := prepareNamed(b, &b.Name, &b.Slug); err != nil {
		return nil, err
	}
	created, err := u.brands.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	u.cache.Delete(keyBrands)
	return created, nil
}

func (u *CatalogUsecase) UpdateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	if err := prepareNamed(b, &b.Name, &b.Slug); err != nil {
		return nil, err
	}
	updated, err := u.brands.Update(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("update brand %s: %w", b.ID, err)
	}
	u.cache.Delete(keyBrands)
	return updated, nil
}

func (u *CatalogUsecase) DeleteBrand(ctx context.Context, id string) error {
	if err := u.brands.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete brand %s: %w", id, err)
	}
	u.cache.Delete(keyBrands)
	return nil
}

// prepareNamed validates v and fills a missing slug from the name.
func prepareNamed(v any, name, slug *string) error {
	if errs := domain.ValidateStruct(v); len(errs) > 0 {
		return &domain.ValidationError{Message: "invalid input", Fields: errs}
	}
	if *slug == "" {
		*slug = utils.GenerateSlug(*name)
	}
	return nil
}
