// internal/service/catalog/catalog_service.go
package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"storefront-crm/internal/domain/catalog"
	xerrors "storefront-crm/internal/pkg/errors"

	"go.uber.org/zap"
)

const defaultCurrency = "USD"

type ProductStore interface {
	Create(ctx context.Context, p *catalog.Product) error
	FindByID(ctx context.Context, storeID, id string) (*catalog.Product, error)
	List(ctx context.Context, storeID string, f catalog.ProductListFilters) ([]catalog.Product, error)
	SoftDelete(ctx context.Context, storeID, id string) error
	AssignCategory(ctx context.Context, productID, categoryID string) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *catalog.Category) error
	FindByID(ctx context.Context, storeID, id string) (*catalog.Category, error)
	List(ctx context.Context, storeID string) ([]catalog.Category, error)
}

type CatalogService struct {
	productRepo  ProductStore
	categoryRepo CategoryStore
	logger       *zap.Logger
}

func NewCatalogService(productRepo ProductStore, categoryRepo CategoryStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, storeID string, req *catalog.CreateProductRequest) (*catalog.Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" || strings.Contains(sku, "--") {
		return nil, xerrors.Invalid("sku %q is not valid", req.SKU)
	}
	if req.Price < 0 {
		return nil, xerrors.Invalid("price cannot be negative")
	}

	status := req.Status
	if status == "" {
		status = catalog.ProductDraft
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	product := &catalog.Product{
		StoreID:     storeID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         sku,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		Status:      status,
		CategoryIDs: []string{},
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("store_id", storeID),
		zap.String("product_id", product.ID),
		zap.String("sku", sku),
	)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, storeID, id string) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, storeID, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, storeID string, f catalog.ProductListFilters) ([]catalog.Product, error) {
	products, err := s.productRepo.List(ctx, storeID, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

// DeleteProduct soft-deletes; past orders keep their line item snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, storeID, id string) error {
	if err := s.productRepo.SoftDelete(ctx, storeID, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("product deleted", zap.String("store_id", storeID), zap.String("product_id", id))
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, storeID string, req *catalog.CreateCategoryRequest) (*catalog.Category, error) {
	slug := Slugify(req.Name)
	if slug == "" {
		return nil, xerrors.Invalid("category name %q has no usable characters", req.Name)
	}
	category := &catalog.Category{
		StoreID: storeID,
		Name:    strings.TrimSpace(req.Name),
		Slug:    slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, storeID string) ([]catalog.Category, error) {
	cats, err := s.categoryRepo.List(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	return cats, nil
}

// AssignCategory links a product to a category of the same store.
func (s *CatalogService) AssignCategory(ctx context.Context, storeID, productID, categoryID string) (*catalog.Product, error) {
	if _, err := s.productRepo.FindByID(ctx, storeID, productID); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, storeID, categoryID); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", categoryID, xerrors.ErrInvalidReference)
		}
		return nil, err
	}
	if err := s.productRepo.AssignCategory(ctx, productID, categoryID); err != nil {
		return nil, fmt.Errorf("failed to assign category: %w", err)
	}
	return s.productRepo.FindByID(ctx, storeID, productID)
}

// Slugify lowercases name and joins its letter/digit runs with single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
