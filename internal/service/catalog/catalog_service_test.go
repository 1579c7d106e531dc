package catalog

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-crm/internal/domain/catalog"
	xerrors "storefront-crm/internal/pkg/errors"
)

type fakeProducts struct {
	byID  map[string]*catalog.Product
	links map[string][]string
}

func (f *fakeProducts) Create(_ context.Context, p *catalog.Product) error {
	for _, existing := range f.byID {
		if existing.StoreID == p.StoreID && existing.SKU == p.SKU {
			return &xerrors.ConflictError{Resource: "product", Field: "sku"}
		}
	}
	p.ID = "p" + string(rune('0'+len(f.byID)))
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, storeID, id string) (*catalog.Product, error) {
	p, ok := f.byID[id]
	if !ok || p.StoreID != storeID || p.DeletedAt != nil {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	cp.CategoryIDs = append([]string{}, f.links[id]...)
	sort.Strings(cp.CategoryIDs)
	return &cp, nil
}

func (f *fakeProducts) List(_ context.Context, storeID string, filters catalog.ProductListFilters) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.byID {
		if p.StoreID == storeID && (filters.Status == "" || p.Status == filters.Status) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) SoftDelete(_ context.Context, storeID, id string) error {
	if _, ok := f.byID[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProducts) AssignCategory(_ context.Context, productID, categoryID string) error {
	for _, c := range f.links[productID] {
		if c == categoryID {
			return &xerrors.ConflictError{Resource: "product", Field: "category_id"}
		}
	}
	f.links[productID] = append(f.links[productID], categoryID)
	return nil
}

type fakeCategories struct{ byID map[string]*catalog.Category }

func (f *fakeCategories) Create(_ context.Context, c *catalog.Category) error {
	for _, existing := range f.byID {
		if existing.StoreID == c.StoreID && existing.Slug == c.Slug {
			return &xerrors.ConflictError{Resource: "category", Field: "slug"}
		}
	}
	c.ID = "c" + c.Slug
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategories) FindByID(_ context.Context, storeID, id string) (*catalog.Category, error) {
	c, ok := f.byID[id]
	if !ok || c.StoreID != storeID {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategories) List(_ context.Context, storeID string) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range f.byID {
		if c.StoreID == storeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func newService() *CatalogService {
	return NewCatalogService(
		&fakeProducts{byID: map[string]*catalog.Product{}, links: map[string][]string{}},
		&fakeCategories{byID: map[string]*catalog.Category{}},
		zap.NewNop(),
	)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Summer Sale":          "summer-sale",
		"  Men's  Shoes!! ":    "men-s-shoes",
		"Café & Bakery":        "café-bakery",
		"2024 / New-Arrivals ": "2024-new-arrivals",
		"***":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCreateProduct_Defaults(t *testing.T) {
	svc := newService()
	p, err := svc.CreateProduct(context.Background(), "s1", &catalog.CreateProductRequest{
		Name: " Mug ", SKU: " mug-001 ", Price: 12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "MUG-001", p.SKU)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, catalog.ProductDraft, p.Status)
}

func TestCreateProduct_SKUUniquePerStore(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	req := &catalog.CreateProductRequest{Name: "Mug", SKU: "MUG"}

	_, err := svc.CreateProduct(ctx, "s1", req)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "s2", req)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "s1", &catalog.CreateProductRequest{Name: "Mug 2", SKU: "mug"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = svc.CreateProduct(ctx, "s1", &catalog.CreateProductRequest{Name: "Bad", SKU: "A--B"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCategories(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "s1", &catalog.CreateCategoryRequest{Name: "Kitchen Ware"})
	require.NoError(t, err)
	assert.Equal(t, "kitchen-ware", cat.Slug)

	_, err = svc.CreateCategory(ctx, "s1", &catalog.CreateCategoryRequest{Name: "kitchen  ware"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = svc.CreateCategory(ctx, "s1", &catalog.CreateCategoryRequest{Name: "!!"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestAssignCategory(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "s1", &catalog.CreateProductRequest{Name: "Mug", SKU: "MUG"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, "s1", &catalog.CreateCategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)
	foreign, err := svc.CreateCategory(ctx, "s2", &catalog.CreateCategoryRequest{Name: "Garden"})
	require.NoError(t, err)

	updated, err := svc.AssignCategory(ctx, "s1", p.ID, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, updated.CategoryIDs)

	_, err = svc.AssignCategory(ctx, "s1", p.ID, cat.ID)
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = svc.AssignCategory(ctx, "s1", p.ID, foreign.ID)
	assert.ErrorIs(t, err, xerrors.ErrInvalidReference, "categories from other stores are invisible")

	_, err = svc.AssignCategory(ctx, "s2", p.ID, foreign.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, "s1", &catalog.CreateProductRequest{Name: "Mug", SKU: "MUG"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, "s1", p.ID))
	_, err = svc.GetProduct(ctx, "s1", p.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	list, err := svc.ListProducts(ctx, "s1", catalog.ProductListFilters{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
