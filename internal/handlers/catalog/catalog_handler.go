// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"net/http"

	"storefront-crm/internal/domain/catalog"
	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/response"
	service "storefront-crm/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create product", err)
		return
	}
	response.Success(c, http.StatusCreated, "product created successfully", product)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filters catalog.ProductListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), middleware.MustGetStoreID(c), filters)
	if err != nil {
		response.FromError(c, "failed to list products", err)
		return
	}
	response.Success(c, http.StatusOK, "products retrieved", products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to load product", err)
		return
	}
	response.Success(c, http.StatusOK, "product retrieved", product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id")); err != nil {
		response.FromError(c, "failed to delete product", err)
		return
	}
	response.Success(c, http.StatusOK, "product deleted", nil)
}

func (h *CatalogHandler) AssignCategory(c *gin.Context) {
	var req catalog.AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	product, err := h.catalogService.AssignCategory(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"), req.CategoryID)
	if err != nil {
		response.FromError(c, "failed to assign category", err)
		return
	}
	response.Success(c, http.StatusOK, "category assigned", product)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalog.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create category", err)
		return
	}
	response.Success(c, http.StatusCreated, "category created successfully", category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context(), middleware.MustGetStoreID(c))
	if err != nil {
		response.FromError(c, "failed to list categories", err)
		return
	}
	response.Success(c, http.StatusOK, "categories retrieved", categories)
}
