// internal/domain/catalog/dto.go
package catalog

type CreateProductRequest struct {
	Name        string        `json:"name" binding:"required,max=255" yaml:"name"`
	SKU         string        `json:"sku" binding:"required,max=64" yaml:"sku"`
	Description string        `json:"description" yaml:"description"`
	Price       float64       `json:"price" binding:"min=0" yaml:"price"`
	Currency    string        `json:"currency" binding:"omitempty,len=3" yaml:"currency"`
	Status      ProductStatus `json:"status" binding:"omitempty,oneof=draft active archived" yaml:"status"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=120" yaml:"name"`
}

type AssignCategoryRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
}

type ProductListFilters struct {
	Status     ProductStatus `form:"status"`
	CategoryID string        `form:"category_id"`
	Search     string        `form:"search"`
}
