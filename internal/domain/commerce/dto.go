// internal/domain/commerce/dto.go
package commerce

type CreateOrderRequest struct {
	UserID   string             `json:"user_id"`
	Currency string             `json:"currency" binding:"omitempty,len=3"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type RecordPaymentRequest struct {
	OrderID   string        `json:"order_id" binding:"required"`
	Amount    float64       `json:"amount" binding:"required,gt=0"`
	Method    PaymentMethod `json:"method" binding:"required,oneof=card bank_transfer mobile_money cash"`
	Reference string        `json:"reference" binding:"max=128"`
}

type OrderListFilters struct {
	Status OrderStatus `form:"status"`
	Limit  int         `form:"limit" binding:"omitempty,min=1,max=200"`
}

type BackfillResult struct {
	StoreID  string `json:"store_id"`
	Orders   int64  `json:"orders"`
	Payments int64  `json:"payments"`
}
