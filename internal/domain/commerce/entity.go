// internal/domain/commerce/entity.go
package commerce

import (
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCanceled  OrderStatus = "canceled"
	OrderRefunded  OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodCash         PaymentMethod = "cash"
)

// Counter names in store_counters.
const (
	CounterOrders   = "orders"
	CounterPayments = "payments"
)

// Order numbers run 1, 2, 3... independently in each store.
type Order struct {
	ID       string      `json:"id" db:"id"`
	StoreID  string      `json:"store_id" db:"store_id"`
	UserID   *string     `json:"user_id,omitempty" db:"user_id"`
	Number   int64       `json:"number" db:"number"`
	Status   OrderStatus `json:"status" db:"status"`
	Total    float64     `json:"total" db:"total"`
	Currency string      `json:"currency" db:"currency"`
	Items    []OrderItem `json:"items" db:"items"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderItem is stored as JSONB on the order row.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Payment numbers are per store like order numbers.
type Payment struct {
	ID        string        `json:"id" db:"id"`
	StoreID   string        `json:"store_id" db:"store_id"`
	OrderID   string        `json:"order_id" db:"order_id"`
	Number    int64         `json:"number" db:"number"`
	Amount    float64       `json:"amount" db:"amount"`
	Method    PaymentMethod `json:"method" db:"method"`
	Status    PaymentStatus `json:"status" db:"status"`
	Reference string        `json:"reference" db:"reference"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Subtotal of the line.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// ComputeTotal sums every line of the order.
func ComputeTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
