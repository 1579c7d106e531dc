// internal/service/commerce/commerce_service.go
package commerce

import (
	"context"
	"fmt"
	"math"
	"strings"

	"storefront-crm/internal/domain/catalog"
	"storefront-crm/internal/domain/commerce"
	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type OrderStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *commerce.Order) error
	FindByID(ctx context.Context, storeID, id string) (*commerce.Order, error)
	FindForUpdateWithTx(ctx context.Context, tx pgx.Tx, storeID, id string) (*commerce.Order, error)
	List(ctx context.Context, storeID string, f commerce.OrderListFilters) ([]commerce.Order, error)
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, storeID, id string, status commerce.OrderStatus) error
}

type PaymentStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *commerce.Payment) error
	SumSucceededWithTx(ctx context.Context, tx pgx.Tx, orderID string) (float64, error)
	List(ctx context.Context, storeID, orderID string) ([]commerce.Payment, error)
}

type CounterStore interface {
	NextWithTx(ctx context.Context, tx pgx.Tx, storeID, name string) (int64, error)
	Backfill(ctx context.Context, storeID string) (*commerce.BackfillResult, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, storeID, id string) (*catalog.Product, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, storeID, id string) (*tenant.User, error)
}

type StoreLister interface {
	ListAllIDs(ctx context.Context) ([]string, error)
}

type CommerceService struct {
	db          TxBeginner
	orderRepo   OrderStore
	paymentRepo PaymentStore
	counterRepo CounterStore
	products    ProductFinder
	users       UserFinder
	stores      StoreLister
	logger      *zap.Logger
}

func NewCommerceService(
	db TxBeginner,
	orderRepo OrderStore,
	paymentRepo PaymentStore,
	counterRepo CounterStore,
	products ProductFinder,
	users UserFinder,
	stores StoreLister,
	logger *zap.Logger,
) *CommerceService {
	return &CommerceService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		counterRepo: counterRepo,
		products:    products,
		users:       users,
		stores:      stores,
		logger:      logger,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateOrder prices the items from the store's active products and stores
// the order under the store's next order number.
func (s *CommerceService) CreateOrder(ctx context.Context, storeID string, req *commerce.CreateOrderRequest) (*commerce.Order, error) {
	if len(req.Items) == 0 {
		return nil, xerrors.Invalid("an order needs at least one item")
	}

	order := &commerce.Order{
		StoreID:  storeID,
		Status:   commerce.OrderPending,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
	}

	if req.UserID != "" {
		if _, err := s.users.FindByID(ctx, storeID, req.UserID); err != nil {
			if xerrors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("customer %s: %w", req.UserID, xerrors.ErrInvalidReference)
			}
			return nil, err
		}
		userID := req.UserID
		order.UserID = &userID
	}

	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, xerrors.Invalid("quantity for %s must be positive", it.ProductID)
		}
		p, err := s.products.FindByID(ctx, storeID, it.ProductID)
		if err != nil {
			if xerrors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", it.ProductID, xerrors.ErrInvalidReference)
			}
			return nil, err
		}
		if p.Status != catalog.ProductActive {
			return nil, xerrors.Invalid("product %s is not for sale", p.SKU)
		}
		if order.Currency == "" {
			order.Currency = p.Currency
		}
		if p.Currency != order.Currency {
			return nil, xerrors.Invalid("product %s is priced in %s, order is in %s", p.SKU, p.Currency, order.Currency)
		}
		order.Items = append(order.Items, commerce.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
	}
	order.Total = roundCents(commerce.ComputeTotal(order.Items))

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.counterRepo.NextWithTx(ctx, tx, storeID, commerce.CounterOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}
	order.Number = number
	if err := s.orderRepo.CreateWithTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("order created",
		zap.String("store_id", storeID),
		zap.String("order_id", order.ID),
		zap.Int64("number", order.Number),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

func (s *CommerceService) GetOrder(ctx context.Context, storeID, id string) (*commerce.Order, error) {
	return s.orderRepo.FindByID(ctx, storeID, id)
}

func (s *CommerceService) ListOrders(ctx context.Context, storeID string, f commerce.OrderListFilters) ([]commerce.Order, error) {
	orders, err := s.orderRepo.List(ctx, storeID, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []commerce.Order{}
	}
	return orders, nil
}

// RecordPayment books a successful payment against a pending order of the
// same store. The order flips to paid once payments cover its total.
func (s *CommerceService) RecordPayment(ctx context.Context, storeID string, req *commerce.RecordPaymentRequest) (*commerce.Payment, error) {
	if req.Amount <= 0 {
		return nil, xerrors.Invalid("payment amount must be positive")
	}
	amount := roundCents(req.Amount)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := s.orderRepo.FindForUpdateWithTx(ctx, tx, storeID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != commerce.OrderPending {
		return nil, fmt.Errorf("order %d is %s: %w", order.Number, order.Status, xerrors.ErrInvalidTransition)
	}

	paid, err := s.paymentRepo.SumSucceededWithTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	remaining := roundCents(order.Total - paid)
	if amount > remaining {
		return nil, xerrors.Invalid("payment of %.2f exceeds the %.2f still due", amount, remaining)
	}

	number, err := s.counterRepo.NextWithTx(ctx, tx, storeID, commerce.CounterPayments)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate payment number: %w", err)
	}
	payment := &commerce.Payment{
		StoreID:   storeID,
		OrderID:   order.ID,
		Number:    number,
		Amount:    amount,
		Method:    req.Method,
		Status:    commerce.PaymentSucceeded,
		Reference: strings.TrimSpace(req.Reference),
	}
	if err := s.paymentRepo.CreateWithTx(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if roundCents(paid+amount) >= order.Total {
		if err := s.orderRepo.UpdateStatusWithTx(ctx, tx, storeID, order.ID, commerce.OrderPaid); err != nil {
			return nil, fmt.Errorf("failed to mark order paid: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("store_id", storeID),
		zap.String("order_id", order.ID),
		zap.Int64("number", payment.Number),
		zap.Float64("amount", amount),
	)
	return payment, nil
}

func (s *CommerceService) ListPayments(ctx context.Context, storeID, orderID string) ([]commerce.Payment, error) {
	payments, err := s.paymentRepo.List(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []commerce.Payment{}
	}
	return payments, nil
}

// BackfillCounters resyncs the numbering counters of one store, or of every
// live store when storeID is empty.
func (s *CommerceService) BackfillCounters(ctx context.Context, storeID string) ([]commerce.BackfillResult, error) {
	ids := []string{storeID}
	if storeID == "" {
		var err error
		if ids, err = s.stores.ListAllIDs(ctx); err != nil {
			return nil, fmt.Errorf("failed to list stores: %w", err)
		}
	}

	results := make([]commerce.BackfillResult, 0, len(ids))
	for _, id := range ids {
		res, err := s.counterRepo.Backfill(ctx, id)
		if err != nil {
			return results, fmt.Errorf("failed to backfill store %s: %w", id, err)
		}
		s.logger.Info("counters backfilled",
			zap.String("store_id", id),
			zap.Int64("orders", res.Orders),
			zap.Int64("payments", res.Payments),
		)
		results = append(results, *res)
	}
	return results, nil
}
