// internal/service/tenant/customer.go
package tenant

import (
	"context"
	"fmt"
	"strings"

	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"

	"go.uber.org/zap"
)

// CreateCustomer registers a shopper in one store. The same email may exist
// in other stores.
func (s *TenantService) CreateCustomer(ctx context.Context, storeID string, req *tenant.CreateUserRequest) (*tenant.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, xerrors.Invalid("email is required")
	}
	user := &tenant.User{
		StoreID: storeID,
		Email:   email,
		Name:    strings.TrimSpace(req.Name),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("store_id", storeID), zap.String("user_id", user.ID))
	return user, nil
}

func (s *TenantService) GetCustomer(ctx context.Context, storeID, userID string) (*tenant.User, error) {
	return s.userRepo.FindByID(ctx, storeID, userID)
}

func (s *TenantService) ListCustomers(ctx context.Context, storeID string) ([]tenant.User, error) {
	users, err := s.userRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []tenant.User{}
	}
	return users, nil
}
