// internal/service/tenant/store.go
package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"

	"go.uber.org/zap"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,61}[a-z0-9])$`)

func normalizeSubdomain(raw string) (string, error) {
	sub := strings.ToLower(strings.TrimSpace(raw))
	if !subdomainPattern.MatchString(sub) || strings.Contains(sub, "--") {
		return "", xerrors.Invalid("subdomain %q must be 3-63 lowercase letters, digits or single hyphens", raw)
	}
	return sub, nil
}

func normalizeDomain(raw string) *string {
	d := strings.ToLower(strings.TrimSpace(raw))
	if d == "" {
		return nil
	}
	return &d
}

// CreateStore opens a store for a merchant with a live subscription. The
// merchant becomes its accepted owner in the same transaction.
func (s *TenantService) CreateStore(ctx context.Context, merchantID string, req *tenant.CreateStoreRequest) (*tenant.Store, error) {
	sub, err := s.subRepo.FindByMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.IsLive(s.now()) {
		return nil, fmt.Errorf("subscription is not active: %w", xerrors.ErrForbidden)
	}

	subdomain, err := normalizeSubdomain(req.Subdomain)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.Invalid("store name is required")
	}

	store := &tenant.Store{
		MerchantID:   merchantID,
		Name:         name,
		Subdomain:    subdomain,
		CustomDomain: normalizeDomain(req.CustomDomain),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.storeRepo.CreateWithTx(ctx, tx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	acceptedAt := s.now()
	owner := &tenant.TeamMember{
		StoreID:    store.ID,
		MerchantID: merchantID,
		Role:       tenant.RoleOwner,
		Status:     tenant.MemberAccepted,
		AcceptedAt: &acceptedAt,
	}
	if err := s.memberRepo.CreateWithTx(ctx, tx, owner); err != nil {
		return nil, fmt.Errorf("failed to add store owner: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("store created",
		zap.String("store_id", store.ID),
		zap.String("merchant_id", merchantID),
		zap.String("subdomain", subdomain),
	)
	return store, nil
}

func (s *TenantService) ListStores(ctx context.Context, merchantID string) ([]tenant.Store, error) {
	stores, err := s.storeRepo.ListForMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []tenant.Store{}
	}
	return stores, nil
}

func (s *TenantService) GetStore(ctx context.Context, storeID string) (*tenant.Store, error) {
	return s.storeRepo.FindByID(ctx, storeID)
}

// UpdateStore applies the non-nil fields. Owners and admins only.
func (s *TenantService) UpdateStore(ctx context.Context, storeID, actorID string, req *tenant.UpdateStoreRequest) (*tenant.Store, error) {
	if _, err := s.requireRole(ctx, storeID, actorID, tenant.Role.CanManageMembers); err != nil {
		return nil, err
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, xerrors.Invalid("store name cannot be empty")
		}
		store.Name = name
	}
	if req.Subdomain != nil {
		sub, err := normalizeSubdomain(*req.Subdomain)
		if err != nil {
			return nil, err
		}
		store.Subdomain = sub
	}
	if req.CustomDomain != nil {
		store.CustomDomain = normalizeDomain(*req.CustomDomain)
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

// DeleteStore soft-deletes the store. Only its owner may do this.
func (s *TenantService) DeleteStore(ctx context.Context, storeID, actorID string) error {
	if _, err := s.requireRole(ctx, storeID, actorID, func(r tenant.Role) bool { return r == tenant.RoleOwner }); err != nil {
		return err
	}
	if err := s.storeRepo.SoftDelete(ctx, storeID); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	if err := s.members.InvalidateStore(ctx, storeID); err != nil {
		s.logger.Warn("failed to drop cached memberships", zap.String("store_id", storeID), zap.Error(err))
	}
	if s.sockets != nil {
		s.sockets.DisconnectStore(storeID, "store deleted")
	}

	s.logger.Info("store deleted", zap.String("store_id", storeID), zap.String("merchant_id", actorID))
	return nil
}
