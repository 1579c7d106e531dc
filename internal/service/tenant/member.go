// internal/service/tenant/member.go
package tenant

import (
	"context"
	"fmt"

	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newInviteToken() string {
	return uuid.NewString()
}

// Membership returns the merchant's accepted membership in a live store.
// Lookups go through the Redis cache; cache failures fall back to Postgres.
func (s *TenantService) Membership(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, error) {
	if m, hit, err := s.members.Get(ctx, storeID, merchantID); err != nil {
		s.logger.Warn("membership cache read failed", zap.String("store_id", storeID), zap.Error(err))
	} else if hit {
		return m, nil
	}

	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("store %s: %w", storeID, xerrors.ErrForbidden)
		}
		return nil, err
	}
	m, err := s.memberRepo.FindByStoreAndMerchant(ctx, storeID, merchantID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("not a member of store %s: %w", storeID, xerrors.ErrForbidden)
		}
		return nil, err
	}
	if m.Status != tenant.MemberAccepted {
		return nil, fmt.Errorf("invite not accepted: %w", xerrors.ErrForbidden)
	}

	if err := s.members.Set(ctx, m); err != nil {
		s.logger.Warn("membership cache write failed", zap.String("store_id", storeID), zap.Error(err))
	}
	return m, nil
}

func (s *TenantService) requireRole(ctx context.Context, storeID, actorID string, allowed func(tenant.Role) bool) (*tenant.TeamMember, error) {
	m, err := s.Membership(ctx, storeID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed(m.Role) {
		return nil, fmt.Errorf("role %s may not do this: %w", m.Role, xerrors.ErrForbidden)
	}
	return m, nil
}

// InviteMember creates a pending membership with a one-time invite token.
func (s *TenantService) InviteMember(ctx context.Context, storeID, actorID string, req *tenant.InviteMemberRequest) (*tenant.TeamMember, error) {
	if req.Role == tenant.RoleOwner || !req.Role.Valid() {
		return nil, xerrors.Invalid("invites can only grant admin or member")
	}
	if _, err := s.requireRole(ctx, storeID, actorID, tenant.Role.CanManageMembers); err != nil {
		return nil, err
	}
	invitee, err := s.merchantRepo.FindByID(ctx, req.MerchantID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("invitee %s: %w", req.MerchantID, xerrors.ErrInvalidReference)
		}
		return nil, err
	}

	token := s.newInviteCode()
	member := &tenant.TeamMember{
		StoreID:     storeID,
		MerchantID:  req.MerchantID,
		Role:        req.Role,
		Status:      tenant.MemberPending,
		InviteToken: &token,
	}
	if err := s.memberRepo.CreateWithTx(ctx, nil, member); err != nil {
		return nil, fmt.Errorf("failed to invite member: %w", err)
	}

	s.logger.Info("member invited",
		zap.String("store_id", storeID),
		zap.String("invitee_id", req.MerchantID),
		zap.String("role", string(req.Role)),
	)
	s.mailInvite(ctx, invitee, member)
	return member, nil
}

// mailInvite is best effort: the invite stays valid when mail fails.
func (s *TenantService) mailInvite(ctx context.Context, invitee *tenant.Merchant, member *tenant.TeamMember) {
	if s.invites == nil {
		return
	}
	storeName := member.StoreID
	if store, err := s.storeRepo.FindByID(ctx, member.StoreID); err == nil {
		storeName = store.Name
	}
	if err := s.invites.SendInvite(invitee.Email, storeName, *member.InviteToken, member.Role); err != nil {
		s.logger.Warn("failed to send invite email",
			zap.String("store_id", member.StoreID),
			zap.String("invitee_id", invitee.ID),
			zap.Error(err),
		)
	}
}

// AcceptInvite redeems a token. The token is bound to the invited merchant.
func (s *TenantService) AcceptInvite(ctx context.Context, merchantID, token string) (*tenant.TeamMember, error) {
	member, err := s.memberRepo.FindByInviteToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if member.MerchantID != merchantID {
		return nil, fmt.Errorf("invite belongs to another merchant: %w", xerrors.ErrForbidden)
	}

	now := s.now()
	if err := s.memberRepo.Accept(ctx, member.ID, now); err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	member.Status = tenant.MemberAccepted
	member.AcceptedAt = &now
	member.InviteToken = nil

	s.logger.Info("invite accepted", zap.String("store_id", member.StoreID), zap.String("merchant_id", merchantID))
	return member, nil
}

// RemoveMember deletes a membership. The owner cannot be removed.
func (s *TenantService) RemoveMember(ctx context.Context, storeID, actorID, merchantID string) error {
	if _, err := s.requireRole(ctx, storeID, actorID, tenant.Role.CanManageMembers); err != nil {
		return err
	}
	target, err := s.memberRepo.FindByStoreAndMerchant(ctx, storeID, merchantID)
	if err != nil {
		return err
	}
	if target.Role == tenant.RoleOwner {
		return fmt.Errorf("the store owner cannot be removed: %w", xerrors.ErrForbidden)
	}
	if err := s.memberRepo.Delete(ctx, storeID, target.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := s.members.Invalidate(ctx, storeID, merchantID); err != nil {
		s.logger.Warn("failed to drop cached membership", zap.String("store_id", storeID), zap.Error(err))
	}
	if s.sockets != nil {
		s.sockets.DisconnectMerchant(storeID, merchantID, "removed from store")
	}

	s.logger.Info("member removed", zap.String("store_id", storeID), zap.String("merchant_id", merchantID))
	return nil
}

func (s *TenantService) ListMembers(ctx context.Context, storeID string) ([]tenant.TeamMember, error) {
	members, err := s.memberRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	// Tokens are only handed out once, at invite time.
	for i := range members {
		members[i].InviteToken = nil
	}
	if members == nil {
		members = []tenant.TeamMember{}
	}
	return members, nil
}
