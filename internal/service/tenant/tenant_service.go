// internal/service/tenant/tenant_service.go
package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"

	"go.uber.org/zap"
)

type TenantService struct {
	db            TxBeginner
	merchantRepo  MerchantStore
	subRepo       SubscriptionStore
	storeRepo     StoreStore
	memberRepo    MemberStore
	userRepo      UserStore
	members       MembershipCache
	trialPeriod   time.Duration
	logger        *zap.Logger
	invites       InviteMailer
	sockets       Disconnector
	now           func() time.Time
	newInviteCode func() string
}

func NewTenantService(
	db TxBeginner,
	merchantRepo MerchantStore,
	subRepo SubscriptionStore,
	storeRepo StoreStore,
	memberRepo MemberStore,
	userRepo UserStore,
	members MembershipCache,
	trialPeriod time.Duration,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		db:            db,
		merchantRepo:  merchantRepo,
		subRepo:       subRepo,
		storeRepo:     storeRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		members:       members,
		trialPeriod:   trialPeriod,
		logger:        logger,
		now:           time.Now,
		newInviteCode: newInviteToken,
	}
}

// WithInviteMailer makes InviteMember email the invite token to the invitee.
func (s *TenantService) WithInviteMailer(m InviteMailer) *TenantService {
	s.invites = m
	return s
}

// WithDisconnector closes a merchant's live feeds when they lose access to a
// store, and every feed of a deleted store.
func (s *TenantService) WithDisconnector(d Disconnector) *TenantService {
	s.sockets = d
	return s
}

// ProvisionMerchant creates a merchant together with a trialing free-plan
// subscription.
func (s *TenantService) ProvisionMerchant(ctx context.Context, req *tenant.CreateMerchantRequest) (*tenant.ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, xerrors.Invalid("email and name are required")
	}

	merchant := &tenant.Merchant{
		Email: email,
		Name:  strings.TrimSpace(req.Name),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		merchant.Phone = &phone
	}

	now := s.now()
	trialEnd := now.Add(s.trialPeriod)
	sub := &tenant.Subscription{
		Plan:               tenant.PlanFree,
		Status:             tenant.SubscriptionTrialing,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   trialEnd,
		TrialEndsAt:        &trialEnd,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.merchantRepo.CreateWithTx(ctx, tx, merchant); err != nil {
		return nil, fmt.Errorf("failed to create merchant: %w", err)
	}
	sub.MerchantID = merchant.ID
	if err := s.subRepo.CreateWithTx(ctx, tx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("merchant provisioned",
		zap.String("merchant_id", merchant.ID),
		zap.Time("trial_ends_at", trialEnd),
	)
	return &tenant.ProvisionResult{Merchant: merchant, Subscription: sub}, nil
}

func (s *TenantService) GetMerchant(ctx context.Context, merchantID string) (*tenant.Merchant, error) {
	return s.merchantRepo.FindByID(ctx, merchantID)
}

func (s *TenantService) GetMerchantByEmail(ctx context.Context, email string) (*tenant.Merchant, error) {
	return s.merchantRepo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *TenantService) GetSubscription(ctx context.Context, merchantID string) (*tenant.Subscription, error) {
	return s.subRepo.FindByMerchant(ctx, merchantID)
}

// ChangePlan switches plan and starts a fresh monthly period. Trials end
// when a paid plan is picked.
func (s *TenantService) ChangePlan(ctx context.Context, merchantID string, plan tenant.Plan) (*tenant.Subscription, error) {
	if !plan.Valid() {
		return nil, xerrors.Invalid("unknown plan %q", plan)
	}
	sub, err := s.subRepo.FindByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if sub.Status == tenant.SubscriptionCanceled {
		return nil, fmt.Errorf("subscription is canceled: %w", xerrors.ErrInvalidTransition)
	}

	now := s.now()
	sub.Plan = plan
	sub.CancelAtPeriodEnd = false
	if plan != tenant.PlanFree || sub.Status != tenant.SubscriptionTrialing {
		sub.Status = tenant.SubscriptionActive
		sub.TrialEndsAt = nil
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = now.AddDate(0, 1, 0)
	}
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to change plan: %w", err)
	}

	s.logger.Info("subscription plan changed",
		zap.String("merchant_id", merchantID),
		zap.String("plan", string(plan)),
	)
	return sub, nil
}

// CancelSubscription either schedules cancellation for the end of the
// current period or cancels immediately.
func (s *TenantService) CancelSubscription(ctx context.Context, merchantID string, atPeriodEnd bool) (*tenant.Subscription, error) {
	sub, err := s.subRepo.FindByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if sub.Status == tenant.SubscriptionCanceled {
		return nil, fmt.Errorf("subscription already canceled: %w", xerrors.ErrInvalidTransition)
	}

	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
	} else {
		now := s.now()
		sub.Status = tenant.SubscriptionCanceled
		sub.CanceledAt = &now
		sub.CurrentPeriodEnd = now
		sub.CancelAtPeriodEnd = false
	}
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.Info("subscription canceled",
		zap.String("merchant_id", merchantID),
		zap.Bool("at_period_end", atPeriodEnd),
	)
	return sub, nil
}
