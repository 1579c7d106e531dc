// internal/service/crm/crm_service.go
package crm

import (
	"context"
	"fmt"
	"time"

	"storefront-crm/internal/crmview"
	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"

	"go.uber.org/zap"
)

// CRMService owns the contact/lead/deal/activity write paths and serves the
// enriched read models built by crmview.
type CRMService struct {
	db           TxBeginner
	contactRepo  ContactStore
	leadRepo     LeadStore
	dealRepo     DealStore
	activityRepo ActivityStore
	stats        StatsCache
	events       EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewCRMService(
	db TxBeginner,
	contactRepo ContactStore,
	leadRepo LeadStore,
	dealRepo DealStore,
	activityRepo ActivityStore,
	stats StatsCache,
	events EventPublisher,
	logger *zap.Logger,
) *CRMService {
	if events == nil {
		events = noopPublisher{}
	}
	return &CRMService{
		db:           db,
		contactRepo:  contactRepo,
		leadRepo:     leadRepo,
		dealRepo:     dealRepo,
		activityRepo: activityRepo,
		stats:        stats,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// storeSnapshot loads every live CRM record of a store.
func (s *CRMService) storeSnapshot(ctx context.Context, storeID string) (*crmview.Snapshot, error) {
	contacts, err := s.contactRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	leads, err := s.leadRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	deals, err := s.dealRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}
	activities, err := s.activityRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	return crmview.NewSnapshot(contacts, leads, deals, activities), nil
}

// contactSnapshot loads one contact and everything hanging off it. Every
// single-record read resolves inside this scope because leads, deals and
// activities all belong to exactly one contact.
func (s *CRMService) contactSnapshot(ctx context.Context, storeID, contactID string) (*crmview.Snapshot, error) {
	contact, err := s.contactRepo.FindByID(ctx, storeID, contactID)
	if err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.ListByContact(ctx, storeID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	deals, err := s.dealRepo.ListByContact(ctx, storeID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}
	activities, err := s.activityRepo.ListByContact(ctx, storeID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	return crmview.NewSnapshot([]crm.Contact{*contact}, leads, deals, activities), nil
}

// changed drops the cached dashboard and tells live clients to refetch it.
func (s *CRMService) changed(ctx context.Context, storeID string) {
	if err := s.stats.Invalidate(ctx, storeID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("store_id", storeID), zap.Error(err))
	}
	s.events.Publish(storeID, wstypes.ChannelPipeline, wstypes.EventTypeStatsInvalidated, map[string]string{
		"store_id": storeID,
	})
}

func (s *CRMService) activityLogged(storeID string, a *crm.Activity) {
	s.events.Publish(storeID, wstypes.ChannelActivities, wstypes.EventTypeActivityCreated, a)
}
