// internal/service/crm/analytics.go
package crm

import (
	"context"

	"storefront-crm/internal/crmview"

	"go.uber.org/zap"
)

// Dashboard serves the store's aggregates from cache, recomputing them from a
// fresh snapshot on a miss. Cache failures degrade to recomputation.
func (s *CRMService) Dashboard(ctx context.Context, storeID string) (*crmview.Dashboard, error) {
	cached, gen, ok, cacheErr := s.stats.Get(ctx, storeID)
	if cacheErr != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("store_id", storeID), zap.Error(cacheErr))
	}
	if ok {
		return cached, nil
	}

	snap, err := s.storeSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	dash := crmview.ComputeDashboard(snap)
	// Without a generation there is no safe key to fill.
	if cacheErr != nil {
		return &dash, nil
	}
	if err := s.stats.Set(ctx, storeID, gen, &dash); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("store_id", storeID), zap.Error(err))
	}
	return &dash, nil
}

func (s *CRMService) LeadStats(ctx context.Context, storeID string) (*crmview.LeadStats, error) {
	d, err := s.Dashboard(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &d.Leads, nil
}

func (s *CRMService) DealStats(ctx context.Context, storeID string) (*crmview.DealStats, error) {
	d, err := s.Dashboard(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &d.Deals, nil
}

func (s *CRMService) ContactStats(ctx context.Context, storeID string) (*crmview.ContactStats, error) {
	d, err := s.Dashboard(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &d.Contacts, nil
}

func (s *CRMService) Funnel(ctx context.Context, storeID string) (*crmview.ConversionFunnel, error) {
	d, err := s.Dashboard(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &d.Funnel, nil
}
