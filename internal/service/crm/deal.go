// internal/service/crm/deal.go
package crm

import (
	"context"
	"fmt"
	"strings"

	"storefront-crm/internal/crmview"
	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"
	xerrors "storefront-crm/internal/pkg/errors"

	"go.uber.org/zap"
)

// CreateDeal opens a deal directly, without a lead. Deals always start in an
// open stage.
func (s *CRMService) CreateDeal(ctx context.Context, storeID string, req *crm.CreateDealRequest) (*crm.Deal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.Invalid("deal name is required")
	}
	if req.Value < 0 || req.Probability < 0 || req.Probability > crm.MaxProbability {
		return nil, xerrors.Invalid("deal value and probability are out of range")
	}
	stage := req.Stage
	if stage == "" {
		stage = crm.DealStageDiscovery
	}
	if !stage.Valid() {
		return nil, xerrors.Invalid("unknown deal stage %q", stage)
	}
	if stage.IsTerminal() {
		return nil, xerrors.Invalid("a deal cannot be created as %s", stage)
	}
	if _, err := s.requireContact(ctx, storeID, req.ContactID); err != nil {
		return nil, err
	}

	deal := &crm.Deal{
		StoreID:           storeID,
		ContactID:         req.ContactID,
		Name:              name,
		Value:             req.Value,
		Stage:             stage,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		AssignedTo:        strings.TrimSpace(req.AssignedTo),
		Notes:             req.Notes,
		Tags:              cleanTags(req.Tags),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.dealRepo.CreateWithTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.changed(ctx, storeID)

	s.logger.Info("deal created",
		zap.String("store_id", storeID),
		zap.String("deal_id", deal.ID),
		zap.Float64("value", deal.Value),
	)
	return deal, nil
}

func (s *CRMService) GetDeal(ctx context.Context, storeID, id string) (*crmview.EnrichedDeal, error) {
	deal, err := s.dealRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.contactSnapshot(ctx, storeID, deal.ContactID)
	if err != nil {
		return nil, err
	}
	ed, ok := crmview.EnrichDeal(snap, id)
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, xerrors.ErrNotFound)
	}
	return &ed, nil
}

func (s *CRMService) ListDeals(ctx context.Context, storeID string, f crm.DealListFilters) ([]crmview.EnrichedDeal, error) {
	snap, err := s.storeSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	all := crmview.AllEnrichedDeals(snap)
	out := make([]crmview.EnrichedDeal, 0, len(all))
	for _, d := range all {
		if f.Stage != "" && d.Stage != f.Stage {
			continue
		}
		if f.ActiveOnly && !d.IsActive() {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// MoveDealStage advances a deal or closes it. Won pins probability to 100,
// lost pins it to 0 and requires a reason; both stamp ClosedAt.
func (s *CRMService) MoveDealStage(ctx context.Context, storeID, actorID, id string, req *crm.MoveDealStageRequest) (*crm.Deal, error) {
	deal, err := s.dealRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := crm.ValidateDealTransition(deal.Stage, req.Stage); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.LostReason)
	if req.Stage == crm.DealStageLost && reason == "" {
		return nil, xerrors.Invalid("a lost reason is required")
	}

	from := deal.Stage
	deal.Stage = req.Stage
	switch req.Stage {
	case crm.DealStageWon:
		now := s.now()
		deal.Probability = crm.MaxProbability
		deal.ClosedAt = &now
	case crm.DealStageLost:
		now := s.now()
		deal.Probability = 0
		deal.ClosedAt = &now
		deal.LostReason = reason
	}

	activity := &crm.Activity{
		StoreID:   storeID,
		ContactID: deal.ContactID,
		LeadID:    deal.LeadID,
		DealID:    &deal.ID,
		Type:      crm.ActivityNote,
		Title:     fmt.Sprintf("Deal moved from %s to %s", from, req.Stage),
		CreatedBy: actorID,
		Metadata:  map[string]interface{}{"from": string(from), "to": string(req.Stage)},
	}
	if req.Stage == crm.DealStageLost {
		activity.Description = reason
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.dealRepo.UpdateStageWithTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to move deal: %w", err)
	}
	if err := s.activityRepo.CreateWithTx(ctx, tx, activity); err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.events.Publish(storeID, wstypes.ChannelPipeline, wstypes.EventTypeDealStageChanged, wstypes.DealStageChangedData{
		DealID: deal.ID,
		From:   string(from),
		To:     string(deal.Stage),
	})
	s.activityLogged(storeID, activity)
	s.changed(ctx, storeID)

	s.logger.Info("deal stage changed",
		zap.String("store_id", storeID),
		zap.String("deal_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(deal.Stage)),
	)
	return deal, nil
}
