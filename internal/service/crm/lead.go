// internal/service/crm/lead.go
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

// requireContact maps a missing contact to ErrInvalidReference, since the
// caller named it as a foreign key.
func (s *CRMService) requireContact(ctx context.Context, storeID, contactID string) (*crm.Contact, error) {
	c, err := s.contactRepo.FindByID(ctx, storeID, contactID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("contact %s: %w", contactID, xerrors.ErrInvalidReference)
		}
		return nil, err
	}
	return c, nil
}

func validScore(score int) error {
	if score < 0 || score > crm.MaxScore {
		return xerrors.Invalid("score %d must be between 0 and %d", score, crm.MaxScore)
	}
	return nil
}

// CreateLead opens a lead for an existing contact. A contact holds at most
// one live lead.
func (s *CRMService) CreateLead(ctx context.Context, storeID string, req *crm.CreateLeadRequest) (*crm.Lead, error) {
	if err := validScore(req.Score); err != nil {
		return nil, err
	}
	if req.EstimatedValue < 0 {
		return nil, xerrors.Invalid("estimated value cannot be negative")
	}
	source := req.Source
	if source == "" {
		source = crm.LeadSourceOther
	}
	priority := req.Priority
	if priority == "" {
		priority = crm.PriorityMedium
	}
	if !source.Valid() || !priority.Valid() {
		return nil, xerrors.Invalid("unknown source %q or priority %q", source, priority)
	}
	if _, err := s.requireContact(ctx, storeID, req.ContactID); err != nil {
		return nil, err
	}

	lead := &crm.Lead{
		StoreID:        storeID,
		ContactID:      req.ContactID,
		Source:         source,
		Status:         crm.LeadStatusNew,
		Priority:       priority,
		Score:          req.Score,
		AssignedTo:     strings.TrimSpace(req.AssignedTo),
		EstimatedValue: req.EstimatedValue,
		Notes:          req.Notes,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	s.changed(ctx, storeID)

	s.logger.Info("lead created",
		zap.String("store_id", storeID),
		zap.String("lead_id", lead.ID),
		zap.Int("score", lead.Score),
	)
	return lead, nil
}

func (s *CRMService) GetLead(ctx context.Context, storeID, id string) (*crmview.EnrichedLead, error) {
	lead, err := s.leadRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.contactSnapshot(ctx, storeID, lead.ContactID)
	if err != nil {
		return nil, err
	}
	el, ok := crmview.EnrichLead(snap, id)
	if !ok {
		return nil, fmt.Errorf("lead %s: %w", id, xerrors.ErrNotFound)
	}
	return &el, nil
}

func (s *CRMService) ListLeads(ctx context.Context, storeID string, f crm.LeadListFilters) ([]crmview.EnrichedLead, error) {
	snap, err := s.storeSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	all := crmview.AllEnrichedLeads(snap)
	out := make([]crmview.EnrichedLead, 0, len(all))
	for _, l := range all {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.Temperature != "" && l.Temperature != f.Temperature {
			continue
		}
		if f.Untouched != nil && l.Untouched != *f.Untouched {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// UpdateLeadStatus moves a lead along its pipeline. Conversion has its own
// operation because it must create the deal in the same step.
func (s *CRMService) UpdateLeadStatus(ctx context.Context, storeID, id string, status crm.LeadStatus) (*crm.Lead, error) {
	if status == crm.LeadStatusConverted {
		return nil, fmt.Errorf("leads are converted through the convert operation: %w", xerrors.ErrInvalidTransition)
	}
	lead, err := s.leadRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := crm.ValidateLeadTransition(lead.Status, status); err != nil {
		return nil, err
	}
	if err := s.leadRepo.UpdateStatus(ctx, storeID, id, status); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	lead.Status = status
	s.changed(ctx, storeID)

	s.logger.Info("lead status changed",
		zap.String("store_id", storeID),
		zap.String("lead_id", id),
		zap.String("status", string(status)),
	)
	return lead, nil
}

func (s *CRMService) UpdateLeadScore(ctx context.Context, storeID, id string, score int) (*crm.Lead, error) {
	if err := validScore(score); err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := s.leadRepo.UpdateScore(ctx, storeID, id, score); err != nil {
		return nil, fmt.Errorf("failed to update lead score: %w", err)
	}
	lead.Score = score
	s.changed(ctx, storeID)
	return lead, nil
}

// MarkContacted stamps the lead as contacted now and logs the touch on its
// timeline. New leads advance to contacted.
func (s *CRMService) MarkContacted(ctx context.Context, storeID, actorID, id string, req *crm.MarkContactedRequest) (*crm.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	channel := req.Channel
	if channel == "" {
		channel = crm.ActivityCall
	}
	if !channel.Valid() {
		return nil, xerrors.Invalid("unknown channel %q", channel)
	}

	now := s.now()
	activity := &crm.Activity{
		StoreID:     storeID,
		ContactID:   lead.ContactID,
		LeadID:      &lead.ID,
		Type:        channel,
		Title:       "Lead contacted",
		Description: req.Notes,
		CreatedBy:   actorID,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.leadRepo.MarkContactedWithTx(ctx, tx, storeID, id, now); err != nil {
		return nil, fmt.Errorf("failed to mark lead contacted: %w", err)
	}
	if err := s.activityRepo.CreateWithTx(ctx, tx, activity); err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	lead.LastContactedAt = &now
	if lead.Status == crm.LeadStatusNew {
		lead.Status = crm.LeadStatusContacted
	}
	s.activityLogged(storeID, activity)
	s.changed(ctx, storeID)
	return lead, nil
}

// ConvertLead turns a qualified lead into a deal for the same contact. The
// deal, the lead's conversion link and the timeline entry commit together.
func (s *CRMService) ConvertLead(ctx context.Context, storeID, actorID, id string, req *crm.ConvertLeadRequest) (*crmview.EnrichedLead, error) {
	lead, err := s.leadRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := crm.ValidateLeadTransition(lead.Status, crm.LeadStatusConverted); err != nil {
		return nil, err
	}
	if req.Probability < 0 || req.Probability > crm.MaxProbability || req.Value < 0 {
		return nil, xerrors.Invalid("deal value and probability are out of range")
	}
	name := strings.TrimSpace(req.DealName)
	if name == "" {
		return nil, xerrors.Invalid("deal name is required")
	}

	value := req.Value
	if value == 0 {
		value = lead.EstimatedValue
	}
	assignee := strings.TrimSpace(req.AssignedTo)
	if assignee == "" {
		assignee = lead.AssignedTo
	}
	deal := &crm.Deal{
		StoreID:           storeID,
		ContactID:         lead.ContactID,
		LeadID:            &lead.ID,
		Name:              name,
		Value:             value,
		Stage:             crm.DealStageDiscovery,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		AssignedTo:        assignee,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.dealRepo.CreateWithTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	if err := s.leadRepo.MarkConvertedWithTx(ctx, tx, storeID, id, deal.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to convert lead: %w", err)
	}
	activity := &crm.Activity{
		StoreID:   storeID,
		ContactID: lead.ContactID,
		LeadID:    &lead.ID,
		DealID:    &deal.ID,
		Type:      crm.ActivityNote,
		Title:     "Lead converted to deal",
		CreatedBy: actorID,
		Metadata:  map[string]interface{}{"deal_id": deal.ID, "value": value},
	}
	if err := s.activityRepo.CreateWithTx(ctx, tx, activity); err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.events.Publish(storeID, wstypes.ChannelPipeline, wstypes.EventTypeLeadConverted, wstypes.LeadConvertedData{
		LeadID:    lead.ID,
		DealID:    deal.ID,
		ContactID: lead.ContactID,
	})
	s.activityLogged(storeID, activity)
	s.changed(ctx, storeID)

	s.logger.Info("lead converted",
		zap.String("store_id", storeID),
		zap.String("lead_id", id),
		zap.String("deal_id", deal.ID),
	)
	return s.GetLead(ctx, storeID, id)
}
