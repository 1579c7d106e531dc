// internal/service/crm/activity.go
package crm

import (
	"context"
	"fmt"
	"strings"

	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"
	xerrors "storefront-crm/internal/pkg/errors"
)

// LogActivity appends a timeline entry. A referenced lead or deal must belong
// to the same contact.
func (s *CRMService) LogActivity(ctx context.Context, storeID, actorID string, req *crm.LogActivityRequest) (*crm.Activity, error) {
	if !req.Type.Valid() {
		return nil, xerrors.Invalid("unknown activity type %q", req.Type)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, xerrors.Invalid("activity title is required")
	}
	if _, err := s.requireContact(ctx, storeID, req.ContactID); err != nil {
		return nil, err
	}

	activity := &crm.Activity{
		StoreID:     storeID,
		ContactID:   req.ContactID,
		Type:        req.Type,
		Title:       title,
		Description: req.Description,
		CreatedBy:   actorID,
		Metadata:    req.Metadata,
	}
	if req.LeadID != "" {
		lead, err := s.leadRepo.FindByID(ctx, storeID, req.LeadID)
		if err != nil || lead.ContactID != req.ContactID {
			return nil, referenceError("lead", req.LeadID, err)
		}
		activity.LeadID = &lead.ID
	}
	if req.DealID != "" {
		deal, err := s.dealRepo.FindByID(ctx, storeID, req.DealID)
		if err != nil || deal.ContactID != req.ContactID {
			return nil, referenceError("deal", req.DealID, err)
		}
		activity.DealID = &deal.ID
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.activityRepo.CreateWithTx(ctx, tx, activity); err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activityLogged(storeID, activity)
	s.changed(ctx, storeID)
	return activity, nil
}

func referenceError(kind, id string, err error) error {
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s %s does not belong to the contact: %w", kind, id, xerrors.ErrInvalidReference)
}

// ContactTimeline returns every activity of a contact, newest first.
func (s *CRMService) ContactTimeline(ctx context.Context, storeID, contactID string) ([]crm.Activity, error) {
	snap, err := s.contactSnapshot(ctx, storeID, contactID)
	if err != nil {
		return nil, err
	}
	return snap.ActivitiesByContactID(contactID), nil
}

func (s *CRMService) LeadTimeline(ctx context.Context, storeID, leadID string) ([]crm.Activity, error) {
	lead, err := s.leadRepo.FindByID(ctx, storeID, leadID)
	if err != nil {
		return nil, err
	}
	snap, err := s.contactSnapshot(ctx, storeID, lead.ContactID)
	if err != nil {
		return nil, err
	}
	return snap.ActivitiesByLeadID(leadID), nil
}

func (s *CRMService) DealTimeline(ctx context.Context, storeID, dealID string) ([]crm.Activity, error) {
	deal, err := s.dealRepo.FindByID(ctx, storeID, dealID)
	if err != nil {
		return nil, err
	}
	snap, err := s.contactSnapshot(ctx, storeID, deal.ContactID)
	if err != nil {
		return nil, err
	}
	return snap.ActivitiesByDealID(dealID), nil
}

// Timeline resolves the most specific id in req: deal, then lead, then
// contact. It backs the websocket timeline:fetch request.
func (s *CRMService) Timeline(ctx context.Context, storeID string, req wstypes.TimelineRequest) ([]crm.Activity, error) {
	switch {
	case req.DealID != "":
		return s.DealTimeline(ctx, storeID, req.DealID)
	case req.LeadID != "":
		return s.LeadTimeline(ctx, storeID, req.LeadID)
	case req.ContactID != "":
		return s.ContactTimeline(ctx, storeID, req.ContactID)
	}
	return nil, xerrors.Invalid("a contact, lead or deal id is required")
}
