// internal/service/crm/contact.go
package crm

import (
	"context"
	"fmt"
	"strings"

	"storefront-crm/internal/crmview"
	"storefront-crm/internal/domain/crm"
	xerrors "storefront-crm/internal/pkg/errors"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

func cleanTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *CRMService) CreateContact(ctx context.Context, storeID string, req *crm.CreateContactRequest) (*crm.Contact, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, xerrors.Invalid("contact name and email are required")
	}
	typ := req.Type
	if typ == "" {
		typ = crm.ContactTypeLead
	}
	if !typ.Valid() {
		return nil, xerrors.Invalid("unknown contact type %q", typ)
	}

	contact := &crm.Contact{
		StoreID:  storeID,
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Company:  strings.TrimSpace(req.Company),
		JobTitle: strings.TrimSpace(req.JobTitle),
		Type:     typ,
		Tags:     cleanTags(req.Tags),
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	s.changed(ctx, storeID)

	s.logger.Info("contact created", zap.String("store_id", storeID), zap.String("contact_id", contact.ID))
	return contact, nil
}

// GetContact returns the contact with its lead, deals, timeline and stage.
func (s *CRMService) GetContact(ctx context.Context, storeID, id string) (*crmview.EnrichedContact, error) {
	snap, err := s.contactSnapshot(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	ec, ok := crmview.EnrichContact(snap, id)
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", id, xerrors.ErrNotFound)
	}
	return &ec, nil
}

// ListContacts enriches every contact of the store, optionally keeping only
// one funnel stage.
func (s *CRMService) ListContacts(ctx context.Context, storeID string, stage crmview.ContactStage) ([]crmview.EnrichedContact, error) {
	snap, err := s.storeSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	all := crmview.AllEnrichedContacts(snap)
	if stage == "" {
		return all, nil
	}
	out := make([]crmview.EnrichedContact, 0, len(all))
	for _, c := range all {
		if c.Stage == stage {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CRMService) UpdateContact(ctx context.Context, storeID, id string, req *crm.UpdateContactRequest) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if contact.Name = strings.TrimSpace(*req.Name); contact.Name == "" {
			return nil, xerrors.Invalid("contact name cannot be empty")
		}
	}
	if req.Email != nil {
		if contact.Email = strings.ToLower(strings.TrimSpace(*req.Email)); contact.Email == "" {
			return nil, xerrors.Invalid("contact email cannot be empty")
		}
	}
	if req.Phone != nil {
		contact.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Company != nil {
		contact.Company = strings.TrimSpace(*req.Company)
	}
	if req.JobTitle != nil {
		contact.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, xerrors.Invalid("unknown contact type %q", *req.Type)
		}
		contact.Type = *req.Type
	}
	if req.Tags != nil {
		contact.Tags = cleanTags(req.Tags)
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	s.changed(ctx, storeID)
	return contact, nil
}

// DeleteContact hides the contact together with its leads and deals.
// Activities stay stored but drop out of every read.
func (s *CRMService) DeleteContact(ctx context.Context, storeID, id string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.contactRepo.SoftDeleteWithTx(ctx, tx, storeID, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if err := s.leadRepo.SoftDeleteByContactWithTx(ctx, tx, storeID, id); err != nil {
		return fmt.Errorf("failed to delete contact leads: %w", err)
	}
	if err := s.dealRepo.SoftDeleteByContactWithTx(ctx, tx, storeID, id); err != nil {
		return fmt.Errorf("failed to delete contact deals: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.changed(ctx, storeID)

	s.logger.Info("contact deleted", zap.String("store_id", storeID), zap.String("contact_id", id))
	return nil
}
