package crmview

import (
	"fmt"
	"time"

	"storefront-crm/internal/domain/crm"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func at(minutes int) time.Time { return epoch.Add(time.Duration(minutes) * time.Minute) }

func contact(id string, typ crm.ContactType) crm.Contact {
	return crm.Contact{
		ID:        id,
		StoreID:   "store-1",
		Name:      "Contact " + id,
		Email:     id + "@example.com",
		Type:      typ,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
}

func lead(id, contactID string, status crm.LeadStatus, score int) crm.Lead {
	return crm.Lead{
		ID:        id,
		StoreID:   "store-1",
		ContactID: contactID,
		Source:    crm.LeadSourceWebsite,
		Status:    status,
		Priority:  crm.PriorityMedium,
		Score:     score,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
}

func deal(id, contactID string, stage crm.DealStage, value float64, probability int) crm.Deal {
	return crm.Deal{
		ID:          id,
		StoreID:     "store-1",
		ContactID:   contactID,
		Name:        "Deal " + id,
		Value:       value,
		Stage:       stage,
		Probability: probability,
		CreatedAt:   epoch,
		UpdatedAt:   epoch,
	}
}

func activity(id, contactID string, minutes int) crm.Activity {
	return crm.Activity{
		ID:        id,
		StoreID:   "store-1",
		ContactID: contactID,
		Type:      crm.ActivityNote,
		Title:     "note " + id,
		CreatedAt: at(minutes),
		CreatedBy: "member-1",
	}
}

// funnelFixture seeds ten contacts, ten leads (three qualified) and eight
// deals (two won).
func funnelFixture() *Snapshot {
	var (
		contacts []crm.Contact
		leads    []crm.Lead
		deals    []crm.Deal
	)
	for i := 0; i < 10; i++ {
		cid := fmt.Sprintf("c%02d", i)
		contacts = append(contacts, contact(cid, crm.ContactTypeLead))

		status := crm.LeadStatusNew
		if i < 3 {
			status = crm.LeadStatusQualified
		}
		leads = append(leads, lead(fmt.Sprintf("l%02d", i), cid, status, 50))
	}
	stages := []crm.DealStage{
		crm.DealStageWon, crm.DealStageWon, crm.DealStageLost,
		crm.DealStageDiscovery, crm.DealStageProposal, crm.DealStageNegotiation,
		crm.DealStageDecision, crm.DealStageDiscovery,
	}
	for i, stage := range stages {
		deals = append(deals, deal(fmt.Sprintf("d%02d", i), fmt.Sprintf("c%02d", i), stage, 1000, 50))
	}
	return NewSnapshot(contacts, leads, deals, nil)
}
