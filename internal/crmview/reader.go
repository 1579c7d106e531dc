// Package crmview assembles read-only CRM composites (enriched contacts,
// leads and deals) and the dashboard aggregates computed from them.
//
// Everything here is pure: functions read through a Reader and never mutate
// it, so calling them twice over the same data yields identical results.
package crmview

import (
	"sort"

	"storefront-crm/internal/domain/crm"
)

// Reader is the query port the enrichment and statistics functions depend on.
// Activity lookups return newest first.
type Reader interface {
	ContactByID(id string) (crm.Contact, bool)
	LeadByID(id string) (crm.Lead, bool)
	DealByID(id string) (crm.Deal, bool)

	LeadByContactID(contactID string) (crm.Lead, bool)
	DealsByContactID(contactID string) []crm.Deal

	ActivitiesByContactID(contactID string) []crm.Activity
	ActivitiesByLeadID(leadID string) []crm.Activity
	ActivitiesByDealID(dealID string) []crm.Activity

	Contacts() []crm.Contact
	Leads() []crm.Lead
	Deals() []crm.Deal
}

// newestFirst returns a copy of activities ordered by CreatedAt descending.
// Equal timestamps fall back to id descending so the order is deterministic.
func newestFirst(activities []crm.Activity) []crm.Activity {
	out := make([]crm.Activity, len(activities))
	copy(out, activities)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
