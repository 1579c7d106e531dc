package crmview

import (
	"storefront-crm/internal/domain/crm"
)

// Snapshot is an immutable in-memory Reader over one store's CRM records.
// It is what the service layer builds after loading a store from Postgres and
// what tests build from fixtures.
type Snapshot struct {
	contacts   []crm.Contact
	leads      []crm.Lead
	deals      []crm.Deal
	activities []crm.Activity

	contactByID map[string]int
	leadByID    map[string]int
	dealByID    map[string]int

	leadByContact  map[string]int
	dealsByContact map[string][]int
	actsByContact  map[string][]crm.Activity
	actsByLead     map[string][]crm.Activity
	actsByDeal     map[string][]crm.Activity
}

// NewSnapshot indexes copies of the given records. When several leads point
// at the same contact the first one wins.
func NewSnapshot(contacts []crm.Contact, leads []crm.Lead, deals []crm.Deal, activities []crm.Activity) *Snapshot {
	s := &Snapshot{
		contacts:       append([]crm.Contact(nil), contacts...),
		leads:          append([]crm.Lead(nil), leads...),
		deals:          append([]crm.Deal(nil), deals...),
		activities:     newestFirst(activities),
		contactByID:    make(map[string]int, len(contacts)),
		leadByID:       make(map[string]int, len(leads)),
		dealByID:       make(map[string]int, len(deals)),
		leadByContact:  make(map[string]int, len(leads)),
		dealsByContact: make(map[string][]int),
		actsByContact:  make(map[string][]crm.Activity),
		actsByLead:     make(map[string][]crm.Activity),
		actsByDeal:     make(map[string][]crm.Activity),
	}

	for i, c := range s.contacts {
		s.contactByID[c.ID] = i
	}
	for i, l := range s.leads {
		s.leadByID[l.ID] = i
		if _, seen := s.leadByContact[l.ContactID]; !seen {
			s.leadByContact[l.ContactID] = i
		}
	}
	for i, d := range s.deals {
		s.dealByID[d.ID] = i
		s.dealsByContact[d.ContactID] = append(s.dealsByContact[d.ContactID], i)
	}
	// s.activities is already newest first, so the per-key slices are too.
	for _, a := range s.activities {
		s.actsByContact[a.ContactID] = append(s.actsByContact[a.ContactID], a)
		if a.LeadID != nil {
			s.actsByLead[*a.LeadID] = append(s.actsByLead[*a.LeadID], a)
		}
		if a.DealID != nil {
			s.actsByDeal[*a.DealID] = append(s.actsByDeal[*a.DealID], a)
		}
	}
	return s
}

func (s *Snapshot) ContactByID(id string) (crm.Contact, bool) {
	i, ok := s.contactByID[id]
	if !ok {
		return crm.Contact{}, false
	}
	return s.contacts[i], true
}

func (s *Snapshot) LeadByID(id string) (crm.Lead, bool) {
	i, ok := s.leadByID[id]
	if !ok {
		return crm.Lead{}, false
	}
	return s.leads[i], true
}

func (s *Snapshot) DealByID(id string) (crm.Deal, bool) {
	i, ok := s.dealByID[id]
	if !ok {
		return crm.Deal{}, false
	}
	return s.deals[i], true
}

func (s *Snapshot) LeadByContactID(contactID string) (crm.Lead, bool) {
	i, ok := s.leadByContact[contactID]
	if !ok {
		return crm.Lead{}, false
	}
	return s.leads[i], true
}

func (s *Snapshot) DealsByContactID(contactID string) []crm.Deal {
	idx := s.dealsByContact[contactID]
	out := make([]crm.Deal, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.deals[i])
	}
	return out
}

func (s *Snapshot) ActivitiesByContactID(contactID string) []crm.Activity {
	return append([]crm.Activity{}, s.actsByContact[contactID]...)
}

func (s *Snapshot) ActivitiesByLeadID(leadID string) []crm.Activity {
	return append([]crm.Activity{}, s.actsByLead[leadID]...)
}

func (s *Snapshot) ActivitiesByDealID(dealID string) []crm.Activity {
	return append([]crm.Activity{}, s.actsByDeal[dealID]...)
}

func (s *Snapshot) Contacts() []crm.Contact {
	return append([]crm.Contact(nil), s.contacts...)
}

func (s *Snapshot) Leads() []crm.Lead {
	return append([]crm.Lead(nil), s.leads...)
}

func (s *Snapshot) Deals() []crm.Deal {
	return append([]crm.Deal(nil), s.deals...)
}

// Activities returns every activity, newest first.
func (s *Snapshot) Activities() []crm.Activity {
	return append([]crm.Activity(nil), s.activities...)
}
