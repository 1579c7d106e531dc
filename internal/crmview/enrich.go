package crmview

import (
	"storefront-crm/internal/domain/crm"
)

// EnrichedLead is a lead with its contact, timeline and converted deal.
type EnrichedLead struct {
	crm.Lead
	Contact     crm.Contact     `json:"contact"`
	Activities  []crm.Activity  `json:"activities"`
	Deal        *crm.Deal       `json:"deal,omitempty"`
	Temperature crm.Temperature `json:"temperature"`
	Untouched   bool            `json:"untouched"`
}

// EnrichedDeal is a deal with its contact, timeline and originating lead.
type EnrichedDeal struct {
	crm.Deal
	Contact       crm.Contact    `json:"contact"`
	Activities    []crm.Activity `json:"activities"`
	Lead          *crm.Lead      `json:"lead,omitempty"`
	WeightedValue float64        `json:"weighted_value"`
}

// EnrichedContact is a contact with everything hanging off it plus the
// derived pipeline stage and gross deal exposure.
type EnrichedContact struct {
	crm.Contact
	Lead       *crm.Lead      `json:"lead,omitempty"`
	Deals      []crm.Deal     `json:"deals"`
	Activities []crm.Activity `json:"activities"`
	Stage      ContactStage   `json:"stage"`
	TotalValue float64        `json:"total_value"`
}

// EnrichLead resolves a lead's contact, activities and converted deal.
// A missing lead or contact yields false; a dangling converted deal id is
// tolerated and simply leaves Deal nil.
func EnrichLead(r Reader, leadID string) (EnrichedLead, bool) {
	lead, ok := r.LeadByID(leadID)
	if !ok {
		return EnrichedLead{}, false
	}
	contact, ok := r.ContactByID(lead.ContactID)
	if !ok {
		return EnrichedLead{}, false
	}

	out := EnrichedLead{
		Lead:        lead,
		Contact:     contact,
		Activities:  newestFirst(r.ActivitiesByLeadID(lead.ID)),
		Temperature: lead.Temperature(),
		Untouched:   lead.IsUntouched(),
	}
	if lead.ConvertedToDealID != nil {
		if deal, ok := r.DealByID(*lead.ConvertedToDealID); ok {
			out.Deal = &deal
		}
	}
	return out, true
}

// EnrichDeal resolves a deal's contact, activities and originating lead.
func EnrichDeal(r Reader, dealID string) (EnrichedDeal, bool) {
	deal, ok := r.DealByID(dealID)
	if !ok {
		return EnrichedDeal{}, false
	}
	contact, ok := r.ContactByID(deal.ContactID)
	if !ok {
		return EnrichedDeal{}, false
	}

	out := EnrichedDeal{
		Deal:          deal,
		Contact:       contact,
		Activities:    newestFirst(r.ActivitiesByDealID(deal.ID)),
		WeightedValue: deal.WeightedValue(),
	}
	if deal.LeadID != nil {
		if lead, ok := r.LeadByID(*deal.LeadID); ok {
			out.Lead = &lead
		}
	}
	return out, true
}

// EnrichContact resolves a contact's lead, deals and activities and derives
// its stage and total value. TotalValue sums every deal, won and lost included.
func EnrichContact(r Reader, contactID string) (EnrichedContact, bool) {
	contact, ok := r.ContactByID(contactID)
	if !ok {
		return EnrichedContact{}, false
	}

	deals := r.DealsByContactID(contact.ID)
	out := EnrichedContact{
		Contact:    contact,
		Deals:      deals,
		Activities: newestFirst(r.ActivitiesByContactID(contact.ID)),
	}
	if lead, ok := r.LeadByContactID(contact.ID); ok {
		out.Lead = &lead
	}

	for _, d := range deals {
		out.TotalValue += d.Value
	}
	out.Stage = ClassifyContact(contact, out.Lead != nil, deals)
	return out, true
}

// AllEnrichedContacts enriches every contact, skipping any that do not resolve.
func AllEnrichedContacts(r Reader) []EnrichedContact {
	contacts := r.Contacts()
	out := make([]EnrichedContact, 0, len(contacts))
	for _, c := range contacts {
		if ec, ok := EnrichContact(r, c.ID); ok {
			out = append(out, ec)
		}
	}
	return out
}

// AllEnrichedLeads enriches every lead, skipping leads whose contact is gone.
func AllEnrichedLeads(r Reader) []EnrichedLead {
	leads := r.Leads()
	out := make([]EnrichedLead, 0, len(leads))
	for _, l := range leads {
		if el, ok := EnrichLead(r, l.ID); ok {
			out = append(out, el)
		}
	}
	return out
}

// AllEnrichedDeals enriches every deal, skipping deals whose contact is gone.
func AllEnrichedDeals(r Reader) []EnrichedDeal {
	deals := r.Deals()
	out := make([]EnrichedDeal, 0, len(deals))
	for _, d := range deals {
		if ed, ok := EnrichDeal(r, d.ID); ok {
			out = append(out, ed)
		}
	}
	return out
}
