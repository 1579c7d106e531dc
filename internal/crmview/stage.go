package crmview

import (
	"storefront-crm/internal/domain/crm"
)

// ContactStage is where a contact sits in the funnel.
type ContactStage string

const (
	StageContact  ContactStage = "contact"
	StageLead     ContactStage = "lead"
	StageDeal     ContactStage = "deal"
	StageCustomer ContactStage = "customer"
)

// ContactStages lists stages from lowest to highest.
var ContactStages = []ContactStage{StageContact, StageLead, StageDeal, StageCustomer}

type stageFacts struct {
	contact crm.Contact
	hasLead bool
	deals   []crm.Deal
}

type stageRule struct {
	stage   ContactStage
	matches func(stageFacts) bool
}

// stagePrecedence is evaluated top-down; the first matching rule wins.
// Lost deals never count toward "deal" or "customer".
var stagePrecedence = []stageRule{
	{StageCustomer, func(f stageFacts) bool {
		if f.contact.Type == crm.ContactTypeCustomer {
			return true
		}
		for _, d := range f.deals {
			if d.Stage == crm.DealStageWon {
				return true
			}
		}
		return false
	}},
	{StageDeal, func(f stageFacts) bool {
		for _, d := range f.deals {
			if d.IsActive() {
				return true
			}
		}
		return false
	}},
	{StageLead, func(f stageFacts) bool { return f.hasLead }},
	{StageContact, func(stageFacts) bool { return true }},
}

// ClassifyContact derives a contact's stage from its own type, whether a lead
// exists for it, and its deals.
func ClassifyContact(contact crm.Contact, hasLead bool, deals []crm.Deal) ContactStage {
	facts := stageFacts{contact: contact, hasLead: hasLead, deals: deals}
	for _, rule := range stagePrecedence {
		if rule.matches(facts) {
			return rule.stage
		}
	}
	return StageContact
}
