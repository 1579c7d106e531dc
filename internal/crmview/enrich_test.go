package crmview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-crm/internal/domain/crm"
)

func TestEnrichLead(t *testing.T) {
	l := lead("l1", "c1", crm.LeadStatusConverted, 85)
	l.ConvertedToDealID = strPtr("d1")
	d := deal("d1", "c1", crm.DealStageProposal, 5000, 40)
	d.LeadID = strPtr("l1")

	older := activity("a1", "c1", 0)
	older.LeadID = strPtr("l1")
	newer := activity("a2", "c1", 30)
	newer.LeadID = strPtr("l1")
	unrelated := activity("a3", "c1", 60)

	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{l},
		[]crm.Deal{d},
		[]crm.Activity{older, unrelated, newer},
	)

	got, ok := EnrichLead(snap, "l1")
	require.True(t, ok)
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, "c1", got.Contact.ID)
	require.NotNil(t, got.Deal)
	assert.Equal(t, "d1", got.Deal.ID)
	assert.Equal(t, crm.TemperatureHot, got.Temperature)
	assert.True(t, got.Untouched)

	require.Len(t, got.Activities, 2)
	assert.Equal(t, "a2", got.Activities[0].ID)
	assert.Equal(t, "a1", got.Activities[1].ID)
}

func TestEnrichLead_Absent(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{lead("orphan", "missing-contact", crm.LeadStatusNew, 10)},
		nil, nil,
	)

	_, ok := EnrichLead(snap, "nope")
	assert.False(t, ok, "unknown lead")

	_, ok = EnrichLead(snap, "orphan")
	assert.False(t, ok, "lead whose contact is missing")
}

func TestEnrichLead_DanglingDealIsTolerated(t *testing.T) {
	l := lead("l1", "c1", crm.LeadStatusConverted, 70)
	l.ConvertedToDealID = strPtr("deleted-deal")
	snap := NewSnapshot([]crm.Contact{contact("c1", crm.ContactTypeLead)}, []crm.Lead{l}, nil, nil)

	got, ok := EnrichLead(snap, "l1")
	require.True(t, ok)
	assert.Nil(t, got.Deal)
	assert.Equal(t, crm.TemperatureWarm, got.Temperature)
}

func TestEnrichLead_LegacyConvertedWithoutDeal(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{lead("l1", "c1", crm.LeadStatusConverted, 40)},
		nil, nil,
	)

	got, ok := EnrichLead(snap, "l1")
	require.True(t, ok)
	assert.Nil(t, got.Deal)
	assert.True(t, got.IsConverted())
}

func TestEnrichLead_ActivitiesNonIncreasing(t *testing.T) {
	var acts []crm.Activity
	for i, m := range []int{5, 90, 0, 45, 45, 12} {
		a := activity(string(rune('a'+i)), "c1", m)
		a.LeadID = strPtr("l1")
		acts = append(acts, a)
	}
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{lead("l1", "c1", crm.LeadStatusNew, 0)},
		nil, acts,
	)

	got, ok := EnrichLead(snap, "l1")
	require.True(t, ok)
	require.Len(t, got.Activities, len(acts))
	for i := 1; i < len(got.Activities); i++ {
		assert.False(t, got.Activities[i].CreatedAt.After(got.Activities[i-1].CreatedAt),
			"activity %d is newer than its predecessor", i)
	}
}

func TestEnrichLead_RoundTripsEverySeededLead(t *testing.T) {
	snap := funnelFixture()
	for _, l := range snap.Leads() {
		got, ok := EnrichLead(snap, l.ID)
		require.True(t, ok, l.ID)
		assert.Equal(t, l.ID, got.ID)
		assert.Equal(t, l.ContactID, got.Contact.ID)
	}
}

func TestEnrichDeal(t *testing.T) {
	d := deal("d1", "c1", crm.DealStageNegotiation, 2000, 75)
	d.LeadID = strPtr("l1")
	a := activity("a1", "c1", 0)
	a.DealID = strPtr("d1")

	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{lead("l1", "c1", crm.LeadStatusQualified, 65)},
		[]crm.Deal{d},
		[]crm.Activity{a, activity("a2", "c1", 5)},
	)

	got, ok := EnrichDeal(snap, "d1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.Contact.ID)
	require.NotNil(t, got.Lead)
	assert.Equal(t, "l1", got.Lead.ID)
	assert.InDelta(t, 1500.0, got.WeightedValue, 1e-9)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, "a1", got.Activities[0].ID)

	_, ok = EnrichDeal(snap, "missing")
	assert.False(t, ok)
}

func TestEnrichContact_ScenarioC(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{lead("l1", "c1", crm.LeadStatusNew, 20)},
		nil, nil,
	)

	got, ok := EnrichContact(snap, "c1")
	require.True(t, ok)
	assert.Equal(t, StageLead, got.Stage)
	assert.Zero(t, got.TotalValue)
	assert.Empty(t, got.Deals)
	require.NotNil(t, got.Lead)
}

func TestEnrichContact_TotalValueIncludesClosedDeals(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		nil,
		[]crm.Deal{
			deal("d1", "c1", crm.DealStageWon, 100, 100),
			deal("d2", "c1", crm.DealStageLost, 250, 0),
			deal("d3", "c1", crm.DealStageProposal, 50, 30),
		},
		nil,
	)

	got, ok := EnrichContact(snap, "c1")
	require.True(t, ok)
	assert.InDelta(t, 400.0, got.TotalValue, 1e-9)
	assert.Equal(t, StageCustomer, got.Stage)
}

func TestEnrichContact_Absent(t *testing.T) {
	_, ok := EnrichContact(NewSnapshot(nil, nil, nil, nil), "c1")
	assert.False(t, ok)
}

func TestAllEnriched_SkipUnresolved(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{
			lead("l1", "c1", crm.LeadStatusNew, 0),
			lead("l2", "gone", crm.LeadStatusNew, 0),
		},
		[]crm.Deal{
			deal("d1", "c1", crm.DealStageDiscovery, 10, 10),
			deal("d2", "gone", crm.DealStageDiscovery, 10, 10),
		},
		nil,
	)

	assert.Len(t, AllEnrichedContacts(snap), 1)

	leads := AllEnrichedLeads(snap)
	require.Len(t, leads, 1)
	assert.Equal(t, "l1", leads[0].ID)

	deals := AllEnrichedDeals(snap)
	require.Len(t, deals, 1)
	assert.Equal(t, "d1", deals[0].ID)
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	a := activity("a1", "c1", 0)
	snap := NewSnapshot([]crm.Contact{contact("c1", crm.ContactTypeLead)}, nil, nil, []crm.Activity{a})

	acts := snap.ActivitiesByContactID("c1")
	acts[0].Title = "mutated"
	assert.Equal(t, "note a1", snap.ActivitiesByContactID("c1")[0].Title)

	contacts := snap.Contacts()
	contacts[0].Name = "mutated"
	c, _ := snap.ContactByID("c1")
	assert.Equal(t, "Contact c1", c.Name)
}

func TestSnapshot_FirstLeadPerContactWins(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead)},
		[]crm.Lead{
			lead("first", "c1", crm.LeadStatusNew, 0),
			lead("second", "c1", crm.LeadStatusNew, 0),
		},
		nil, nil,
	)

	l, ok := snap.LeadByContactID("c1")
	require.True(t, ok)
	assert.Equal(t, "first", l.ID)
}
