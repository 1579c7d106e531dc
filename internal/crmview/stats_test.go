package crmview

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-crm/internal/domain/crm"
)

func TestComputeLeadStats_AverageScore(t *testing.T) {
	scores := []int{85, 92, 68, 78, 72, 45, 95, 28, 65, 88}
	var leads []crm.Lead
	var contacts []crm.Contact
	for i, s := range scores {
		cid := fmt.Sprintf("c%d", i)
		contacts = append(contacts, contact(cid, crm.ContactTypeLead))
		leads = append(leads, lead(fmt.Sprintf("l%d", i), cid, crm.LeadStatusNew, s))
	}
	leads[0].EstimatedValue = 1200
	leads[1].EstimatedValue = 300.5
	contactedAt := epoch
	leads[2].LastContactedAt = &contactedAt

	stats := ComputeLeadStats(NewSnapshot(contacts, leads, nil, nil))

	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 72, stats.AverageScore)
	assert.InDelta(t, 1500.5, stats.TotalEstimatedValue, 1e-9)
	assert.Equal(t, 4, stats.Hot)  // 85 92 95 88
	assert.Equal(t, 4, stats.Warm) // 68 78 72 65
	assert.Equal(t, 2, stats.Cold) // 45 28
	assert.Equal(t, 9, stats.Untouched)
	assert.Equal(t, 10, stats.New)
}

func TestComputeLeadStats_Empty(t *testing.T) {
	stats := ComputeLeadStats(NewSnapshot(nil, nil, nil, nil))

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.AverageScore)
	assert.Zero(t, stats.TotalEstimatedValue)
	for _, s := range crm.LeadStatuses {
		count, ok := stats.ByStatus[s]
		assert.True(t, ok, "status %s should be reported", s)
		assert.Zero(t, count)
	}
}

func TestComputeLeadStats_RoundsHalfAwayFromZero(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{contact("c1", crm.ContactTypeLead), contact("c2", crm.ContactTypeLead)},
		[]crm.Lead{lead("l1", "c1", crm.LeadStatusNew, 70), lead("l2", "c2", crm.LeadStatusNew, 71)},
		nil, nil,
	)
	assert.Equal(t, 71, ComputeLeadStats(snap).AverageScore)
}

func TestComputeDealStats(t *testing.T) {
	deals := []crm.Deal{
		deal("d1", "c1", crm.DealStageDiscovery, 1000, 20),
		deal("d2", "c1", crm.DealStageNegotiation, 3000, 60),
		deal("d3", "c2", crm.DealStageWon, 5000, 100),
		deal("d4", "c2", crm.DealStageLost, 2000, 90),
	}
	stats := ComputeDealStats(NewSnapshot(nil, nil, deals, nil))

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Won)
	assert.Equal(t, 1, stats.Lost)
	assert.InDelta(t, 4000.0, stats.PipelineValue, 1e-9)
	// 1000*20/100 + 3000*60/100; closed deals contribute nothing.
	assert.InDelta(t, 2000.0, stats.WeightedPipelineValue, 1e-9)
	assert.InDelta(t, 5000.0, stats.WonValue, 1e-9)
	assert.InDelta(t, 2000.0, stats.LostValue, 1e-9)
	assert.InDelta(t, 11000.0/4, stats.AverageDealSize, 1e-9)
	assert.Equal(t, 1, stats.ByStage[crm.DealStageNegotiation])
	assert.Equal(t, 0, stats.ByStage[crm.DealStageDecision])
}

func TestComputeDealStats_Empty(t *testing.T) {
	stats := ComputeDealStats(NewSnapshot(nil, nil, nil, nil))
	assert.Zero(t, stats.AverageDealSize)
	assert.False(t, math.IsNaN(stats.AverageDealSize))
	assert.Zero(t, stats.WeightedPipelineValue)
}

func TestComputeContactStats(t *testing.T) {
	snap := NewSnapshot(
		[]crm.Contact{
			contact("plain", crm.ContactTypeLead),
			contact("leadonly", crm.ContactTypeLead),
			contact("open", crm.ContactTypeLead),
			contact("buyer", crm.ContactTypeCustomer),
			contact("lostone", crm.ContactTypeLead),
		},
		[]crm.Lead{
			lead("l1", "leadonly", crm.LeadStatusNew, 0),
			lead("l2", "lostone", crm.LeadStatusContacted, 0),
		},
		[]crm.Deal{
			deal("d1", "open", crm.DealStageProposal, 10, 10),
			deal("d2", "lostone", crm.DealStageLost, 10, 10),
		},
		nil,
	)

	stats := ComputeContactStats(snap)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Contacts)
	assert.Equal(t, 2, stats.Leads)
	assert.Equal(t, 1, stats.Deals)
	assert.Equal(t, 1, stats.Customers)
}

func TestComputeConversionFunnel_ScenarioB(t *testing.T) {
	funnel := ComputeConversionFunnel(funnelFixture())

	assert.InDelta(t, 100.0, funnel.Rates.ContactToLead, 0.05)
	assert.InDelta(t, 30.0, funnel.Rates.LeadToQualified, 0.05)
	assert.InDelta(t, 266.7, funnel.Rates.QualifiedToDeal, 0.05)
	assert.InDelta(t, 25.0, funnel.Rates.DealToCustomer, 0.05)

	want := []FunnelStage{
		{Name: "contacts", Count: 10},
		{Name: "leads", Count: 10},
		{Name: "qualified", Count: 3},
		{Name: "active_deals", Count: 5},
		{Name: "won", Count: 2},
	}
	if diff := cmp.Diff(want, funnel.Stages); diff != "" {
		t.Errorf("funnel stages mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeConversionFunnel_ZeroDenominators(t *testing.T) {
	fixtures := map[string]*Snapshot{
		"empty": NewSnapshot(nil, nil, nil, nil),
		"contacts only": NewSnapshot(
			[]crm.Contact{contact("c1", crm.ContactTypeLead)}, nil, nil, nil),
		"no qualified leads": NewSnapshot(
			[]crm.Contact{contact("c1", crm.ContactTypeLead)},
			[]crm.Lead{lead("l1", "c1", crm.LeadStatusNew, 0)},
			[]crm.Deal{deal("d1", "c1", crm.DealStageDiscovery, 10, 10)},
			nil),
		"deals without contacts": NewSnapshot(
			nil, nil, []crm.Deal{deal("d1", "c1", crm.DealStageWon, 10, 10)}, nil),
	}

	for name, snap := range fixtures {
		t.Run(name, func(t *testing.T) {
			r := ComputeConversionFunnel(snap).Rates
			for label, v := range map[string]float64{
				"contactToLead":   r.ContactToLead,
				"leadToQualified": r.LeadToQualified,
				"qualifiedToDeal": r.QualifiedToDeal,
				"dealToCustomer":  r.DealToCustomer,
			} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", label, v)
			}
		})
	}

	r := ComputeConversionFunnel(fixtures["no qualified leads"]).Rates
	assert.Zero(t, r.QualifiedToDeal)
	assert.InDelta(t, 100.0, r.ContactToLead, 1e-9)
}

func TestComputeDashboard_MatchesIndividualAggregates(t *testing.T) {
	snap := funnelFixture()
	dash := ComputeDashboard(snap)

	require.Equal(t, ComputeLeadStats(snap), dash.Leads)
	require.Equal(t, ComputeDealStats(snap), dash.Deals)
	require.Equal(t, ComputeContactStats(snap), dash.Contacts)
	require.Equal(t, ComputeConversionFunnel(snap), dash.Funnel)
}

func TestAggregates_AreIdempotent(t *testing.T) {
	snap := funnelFixture()

	first := ComputeDashboard(snap)
	second := ComputeDashboard(snap)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("dashboard changed between calls (-first +second):\n%s", diff)
	}

	if diff := cmp.Diff(AllEnrichedContacts(snap), AllEnrichedContacts(snap)); diff != "" {
		t.Errorf("enriched contacts changed between calls:\n%s", diff)
	}
}
