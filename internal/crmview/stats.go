package crmview

import (
	"math"

	"storefront-crm/internal/domain/crm"
)

type LeadStats struct {
	Total               int                    `json:"total"`
	ByStatus            map[crm.LeadStatus]int `json:"by_status"`
	New                 int                    `json:"new"`
	Contacted           int                    `json:"contacted"`
	Qualified           int                    `json:"qualified"`
	Unqualified         int                    `json:"unqualified"`
	Converted           int                    `json:"converted"`
	AverageScore        int                    `json:"average_score"`
	TotalEstimatedValue float64                `json:"total_estimated_value"`
	Hot                 int                    `json:"hot"`
	Warm                int                    `json:"warm"`
	Cold                int                    `json:"cold"`
	Untouched           int                    `json:"untouched"`
}

type DealStats struct {
	Total                 int                   `json:"total"`
	Active                int                   `json:"active"`
	Won                   int                   `json:"won"`
	Lost                  int                   `json:"lost"`
	ByStage               map[crm.DealStage]int `json:"by_stage"`
	TotalValue            float64               `json:"total_value"`
	PipelineValue         float64               `json:"pipeline_value"`
	WeightedPipelineValue float64               `json:"weighted_pipeline_value"`
	WonValue              float64               `json:"won_value"`
	LostValue             float64               `json:"lost_value"`
	AverageDealSize       float64               `json:"average_deal_size"`
}

type ContactStats struct {
	Total     int                  `json:"total"`
	ByStage   map[ContactStage]int `json:"by_stage"`
	Contacts  int                  `json:"contacts"`
	Leads     int                  `json:"leads"`
	Deals     int                  `json:"deals"`
	Customers int                  `json:"customers"`
}

type FunnelStage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ConversionRates are percentages (0..100, can exceed 100).
type ConversionRates struct {
	ContactToLead   float64 `json:"contact_to_lead"`
	LeadToQualified float64 `json:"lead_to_qualified"`
	QualifiedToDeal float64 `json:"qualified_to_deal"`
	DealToCustomer  float64 `json:"deal_to_customer"`
}

type ConversionFunnel struct {
	Stages []FunnelStage   `json:"stages"`
	Rates  ConversionRates `json:"rates"`
}

// Dashboard bundles every aggregate for one store.
type Dashboard struct {
	Leads    LeadStats        `json:"leads"`
	Deals    DealStats        `json:"deals"`
	Contacts ContactStats     `json:"contacts"`
	Funnel   ConversionFunnel `json:"funnel"`
}

// ComputeLeadStats counts leads by status and temperature. AverageScore is the
// rounded mean score, 0 when there are no leads.
func ComputeLeadStats(r Reader) LeadStats {
	leads := r.Leads()
	stats := LeadStats{
		Total:    len(leads),
		ByStatus: make(map[crm.LeadStatus]int, len(crm.LeadStatuses)),
	}
	for _, s := range crm.LeadStatuses {
		stats.ByStatus[s] = 0
	}

	scoreSum := 0
	for i := range leads {
		l := &leads[i]
		stats.ByStatus[l.Status]++
		scoreSum += l.Score
		stats.TotalEstimatedValue += l.EstimatedValue

		switch l.Temperature() {
		case crm.TemperatureHot:
			stats.Hot++
		case crm.TemperatureWarm:
			stats.Warm++
		default:
			stats.Cold++
		}
		if l.IsUntouched() {
			stats.Untouched++
		}
	}

	stats.New = stats.ByStatus[crm.LeadStatusNew]
	stats.Contacted = stats.ByStatus[crm.LeadStatusContacted]
	stats.Qualified = stats.ByStatus[crm.LeadStatusQualified]
	stats.Unqualified = stats.ByStatus[crm.LeadStatusUnqualified]
	stats.Converted = stats.ByStatus[crm.LeadStatusConverted]

	if len(leads) > 0 {
		stats.AverageScore = int(math.Round(float64(scoreSum) / float64(len(leads))))
	}
	return stats
}

// ComputeDealStats splits deals into open and closed. Pipeline figures cover
// open deals only; AverageDealSize divides the value of every deal by the
// number of deals.
func ComputeDealStats(r Reader) DealStats {
	deals := r.Deals()
	stats := DealStats{
		Total:   len(deals),
		ByStage: make(map[crm.DealStage]int, len(crm.DealStages)),
	}
	for _, s := range crm.DealStages {
		stats.ByStage[s] = 0
	}

	for i := range deals {
		d := &deals[i]
		stats.ByStage[d.Stage]++
		stats.TotalValue += d.Value

		switch {
		case d.IsActive():
			stats.Active++
			stats.PipelineValue += d.Value
			stats.WeightedPipelineValue += d.WeightedValue()
		case d.Stage == crm.DealStageWon:
			stats.Won++
			stats.WonValue += d.Value
		case d.Stage == crm.DealStageLost:
			stats.Lost++
			stats.LostValue += d.Value
		}
	}

	stats.AverageDealSize = ratio(stats.TotalValue, float64(stats.Total))
	return stats
}

// ComputeContactStats enriches every contact and counts them by stage.
func ComputeContactStats(r Reader) ContactStats {
	enriched := AllEnrichedContacts(r)
	stats := ContactStats{
		Total:   len(enriched),
		ByStage: make(map[ContactStage]int, len(ContactStages)),
	}
	for _, s := range ContactStages {
		stats.ByStage[s] = 0
	}
	for _, c := range enriched {
		stats.ByStage[c.Stage]++
	}

	stats.Contacts = stats.ByStage[StageContact]
	stats.Leads = stats.ByStage[StageLead]
	stats.Deals = stats.ByStage[StageDeal]
	stats.Customers = stats.ByStage[StageCustomer]
	return stats
}

// ComputeConversionFunnel builds the five-stage funnel. Note that
// QualifiedToDeal uses the total number of deals, not only open ones.
func ComputeConversionFunnel(r Reader) ConversionFunnel {
	return buildFunnel(ComputeContactStats(r), ComputeLeadStats(r), ComputeDealStats(r))
}

// ComputeDashboard computes every aggregate over a single read of r.
func ComputeDashboard(r Reader) Dashboard {
	contacts := ComputeContactStats(r)
	leads := ComputeLeadStats(r)
	deals := ComputeDealStats(r)
	return Dashboard{
		Leads:    leads,
		Deals:    deals,
		Contacts: contacts,
		Funnel:   buildFunnel(contacts, leads, deals),
	}
}

func buildFunnel(contacts ContactStats, leads LeadStats, deals DealStats) ConversionFunnel {
	return ConversionFunnel{
		Stages: []FunnelStage{
			{Name: "contacts", Count: contacts.Total},
			{Name: "leads", Count: leads.Total},
			{Name: "qualified", Count: leads.Qualified},
			{Name: "active_deals", Count: deals.Active},
			{Name: "won", Count: deals.Won},
		},
		Rates: ConversionRates{
			ContactToLead:   percent(leads.Total, contacts.Total),
			LeadToQualified: percent(leads.Qualified, leads.Total),
			QualifiedToDeal: percent(deals.Total, leads.Qualified),
			DealToCustomer:  percent(deals.Won, deals.Total),
		},
	}
}

// percent is num/den*100, or 0 when den is 0.
func percent(num, den int) float64 {
	return ratio(float64(num), float64(den)) * 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
