package crm

import (
	"fmt"

	xerrors "storefront-crm/internal/pkg/errors"
)

// Temperature buckets a lead score for dashboard triage.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

const (
	HotScoreThreshold  = 80
	WarmScoreThreshold = 60
	MaxScore           = 100
	MaxProbability     = 100
)

// TemperatureFor returns hot for scores >= 80, warm for 60..79 and cold below.
func TemperatureFor(score int) Temperature {
	switch {
	case score >= HotScoreThreshold:
		return TemperatureHot
	case score >= WarmScoreThreshold:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}

// Temperature of the lead's current score.
func (l *Lead) Temperature() Temperature {
	return TemperatureFor(l.Score)
}

// IsUntouched reports whether nobody has contacted the lead yet.
func (l *Lead) IsUntouched() bool {
	return l.LastContactedAt == nil
}

// IsConverted reports whether the lead has been turned into a deal.
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// IsTerminal reports whether the stage closes the deal.
func (s DealStage) IsTerminal() bool {
	return s == DealStageWon || s == DealStageLost
}

// IsActive reports whether the deal is still open.
func (d *Deal) IsActive() bool {
	return !d.Stage.IsTerminal()
}

// WeightedValue is the deal value scaled by its win probability (0..100).
func (d *Deal) WeightedValue() float64 {
	return d.Value * float64(d.Probability) / 100
}

// Forward edges of the lead pipeline. Unqualified is reachable from any
// open status and is handled separately.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusNew:       {LeadStatusContacted},
	LeadStatusContacted: {LeadStatusQualified},
	LeadStatusQualified: {LeadStatusConverted},
}

// CanTransitionTo reports whether a lead may move from s to next.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	if s == LeadStatusConverted || s == LeadStatusUnqualified {
		return false
	}
	if next == LeadStatusUnqualified {
		return true
	}
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateLeadTransition returns ErrInvalidTransition when the move is not allowed.
func ValidateLeadTransition(from, to LeadStatus) error {
	if !to.Valid() {
		return xerrors.Invalid("unknown lead status %q", to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("lead cannot move from %s to %s: %w", from, to, xerrors.ErrInvalidTransition)
	}
	return nil
}

var dealOrder = map[DealStage]int{
	DealStageDiscovery:   0,
	DealStageProposal:    1,
	DealStageNegotiation: 2,
	DealStageDecision:    3,
}

// CanTransitionTo reports whether a deal may move from s to next. Open
// stages only move forward; won and lost can be reached from any open stage.
func (s DealStage) CanTransitionTo(next DealStage) bool {
	if s.IsTerminal() {
		return false
	}
	if next.IsTerminal() {
		return true
	}
	from, ok1 := dealOrder[s]
	to, ok2 := dealOrder[next]
	return ok1 && ok2 && to > from
}

// ValidateDealTransition returns ErrInvalidTransition when the move is not allowed.
func ValidateDealTransition(from, to DealStage) error {
	if !to.Valid() {
		return xerrors.Invalid("unknown deal stage %q", to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("deal cannot move from %s to %s: %w", from, to, xerrors.ErrInvalidTransition)
	}
	return nil
}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s DealStage) Valid() bool {
	_, open := dealOrder[s]
	return open || s.IsTerminal()
}

func (t ContactType) Valid() bool {
	switch t {
	case ContactTypeLead, ContactTypeCustomer, ContactTypePartner:
		return true
	}
	return false
}

func (s LeadSource) Valid() bool {
	switch s {
	case LeadSourceWebsite, LeadSourceReferral, LeadSourceSocial, LeadSourceAds,
		LeadSourceEmail, LeadSourceEvent, LeadSourceOther:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote, ActivityTask:
		return true
	}
	return false
}
