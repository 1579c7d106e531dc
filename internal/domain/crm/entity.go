// internal/domain/crm/entity.go
package crm

import (
	"time"

	"github.com/lib/pq"
)

type ContactType string

const (
	ContactTypeLead     ContactType = "lead"
	ContactTypeCustomer ContactType = "customer"
	ContactTypePartner  ContactType = "partner"
)

type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "website"
	LeadSourceReferral LeadSource = "referral"
	LeadSourceSocial   LeadSource = "social"
	LeadSourceAds      LeadSource = "ads"
	LeadSourceEmail    LeadSource = "email"
	LeadSourceEvent    LeadSource = "event"
	LeadSourceOther    LeadSource = "other"
)

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusUnqualified LeadStatus = "unqualified"
	LeadStatusConverted   LeadStatus = "converted"
)

// LeadStatuses lists every lead status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusUnqualified,
	LeadStatusConverted,
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type DealStage string

const (
	DealStageDiscovery   DealStage = "discovery"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageDecision    DealStage = "decision"
	DealStageWon         DealStage = "won"
	DealStageLost        DealStage = "lost"
)

// DealStages lists every deal stage in pipeline order.
var DealStages = []DealStage{
	DealStageDiscovery,
	DealStageProposal,
	DealStageNegotiation,
	DealStageDecision,
	DealStageWon,
	DealStageLost,
}

type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
	ActivityTask    ActivityType = "task"
)

// Contact is the identity record; leads and deals point at it by id.
type Contact struct {
	ID       string      `json:"id" db:"id"`
	StoreID  string      `json:"store_id" db:"store_id"`
	Name     string      `json:"name" db:"name"`
	Email    string      `json:"email" db:"email"`
	Phone    string      `json:"phone,omitempty" db:"phone"`
	Company  string      `json:"company,omitempty" db:"company"`
	JobTitle string      `json:"job_title,omitempty" db:"job_title"`
	Type     ContactType `json:"type" db:"type"`

	Tags pq.StringArray `json:"tags" db:"tags"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type Lead struct {
	ID             string     `json:"id" db:"id"`
	StoreID        string     `json:"store_id" db:"store_id"`
	ContactID      string     `json:"contact_id" db:"contact_id"`
	Source         LeadSource `json:"source" db:"source"`
	Status         LeadStatus `json:"status" db:"status"`
	Priority       Priority   `json:"priority" db:"priority"`
	Score          int        `json:"score" db:"score"`
	AssignedTo     string     `json:"assigned_to,omitempty" db:"assigned_to"`
	EstimatedValue float64    `json:"estimated_value" db:"estimated_value"`
	Notes          string     `json:"notes,omitempty" db:"notes"`

	LastContactedAt   *time.Time `json:"last_contacted_at" db:"last_contacted_at"`
	ConvertedToDealID *string    `json:"converted_to_deal_id,omitempty" db:"converted_to_deal_id"`
	ConvertedAt       *time.Time `json:"converted_at,omitempty" db:"converted_at"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type Deal struct {
	ID                string     `json:"id" db:"id"`
	StoreID           string     `json:"store_id" db:"store_id"`
	ContactID         string     `json:"contact_id" db:"contact_id"`
	LeadID            *string    `json:"lead_id,omitempty" db:"lead_id"`
	Name              string     `json:"name" db:"name"`
	Value             float64    `json:"value" db:"value"`
	Stage             DealStage  `json:"stage" db:"stage"`
	Probability       int        `json:"probability" db:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" db:"expected_close_date"`
	AssignedTo        string     `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes             string     `json:"notes,omitempty" db:"notes"`
	ClosedAt          *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	LostReason        string     `json:"lost_reason,omitempty" db:"lost_reason"`

	Tags pq.StringArray `json:"tags" db:"tags"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// Activity is append-only: once stored it is never edited or removed.
type Activity struct {
	ID          string                 `json:"id" db:"id"`
	StoreID     string                 `json:"store_id" db:"store_id"`
	ContactID   string                 `json:"contact_id" db:"contact_id"`
	LeadID      *string                `json:"lead_id,omitempty" db:"lead_id"`
	DealID      *string                `json:"deal_id,omitempty" db:"deal_id"`
	Type        ActivityType           `json:"type" db:"type"`
	Title       string                 `json:"title" db:"title"`
	Description string                 `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	CreatedBy   string                 `json:"created_by" db:"created_by"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}
