// internal/domain/crm/dto.go
package crm

import "time"

type CreateContactRequest struct {
	Name     string      `json:"name" binding:"required,max=255" yaml:"name"`
	Email    string      `json:"email" binding:"required,email,max=255" yaml:"email"`
	Phone    string      `json:"phone" binding:"max=32" yaml:"phone"`
	Company  string      `json:"company" binding:"max=255" yaml:"company"`
	JobTitle string      `json:"job_title" binding:"max=255" yaml:"job_title"`
	Type     ContactType `json:"type" binding:"omitempty,oneof=lead customer partner" yaml:"type"`
	Tags     []string    `json:"tags" yaml:"tags"`
}

type UpdateContactRequest struct {
	Name     *string      `json:"name" binding:"omitempty,max=255"`
	Email    *string      `json:"email" binding:"omitempty,email,max=255"`
	Phone    *string      `json:"phone" binding:"omitempty,max=32"`
	Company  *string      `json:"company" binding:"omitempty,max=255"`
	JobTitle *string      `json:"job_title" binding:"omitempty,max=255"`
	Type     *ContactType `json:"type" binding:"omitempty,oneof=lead customer partner"`
	Tags     []string     `json:"tags"`
}

type CreateLeadRequest struct {
	ContactID      string     `json:"contact_id" binding:"required" yaml:"contact_id"`
	Source         LeadSource `json:"source" binding:"omitempty,oneof=website referral social ads email event other" yaml:"source"`
	Priority       Priority   `json:"priority" binding:"omitempty,oneof=low medium high urgent" yaml:"priority"`
	Score          int        `json:"score" binding:"min=0,max=100" yaml:"score"`
	AssignedTo     string     `json:"assigned_to" yaml:"assigned_to"`
	EstimatedValue float64    `json:"estimated_value" binding:"min=0" yaml:"estimated_value"`
	Notes          string     `json:"notes" yaml:"notes"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" binding:"required"`
}

type UpdateLeadScoreRequest struct {
	Score int `json:"score" binding:"min=0,max=100"`
}

type ConvertLeadRequest struct {
	DealName          string     `json:"deal_name" binding:"required,max=255"`
	Value             float64    `json:"value" binding:"min=0"`
	Probability       int        `json:"probability" binding:"min=0,max=100"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	AssignedTo        string     `json:"assigned_to"`
}

type MarkContactedRequest struct {
	Channel ActivityType `json:"channel" binding:"omitempty,oneof=call email meeting"`
	Notes   string       `json:"notes"`
}

type CreateDealRequest struct {
	ContactID         string     `json:"contact_id" binding:"required" yaml:"contact_id"`
	Name              string     `json:"name" binding:"required,max=255" yaml:"name"`
	Value             float64    `json:"value" binding:"min=0" yaml:"value"`
	Stage             DealStage  `json:"stage" binding:"omitempty,oneof=discovery proposal negotiation decision" yaml:"stage"`
	Probability       int        `json:"probability" binding:"min=0,max=100" yaml:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date" yaml:"expected_close_date"`
	AssignedTo        string     `json:"assigned_to" yaml:"assigned_to"`
	Notes             string     `json:"notes" yaml:"notes"`
	Tags              []string   `json:"tags" yaml:"tags"`
}

type MoveDealStageRequest struct {
	Stage      DealStage `json:"stage" binding:"required"`
	LostReason string    `json:"lost_reason"`
}

type LogActivityRequest struct {
	ContactID   string                 `json:"contact_id" binding:"required"`
	LeadID      string                 `json:"lead_id"`
	DealID      string                 `json:"deal_id"`
	Type        ActivityType           `json:"type" binding:"required,oneof=call email meeting note task"`
	Title       string                 `json:"title" binding:"required,max=255"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type LeadListFilters struct {
	Status      LeadStatus  `form:"status"`
	Temperature Temperature `form:"temperature" binding:"omitempty,oneof=hot warm cold"`
	Untouched   *bool       `form:"untouched"`
}

type DealListFilters struct {
	Stage      DealStage `form:"stage"`
	ActiveOnly bool      `form:"active_only"`
}
