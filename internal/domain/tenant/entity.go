// internal/domain/tenant/entity.go
package tenant

import (
	"time"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberAccepted MemberStatus = "accepted"
)

// Merchant is the SaaS account owner. Email and phone are globally unique.
type Merchant struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Subscription is one-to-one with Merchant.
type Subscription struct {
	ID         string             `json:"id" db:"id"`
	MerchantID string             `json:"merchant_id" db:"merchant_id"`
	Plan       Plan               `json:"plan" db:"plan"`
	Status     SubscriptionStatus `json:"status" db:"status"`

	// Billing period
	CurrentPeriodStart time.Time  `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end" db:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end" db:"cancel_at_period_end"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty" db:"canceled_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Store is a tenant. Subdomain and custom domain are globally unique.
type Store struct {
	ID           string     `json:"id" db:"id"`
	MerchantID   string     `json:"merchant_id" db:"merchant_id"`
	Name         string     `json:"name" db:"name"`
	Subdomain    string     `json:"subdomain" db:"subdomain"`
	CustomDomain *string    `json:"custom_domain,omitempty" db:"custom_domain"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// TeamMember grants a merchant access to a store. A merchant holds at most
// one membership per store.
type TeamMember struct {
	ID          string       `json:"id" db:"id"`
	StoreID     string       `json:"store_id" db:"store_id"`
	MerchantID  string       `json:"merchant_id" db:"merchant_id"`
	Role        Role         `json:"role" db:"role"`
	Status      MemberStatus `json:"status" db:"status"`
	InviteToken *string      `json:"invite_token,omitempty" db:"invite_token"`
	InvitedAt   time.Time    `json:"invited_at" db:"invited_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty" db:"accepted_at"`
}

// User is a shopper of one store. Email is unique per store only.
type User struct {
	ID        string    `json:"id" db:"id"`
	StoreID   string    `json:"store_id" db:"store_id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may invite or remove members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// IsLive reports whether the subscription still grants access.
func (s *Subscription) IsLive(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive, SubscriptionPastDue:
		return true
	case SubscriptionTrialing:
		return s.TrialEndsAt == nil || now.Before(*s.TrialEndsAt)
	}
	return false
}
