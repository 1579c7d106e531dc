// internal/domain/tenant/dto.go
package tenant

type CreateMerchantRequest struct {
	Email string `json:"email" binding:"required,email,max=255" yaml:"email"`
	Phone string `json:"phone" binding:"omitempty,max=32" yaml:"phone"`
	Name  string `json:"name" binding:"required,max=255" yaml:"name"`
}

type ChangePlanRequest struct {
	Plan Plan `json:"plan" binding:"required,oneof=free starter pro enterprise"`
}

type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

type CreateStoreRequest struct {
	Name         string `json:"name" binding:"required,max=255" yaml:"name"`
	Subdomain    string `json:"subdomain" binding:"required,min=3,max=63" yaml:"subdomain"`
	CustomDomain string `json:"custom_domain" binding:"omitempty,max=255" yaml:"custom_domain"`
}

type UpdateStoreRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=255"`
	Subdomain    *string `json:"subdomain" binding:"omitempty,min=3,max=63"`
	CustomDomain *string `json:"custom_domain" binding:"omitempty,max=255"`
}

type InviteMemberRequest struct {
	MerchantID string `json:"merchant_id" binding:"required"`
	Role       Role   `json:"role" binding:"required,oneof=admin member"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email,max=255" yaml:"email"`
	Name  string `json:"name" binding:"required,max=255" yaml:"name"`
	Phone string `json:"phone" binding:"omitempty,max=32" yaml:"phone"`
}

type ProvisionResult struct {
	Merchant     *Merchant     `json:"merchant"`
	Subscription *Subscription `json:"subscription"`
}
