// internal/handlers/tenant/tenant_handler.go
package tenant

import (
	"context"
	"net/http"

	"storefront-crm/internal/domain/tenant"
	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantService is the slice of *tenant.TenantService the handler uses.
type TenantService interface {
	GetMerchant(ctx context.Context, merchantID string) (*tenant.Merchant, error)
	GetSubscription(ctx context.Context, merchantID string) (*tenant.Subscription, error)
	ChangePlan(ctx context.Context, merchantID string, plan tenant.Plan) (*tenant.Subscription, error)
	CancelSubscription(ctx context.Context, merchantID string, atPeriodEnd bool) (*tenant.Subscription, error)

	CreateStore(ctx context.Context, merchantID string, req *tenant.CreateStoreRequest) (*tenant.Store, error)
	ListStores(ctx context.Context, merchantID string) ([]tenant.Store, error)
	GetStore(ctx context.Context, storeID string) (*tenant.Store, error)
	UpdateStore(ctx context.Context, storeID, actorID string, req *tenant.UpdateStoreRequest) (*tenant.Store, error)
	DeleteStore(ctx context.Context, storeID, actorID string) error

	InviteMember(ctx context.Context, storeID, actorID string, req *tenant.InviteMemberRequest) (*tenant.TeamMember, error)
	AcceptInvite(ctx context.Context, merchantID, token string) (*tenant.TeamMember, error)
	RemoveMember(ctx context.Context, storeID, actorID, merchantID string) error
	ListMembers(ctx context.Context, storeID string) ([]tenant.TeamMember, error)

	CreateCustomer(ctx context.Context, storeID string, req *tenant.CreateUserRequest) (*tenant.User, error)
	GetCustomer(ctx context.Context, storeID, userID string) (*tenant.User, error)
	ListCustomers(ctx context.Context, storeID string) ([]tenant.User, error)
}

type TenantHandler struct {
	tenantService TenantService
}

func NewTenantHandler(tenantService TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// ========== Merchant Endpoints ==========

func (h *TenantHandler) GetMe(c *gin.Context) {
	merchant, err := h.tenantService.GetMerchant(c.Request.Context(), middleware.MustGetMerchantID(c))
	if err != nil {
		response.FromError(c, "failed to load merchant", err)
		return
	}
	response.Success(c, http.StatusOK, "merchant retrieved", merchant)
}

func (h *TenantHandler) GetSubscription(c *gin.Context) {
	sub, err := h.tenantService.GetSubscription(c.Request.Context(), middleware.MustGetMerchantID(c))
	if err != nil {
		response.FromError(c, "failed to load subscription", err)
		return
	}
	response.Success(c, http.StatusOK, "subscription retrieved", sub)
}

func (h *TenantHandler) ChangePlan(c *gin.Context) {
	var req tenant.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sub, err := h.tenantService.ChangePlan(c.Request.Context(), middleware.MustGetMerchantID(c), req.Plan)
	if err != nil {
		response.FromError(c, "failed to change plan", err)
		return
	}
	response.Success(c, http.StatusOK, "plan changed", sub)
}

func (h *TenantHandler) CancelSubscription(c *gin.Context) {
	var req tenant.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sub, err := h.tenantService.CancelSubscription(c.Request.Context(), middleware.MustGetMerchantID(c), req.AtPeriodEnd)
	if err != nil {
		response.FromError(c, "failed to cancel subscription", err)
		return
	}
	response.Success(c, http.StatusOK, "subscription canceled", sub)
}

func (h *TenantHandler) AcceptInvite(c *gin.Context) {
	var req tenant.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	member, err := h.tenantService.AcceptInvite(c.Request.Context(), middleware.MustGetMerchantID(c), req.Token)
	if err != nil {
		response.FromError(c, "failed to accept invite", err)
		return
	}
	response.Success(c, http.StatusOK, "invite accepted", member)
}

// ========== Store Endpoints ==========

func (h *TenantHandler) CreateStore(c *gin.Context) {
	var req tenant.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	store, err := h.tenantService.CreateStore(c.Request.Context(), middleware.MustGetMerchantID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create store", err)
		return
	}
	response.Success(c, http.StatusCreated, "store created successfully", store)
}

func (h *TenantHandler) ListStores(c *gin.Context) {
	stores, err := h.tenantService.ListStores(c.Request.Context(), middleware.MustGetMerchantID(c))
	if err != nil {
		response.FromError(c, "failed to list stores", err)
		return
	}
	response.Success(c, http.StatusOK, "stores retrieved", stores)
}

func (h *TenantHandler) GetStore(c *gin.Context) {
	store, err := h.tenantService.GetStore(c.Request.Context(), middleware.MustGetStoreID(c))
	if err != nil {
		response.FromError(c, "failed to load store", err)
		return
	}
	response.Success(c, http.StatusOK, "store retrieved", store)
}

func (h *TenantHandler) UpdateStore(c *gin.Context) {
	var req tenant.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	store, err := h.tenantService.UpdateStore(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), &req)
	if err != nil {
		response.FromError(c, "failed to update store", err)
		return
	}
	response.Success(c, http.StatusOK, "store updated", store)
}

func (h *TenantHandler) DeleteStore(c *gin.Context) {
	if err := h.tenantService.DeleteStore(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c)); err != nil {
		response.FromError(c, "failed to delete store", err)
		return
	}
	response.Success(c, http.StatusOK, "store deleted", nil)
}

// ========== Team Endpoints ==========

func (h *TenantHandler) ListMembers(c *gin.Context) {
	members, err := h.tenantService.ListMembers(c.Request.Context(), middleware.MustGetStoreID(c))
	if err != nil {
		response.FromError(c, "failed to list members", err)
		return
	}
	response.Success(c, http.StatusOK, "members retrieved", members)
}

func (h *TenantHandler) InviteMember(c *gin.Context) {
	var req tenant.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	member, err := h.tenantService.InviteMember(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), &req)
	if err != nil {
		response.FromError(c, "failed to invite member", err)
		return
	}
	response.Success(c, http.StatusCreated, "member invited", member)
}

func (h *TenantHandler) RemoveMember(c *gin.Context) {
	err := h.tenantService.RemoveMember(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), c.Param("merchant_id"))
	if err != nil {
		response.FromError(c, "failed to remove member", err)
		return
	}
	response.Success(c, http.StatusOK, "member removed", nil)
}

// ========== Customer Endpoints ==========

func (h *TenantHandler) CreateCustomer(c *gin.Context) {
	var req tenant.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.tenantService.CreateCustomer(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create customer", err)
		return
	}
	response.Success(c, http.StatusCreated, "customer created successfully", user)
}

func (h *TenantHandler) GetCustomer(c *gin.Context) {
	user, err := h.tenantService.GetCustomer(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to load customer", err)
		return
	}
	response.Success(c, http.StatusOK, "customer retrieved", user)
}

func (h *TenantHandler) ListCustomers(c *gin.Context) {
	users, err := h.tenantService.ListCustomers(c.Request.Context(), middleware.MustGetStoreID(c))
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}
	response.Success(c, http.StatusOK, "customers retrieved", users)
}
