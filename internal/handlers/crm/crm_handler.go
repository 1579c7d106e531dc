// internal/handlers/crm/crm_handler.go
package crm

import (
	"context"
	"net/http"

	"storefront-crm/internal/crmview"
	"storefront-crm/internal/domain/crm"
	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CRMService is the slice of *crm.CRMService the handler uses.
type CRMService interface {
	CreateContact(ctx context.Context, storeID string, req *crm.CreateContactRequest) (*crm.Contact, error)
	GetContact(ctx context.Context, storeID, id string) (*crmview.EnrichedContact, error)
	ListContacts(ctx context.Context, storeID string, stage crmview.ContactStage) ([]crmview.EnrichedContact, error)
	UpdateContact(ctx context.Context, storeID, id string, req *crm.UpdateContactRequest) (*crm.Contact, error)
	DeleteContact(ctx context.Context, storeID, id string) error

	CreateLead(ctx context.Context, storeID string, req *crm.CreateLeadRequest) (*crm.Lead, error)
	GetLead(ctx context.Context, storeID, id string) (*crmview.EnrichedLead, error)
	ListLeads(ctx context.Context, storeID string, f crm.LeadListFilters) ([]crmview.EnrichedLead, error)
	UpdateLeadStatus(ctx context.Context, storeID, id string, status crm.LeadStatus) (*crm.Lead, error)
	UpdateLeadScore(ctx context.Context, storeID, id string, score int) (*crm.Lead, error)
	MarkContacted(ctx context.Context, storeID, actorID, id string, req *crm.MarkContactedRequest) (*crm.Lead, error)
	ConvertLead(ctx context.Context, storeID, actorID, id string, req *crm.ConvertLeadRequest) (*crmview.EnrichedLead, error)

	CreateDeal(ctx context.Context, storeID string, req *crm.CreateDealRequest) (*crm.Deal, error)
	GetDeal(ctx context.Context, storeID, id string) (*crmview.EnrichedDeal, error)
	ListDeals(ctx context.Context, storeID string, f crm.DealListFilters) ([]crmview.EnrichedDeal, error)
	MoveDealStage(ctx context.Context, storeID, actorID, id string, req *crm.MoveDealStageRequest) (*crm.Deal, error)

	LogActivity(ctx context.Context, storeID, actorID string, req *crm.LogActivityRequest) (*crm.Activity, error)
	ContactTimeline(ctx context.Context, storeID, contactID string) ([]crm.Activity, error)
	LeadTimeline(ctx context.Context, storeID, leadID string) ([]crm.Activity, error)
	DealTimeline(ctx context.Context, storeID, dealID string) ([]crm.Activity, error)

	Dashboard(ctx context.Context, storeID string) (*crmview.Dashboard, error)
	LeadStats(ctx context.Context, storeID string) (*crmview.LeadStats, error)
	DealStats(ctx context.Context, storeID string) (*crmview.DealStats, error)
	ContactStats(ctx context.Context, storeID string) (*crmview.ContactStats, error)
	Funnel(ctx context.Context, storeID string) (*crmview.ConversionFunnel, error)
}

type CRMHandler struct {
	crmService CRMService
}

func NewCRMHandler(crmService CRMService) *CRMHandler {
	return &CRMHandler{crmService: crmService}
}

// respond writes the service result, or maps its error to a status.
func respond(c *gin.Context, status int, message string, data interface{}, err error) {
	if err != nil {
		response.FromError(c, "failed to "+message, err)
		return
	}
	response.Success(c, status, message, data)
}

// ========== Contacts ==========

func (h *CRMHandler) CreateContact(c *gin.Context) {
	var req crm.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	contact, err := h.crmService.CreateContact(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	respond(c, http.StatusCreated, "create contact", contact, err)
}

func (h *CRMHandler) GetContact(c *gin.Context) {
	contact, err := h.crmService.GetContact(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "get contact", contact, err)
}

// ListContacts accepts an optional ?stage= of contact, lead, deal or customer.
func (h *CRMHandler) ListContacts(c *gin.Context) {
	stage := crmview.ContactStage(c.Query("stage"))
	if stage != "" && !validStage(stage) {
		response.Error(c, http.StatusBadRequest, "unknown stage", nil)
		return
	}
	contacts, err := h.crmService.ListContacts(c.Request.Context(), middleware.MustGetStoreID(c), stage)
	respond(c, http.StatusOK, "list contacts", contacts, err)
}

func validStage(s crmview.ContactStage) bool {
	for _, known := range crmview.ContactStages {
		if s == known {
			return true
		}
	}
	return false
}

func (h *CRMHandler) UpdateContact(c *gin.Context) {
	var req crm.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	contact, err := h.crmService.UpdateContact(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"), &req)
	respond(c, http.StatusOK, "update contact", contact, err)
}

func (h *CRMHandler) DeleteContact(c *gin.Context) {
	err := h.crmService.DeleteContact(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "delete contact", nil, err)
}

func (h *CRMHandler) ContactTimeline(c *gin.Context) {
	activities, err := h.crmService.ContactTimeline(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "load timeline", activities, err)
}

// ========== Leads ==========

func (h *CRMHandler) CreateLead(c *gin.Context) {
	var req crm.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	lead, err := h.crmService.CreateLead(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	respond(c, http.StatusCreated, "create lead", lead, err)
}

func (h *CRMHandler) GetLead(c *gin.Context) {
	lead, err := h.crmService.GetLead(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "get lead", lead, err)
}

func (h *CRMHandler) ListLeads(c *gin.Context) {
	var filters crm.LeadListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}
	leads, err := h.crmService.ListLeads(c.Request.Context(), middleware.MustGetStoreID(c), filters)
	respond(c, http.StatusOK, "list leads", leads, err)
}

func (h *CRMHandler) UpdateLeadStatus(c *gin.Context) {
	var req crm.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	lead, err := h.crmService.UpdateLeadStatus(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"), req.Status)
	respond(c, http.StatusOK, "update lead status", lead, err)
}

func (h *CRMHandler) UpdateLeadScore(c *gin.Context) {
	var req crm.UpdateLeadScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	lead, err := h.crmService.UpdateLeadScore(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"), req.Score)
	respond(c, http.StatusOK, "update lead score", lead, err)
}

func (h *CRMHandler) MarkContacted(c *gin.Context) {
	var req crm.MarkContactedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	lead, err := h.crmService.MarkContacted(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), c.Param("id"), &req)
	respond(c, http.StatusOK, "mark lead contacted", lead, err)
}

func (h *CRMHandler) ConvertLead(c *gin.Context) {
	var req crm.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	lead, err := h.crmService.ConvertLead(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), c.Param("id"), &req)
	respond(c, http.StatusOK, "convert lead", lead, err)
}

func (h *CRMHandler) LeadTimeline(c *gin.Context) {
	activities, err := h.crmService.LeadTimeline(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "load timeline", activities, err)
}

// ========== Deals ==========

func (h *CRMHandler) CreateDeal(c *gin.Context) {
	var req crm.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	deal, err := h.crmService.CreateDeal(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	respond(c, http.StatusCreated, "create deal", deal, err)
}

func (h *CRMHandler) GetDeal(c *gin.Context) {
	deal, err := h.crmService.GetDeal(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "get deal", deal, err)
}

func (h *CRMHandler) ListDeals(c *gin.Context) {
	var filters crm.DealListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}
	deals, err := h.crmService.ListDeals(c.Request.Context(), middleware.MustGetStoreID(c), filters)
	respond(c, http.StatusOK, "list deals", deals, err)
}

func (h *CRMHandler) MoveDealStage(c *gin.Context) {
	var req crm.MoveDealStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	deal, err := h.crmService.MoveDealStage(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), c.Param("id"), &req)
	respond(c, http.StatusOK, "move deal", deal, err)
}

func (h *CRMHandler) DealTimeline(c *gin.Context) {
	activities, err := h.crmService.DealTimeline(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	respond(c, http.StatusOK, "load timeline", activities, err)
}

// ========== Activities ==========

func (h *CRMHandler) LogActivity(c *gin.Context) {
	var req crm.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	activity, err := h.crmService.LogActivity(c.Request.Context(), middleware.MustGetStoreID(c), middleware.MustGetMerchantID(c), &req)
	respond(c, http.StatusCreated, "log activity", activity, err)
}

// ========== Analytics ==========

func (h *CRMHandler) Dashboard(c *gin.Context) {
	d, err := h.crmService.Dashboard(c.Request.Context(), middleware.MustGetStoreID(c))
	respond(c, http.StatusOK, "load dashboard", d, err)
}

func (h *CRMHandler) LeadStats(c *gin.Context) {
	s, err := h.crmService.LeadStats(c.Request.Context(), middleware.MustGetStoreID(c))
	respond(c, http.StatusOK, "load lead stats", s, err)
}

func (h *CRMHandler) DealStats(c *gin.Context) {
	s, err := h.crmService.DealStats(c.Request.Context(), middleware.MustGetStoreID(c))
	respond(c, http.StatusOK, "load deal stats", s, err)
}

func (h *CRMHandler) ContactStats(c *gin.Context) {
	s, err := h.crmService.ContactStats(c.Request.Context(), middleware.MustGetStoreID(c))
	respond(c, http.StatusOK, "load contact stats", s, err)
}

func (h *CRMHandler) Funnel(c *gin.Context) {
	f, err := h.crmService.Funnel(c.Request.Context(), middleware.MustGetStoreID(c))
	respond(c, http.StatusOK, "load funnel", f, err)
}
