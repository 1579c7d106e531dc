// internal/app/router.go
package app

import (
	"net/http"

	"storefront-crm/internal/domain/tenant"
	catalogHandler "storefront-crm/internal/handlers/catalog"
	commerceHandler "storefront-crm/internal/handlers/commerce"
	crmHandler "storefront-crm/internal/handlers/crm"
	sessionHandler "storefront-crm/internal/handlers/session"
	tenantHandler "storefront-crm/internal/handlers/tenant"
	wsHandler "storefront-crm/internal/handlers/websocket"
	"storefront-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	TenantHandler   *tenantHandler.TenantHandler
	CatalogHandler  *catalogHandler.CatalogHandler
	CommerceHandler *commerceHandler.CommerceHandler
	CRMHandler      *crmHandler.CRMHandler
	SessionHandler  *sessionHandler.SessionHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimit       gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Merchant Routes ====================
	authed := api.Group("")
	authed.Use(h.AuthMiddleware.Auth(), h.RateLimit)
	{
		authed.GET("/me", h.TenantHandler.GetMe)
		authed.POST("/me/logout", h.SessionHandler.Logout)
		authed.GET("/me/subscription", h.TenantHandler.GetSubscription)
		authed.PUT("/me/subscription/plan", h.TenantHandler.ChangePlan)
		authed.POST("/me/subscription/cancel", h.TenantHandler.CancelSubscription)

		authed.POST("/stores", h.TenantHandler.CreateStore)
		authed.GET("/stores", h.TenantHandler.ListStores)
		authed.POST("/invites/accept", h.TenantHandler.AcceptInvite)
	}

	// ==================== Store-Scoped Routes ====================
	store := api.Group("/stores/:store_id")
	store.Use(h.AuthMiddleware.StoreScoped()...)
	store.Use(h.RateLimit)
	managers := h.AuthMiddleware.RequireRole(tenant.RoleOwner, tenant.RoleAdmin)
	owners := h.AuthMiddleware.RequireRole(tenant.RoleOwner)

	store.GET("", h.TenantHandler.GetStore)
	store.PUT("", managers, h.TenantHandler.UpdateStore)
	store.DELETE("", owners, h.TenantHandler.DeleteStore)
	store.GET("/ws/stats", h.WSHandler.GetStats)

	members := store.Group("/members")
	{
		members.GET("", h.TenantHandler.ListMembers)
		members.POST("", managers, h.TenantHandler.InviteMember)
		members.DELETE("/:merchant_id", managers, h.TenantHandler.RemoveMember)
	}

	customers := store.Group("/customers")
	{
		customers.POST("", h.TenantHandler.CreateCustomer)
		customers.GET("", h.TenantHandler.ListCustomers)
		customers.GET("/:id", h.TenantHandler.GetCustomer)
	}

	products := store.Group("/products")
	{
		products.POST("", h.CatalogHandler.CreateProduct)
		products.GET("", h.CatalogHandler.ListProducts)
		products.GET("/:id", h.CatalogHandler.GetProduct)
		products.DELETE("/:id", managers, h.CatalogHandler.DeleteProduct)
		products.POST("/:id/categories", h.CatalogHandler.AssignCategory)
	}

	categories := store.Group("/categories")
	{
		categories.POST("", h.CatalogHandler.CreateCategory)
		categories.GET("", h.CatalogHandler.ListCategories)
	}

	orders := store.Group("/orders")
	{
		orders.POST("", h.CommerceHandler.CreateOrder)
		orders.GET("", h.CommerceHandler.ListOrders)
		orders.GET("/:id", h.CommerceHandler.GetOrder)
		orders.POST("/:id/payments", h.CommerceHandler.RecordPayment)
		orders.GET("/:id/payments", h.CommerceHandler.ListPayments)
	}

	contacts := store.Group("/contacts")
	{
		contacts.POST("", h.CRMHandler.CreateContact)
		contacts.GET("", h.CRMHandler.ListContacts)
		contacts.GET("/:id", h.CRMHandler.GetContact)
		contacts.PUT("/:id", h.CRMHandler.UpdateContact)
		contacts.DELETE("/:id", managers, h.CRMHandler.DeleteContact)
		contacts.GET("/:id/timeline", h.CRMHandler.ContactTimeline)
	}

	leads := store.Group("/leads")
	{
		leads.POST("", h.CRMHandler.CreateLead)
		leads.GET("", h.CRMHandler.ListLeads)
		leads.GET("/:id", h.CRMHandler.GetLead)
		leads.PUT("/:id/status", h.CRMHandler.UpdateLeadStatus)
		leads.PUT("/:id/score", h.CRMHandler.UpdateLeadScore)
		leads.POST("/:id/contacted", h.CRMHandler.MarkContacted)
		leads.POST("/:id/convert", h.CRMHandler.ConvertLead)
		leads.GET("/:id/timeline", h.CRMHandler.LeadTimeline)
	}

	deals := store.Group("/deals")
	{
		deals.POST("", h.CRMHandler.CreateDeal)
		deals.GET("", h.CRMHandler.ListDeals)
		deals.GET("/:id", h.CRMHandler.GetDeal)
		deals.PUT("/:id/stage", h.CRMHandler.MoveDealStage)
		deals.GET("/:id/timeline", h.CRMHandler.DealTimeline)
	}

	store.POST("/activities", h.CRMHandler.LogActivity)

	analytics := store.Group("/analytics")
	{
		analytics.GET("/dashboard", h.CRMHandler.Dashboard)
		analytics.GET("/leads", h.CRMHandler.LeadStats)
		analytics.GET("/deals", h.CRMHandler.DealStats)
		analytics.GET("/contacts", h.CRMHandler.ContactStats)
		analytics.GET("/funnel", h.CRMHandler.Funnel)
	}
}
