// internal/handlers/commerce/commerce_handler.go
package commerce

import (
	"net/http"

	"storefront-crm/internal/domain/commerce"
	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/response"
	service "storefront-crm/internal/service/commerce"

	"github.com/gin-gonic/gin"
)

type CommerceHandler struct {
	commerceService *service.CommerceService
}

func NewCommerceHandler(commerceService *service.CommerceService) *CommerceHandler {
	return &CommerceHandler{commerceService: commerceService}
}

func (h *CommerceHandler) CreateOrder(c *gin.Context) {
	var req commerce.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	order, err := h.commerceService.CreateOrder(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create order", err)
		return
	}
	response.Success(c, http.StatusCreated, "order created successfully", order)
}

func (h *CommerceHandler) ListOrders(c *gin.Context) {
	var filters commerce.OrderListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	orders, err := h.commerceService.ListOrders(c.Request.Context(), middleware.MustGetStoreID(c), filters)
	if err != nil {
		response.FromError(c, "failed to list orders", err)
		return
	}
	response.Success(c, http.StatusOK, "orders retrieved", orders)
}

func (h *CommerceHandler) GetOrder(c *gin.Context) {
	order, err := h.commerceService.GetOrder(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to load order", err)
		return
	}
	response.Success(c, http.StatusOK, "order retrieved", order)
}

func (h *CommerceHandler) RecordPayment(c *gin.Context) {
	var req commerce.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	payment, err := h.commerceService.RecordPayment(c.Request.Context(), middleware.MustGetStoreID(c), &req)
	if err != nil {
		response.FromError(c, "failed to record payment", err)
		return
	}
	response.Success(c, http.StatusCreated, "payment recorded", payment)
}

func (h *CommerceHandler) ListPayments(c *gin.Context) {
	payments, err := h.commerceService.ListPayments(c.Request.Context(), middleware.MustGetStoreID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}
	response.Success(c, http.StatusOK, "payments retrieved", payments)
}
