package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dispatchapp "github.com/quickcart/backend/internal/application/dispatch"
)

// OrderHandler handles dispatch order API endpoints
type OrderHandler struct {
	BaseHandler
	dispatcherService *dispatchapp.DispatcherService
	claimService      *dispatchapp.ClaimService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(dispatcherService *dispatchapp.DispatcherService, claimService *dispatchapp.ClaimService) *OrderHandler {
	return &OrderHandler{
		dispatcherService: dispatcherService,
		claimService:      claimService,
	}
}

// RegisterOrder handles POST /orders.
// The order-management system registers a paid order as ready for dispatch.
func (h *OrderHandler) RegisterOrder(c *gin.Context) {
	var req dispatchapp.RegisterOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.dispatcherService.RegisterOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetOrder handles GET /orders/:orderID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.dispatcherService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UnassignedOrders handles GET /orders/unassigned.
// Lists orders parked after an offer round expired unclaimed, oldest first.
func (h *OrderHandler) UnassignedOrders(c *gin.Context) {
	orders, err := h.dispatcherService.UnassignedOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// Dispatch handles POST /orders/:orderID/dispatch.
// Starts a new offer round for the order, bumping the dispatch attempt.
func (h *OrderHandler) Dispatch(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	offer, err := h.dispatcherService.Dispatch(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, offer)
}

// ClaimAuditTrail handles GET /orders/:orderID/claims.
// Returns the append-only claim log for race reconstruction.
func (h *OrderHandler) ClaimAuditTrail(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	attempts, err := h.claimService.AuditTrail(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, attempts)
}
