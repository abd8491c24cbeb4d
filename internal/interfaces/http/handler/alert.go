package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/quickcart/backend/internal/application/notification"
)

// AlertHandler handles the seller alert feed API endpoints
type AlertHandler struct {
	BaseHandler
	alertService *notificationapp.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *notificationapp.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// ListAlerts handles GET /seller/alerts.
// The feed is pull-based: by default only unacknowledged entries are
// returned, newest first. An order_id filter returns every alert raised for
// that order regardless of acknowledgement.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	if orderIDStr := c.Query("order_id"); orderIDStr != "" {
		orderID, err := uuid.Parse(orderIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid order ID")
			return
		}
		alerts, err := h.alertService.OrderAlerts(ctx, orderID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, alerts)
		return
	}

	if acknowledged := c.Query("acknowledged"); acknowledged != "" && acknowledged != "false" {
		h.BadRequest(c, "Only acknowledged=false is supported; use order_id to read the full history of one order")
		return
	}

	alerts, err := h.alertService.OpenAlerts(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// AcknowledgeAlert handles POST /seller/alerts/:alertID/ack.
// Idempotent: acknowledging twice keeps the first acknowledgement time.
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("alertID"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.alertService.Acknowledge(c.Request.Context(), alertID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alert)
}
