package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dispatchapp "github.com/quickcart/backend/internal/application/dispatch"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/interfaces/http/dto"
)

// PartnerHandler handles delivery partner API endpoints: presence reporting
// and claim submission from the partner alarm client.
type PartnerHandler struct {
	BaseHandler
	registryService *dispatchapp.PartnerRegistryService
	claimService    *dispatchapp.ClaimService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(registryService *dispatchapp.PartnerRegistryService, claimService *dispatchapp.ClaimService) *PartnerHandler {
	return &PartnerHandler{
		registryService: registryService,
		claimService:    claimService,
	}
}

// RegisterPartnerRequest enrolls a new delivery partner
type RegisterPartnerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// Register handles POST /partners
func (h *PartnerHandler) Register(c *gin.Context) {
	var req RegisterPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partner, err := h.registryService.Register(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, partner)
}

// PartnerStatusRequest reports a partner's presence. When going online the
// messaging token is required so offers can be pushed to the device.
type PartnerStatusRequest struct {
	PartnerID      string `json:"partner_id" binding:"required,uuid"`
	IsOnline       bool   `json:"is_online"`
	MessagingToken string `json:"messaging_token"`
}

// UpdateStatus handles POST /partner/status
func (h *PartnerHandler) UpdateStatus(c *gin.Context) {
	var req PartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid partner ID")
		return
	}
	c.Set("partner_id", partnerID.String())

	ctx := c.Request.Context()
	if req.IsOnline {
		err = h.registryService.SetOnline(ctx, partnerID, req.MessagingToken)
	} else {
		err = h.registryService.SetOffline(ctx, partnerID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	partner, err := h.registryService.GetByID(ctx, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// RefreshTokenRequest rotates a partner's messaging token
type RefreshTokenRequest struct {
	PartnerID      string `json:"partner_id" binding:"required,uuid"`
	MessagingToken string `json:"messaging_token" binding:"required"`
}

// RefreshToken handles POST /partner/token
func (h *PartnerHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid partner ID")
		return
	}
	c.Set("partner_id", partnerID.String())

	if err := h.registryService.RefreshToken(c.Request.Context(), partnerID, req.MessagingToken); err != nil {
		h.HandleError(c, err)
		return
	}

	partner, err := h.registryService.GetByID(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// GetPartner handles GET /partners/:partnerID
func (h *PartnerHandler) GetPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("partnerID"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID")
		return
	}

	partner, err := h.registryService.GetByID(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// AcceptOrderRequest is one claim submission from the alarm client
type AcceptOrderRequest struct {
	PartnerID       string `json:"partner_id" binding:"required,uuid"`
	DispatchAttempt int    `json:"dispatch_attempt" binding:"required,min=1"`
}

// AcceptOrderResponse reports the winning arbitration result
type AcceptOrderResponse struct {
	Outcome string `json:"outcome"`
	OrderID string `json:"order_id"`
}

// AcceptOrder handles POST /partner/orders/:orderID/accept.
// Exactly one concurrent submission per offer round wins; losers receive
// 409 with a LOST_* code explaining why the offer is gone.
func (h *PartnerHandler) AcceptOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req AcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid partner ID")
		return
	}
	c.Set("partner_id", partnerID.String())

	outcome, err := h.claimService.SubmitClaim(c.Request.Context(), orderID, partnerID, req.DispatchAttempt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if outcome.Won() {
		h.Success(c, AcceptOrderResponse{
			Outcome: outcome.String(),
			OrderID: orderID.String(),
		})
		return
	}

	requestID := getRequestID(c)
	c.JSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
		outcome.String(),
		lossMessage(outcome),
		requestID,
	))
}

// lossMessage explains a losing claim outcome to the alarm client
func lossMessage(outcome dispatch.ClaimOutcome) string {
	switch outcome {
	case dispatch.ClaimOutcomeLostAlreadyAssigned:
		return "Another partner already claimed this order"
	case dispatch.ClaimOutcomeLostExpired:
		return "The offer window for this order has expired"
	case dispatch.ClaimOutcomeLostOfferSuperseded:
		return "A newer dispatch round replaced this offer"
	default:
		return "The claim was not accepted"
	}
}
