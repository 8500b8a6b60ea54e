package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type NegotiationHandler struct {
	negotiationService *services.NegotiationService
}

func NewNegotiationHandler(negotiationService *services.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiationService: negotiationService}
}

// @Summary Get Negotiation
// @Description Get the current negotiation for a consumer account
// @Tags Negotiations
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.NegotiationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/negotiation [get]
func (h *NegotiationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	negotiation, err := h.negotiationService.FindByConsumer(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Negotiation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": negotiation.ToResponse()})
}

// @Summary Pending Negotiations
// @Description List offers awaiting the creditor's review
// @Tags Negotiations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /negotiations/pending [get]
func (h *NegotiationHandler) Pending(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	negotiations, total, err := h.negotiationService.ListPending(c.Request.Context(),
		middleware.GetCompanyID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, negotiation := range negotiations {
		responses = append(responses, negotiation.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"negotiations": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Submit Offer
// @Description Submit a consumer settlement or installment offer. Offers at or above the creditor terms are approved immediately.
// @Tags Negotiations
// @Accept json
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Param request body services.OfferRequest true "Offer Details"
// @Success 201 {object} models.NegotiationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/offers [post]
func (h *NegotiationHandler) SubmitOffer(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	var req services.OfferRequest
	if err := BindNestedOrFlat(c, "offer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer payload"})
		return
	}
	if req.NegotiationType == "" || req.Amount <= 0 || req.FirstPayDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Negotiation type, amount and first payment date are required"})
		return
	}

	negotiation, err := h.negotiationService.SubmitOffer(c.Request.Context(), uint(id), &req,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"negotiation": negotiation.ToResponse()})
}

// @Summary Counter Offer
// @Description Record the creditor's counter to a pending consumer offer
// @Tags Negotiations
// @Accept json
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Param request body services.CounterRequest true "Counter Details"
// @Success 200 {object} models.NegotiationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/negotiation/counter [post]
func (h *NegotiationHandler) Counter(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	var req services.CounterRequest
	if err := BindNestedOrFlat(c, "counter", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid counter payload"})
		return
	}
	if req.Amount <= 0 || req.FirstPayDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount and first payment date are required"})
		return
	}

	negotiation, err := h.negotiationService.SubmitCounterOffer(c.Request.Context(), uint(id), &req,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": negotiation.ToResponse()})
}

// @Summary Accept Offer
// @Description Accept the pending side of the negotiation and generate the payment schedule
// @Tags Negotiations
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.NegotiationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/negotiation/accept [post]
func (h *NegotiationHandler) Accept(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	negotiation, err := h.negotiationService.AcceptOffer(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": negotiation.ToResponse()})
}

// @Summary Decline Offer
// @Description Decline the pending offer
// @Tags Negotiations
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.NegotiationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/negotiation/decline [post]
func (h *NegotiationHandler) Decline(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	negotiation, err := h.negotiationService.DeclineOffer(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": negotiation.ToResponse()})
}
