package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type PaymentProfileHandler struct {
	consumerService *services.ConsumerService
}

func NewPaymentProfileHandler(consumerService *services.ConsumerService) *PaymentProfileHandler {
	return &PaymentProfileHandler{consumerService: consumerService}
}

type AddPaymentProfileRequest struct {
	Method   string  `json:"method" binding:"required,oneof=card ach"`
	Merchant string  `json:"merchant" binding:"required,oneof=authorize_net stripe tilled usaepay"`
	Token    string  `json:"token" binding:"required"`
	Last4    string  `json:"last4"`
	Expiry   *string `json:"expiry"`
	BankName *string `json:"bank_name"`
}

// @Summary Add Payment Profile
// @Description Store a tokenized payment method for a consumer account
// @Tags Payment Profiles
// @Accept json
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Param request body AddPaymentProfileRequest true "Tokenized Payment Method"
// @Success 201 {object} models.PaymentProfile
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/payment_profiles [post]
func (h *PaymentProfileHandler) Create(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	var req AddPaymentProfileRequest
	if err := BindNestedOrFlat(c, "payment_profile", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment profile payload"})
		return
	}
	if req.Method == "" || req.Merchant == "" || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Method, merchant and token are required"})
		return
	}

	profile := &models.PaymentProfile{
		ConsumerID: uint(id),
		Method:     req.Method,
		Merchant:   req.Merchant,
		Token:      req.Token,
		Last4:      req.Last4,
		Expiry:     req.Expiry,
		BankName:   req.BankName,
	}

	if err := h.consumerService.AddPaymentProfile(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_profile": profile})
}

// @Summary Remove Payment Profile
// @Description Remove a stored payment method from a consumer account
// @Tags Payment Profiles
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Param profile_id path int true "Payment Profile ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/payment_profiles/{profile_id} [delete]
func (h *PaymentProfileHandler) Delete(c *gin.Context) {
	consumerID, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	profileID, _ := strconv.ParseUint(c.Param("profile_id"), 10, 32)

	if err := h.consumerService.RemovePaymentProfile(c.Request.Context(), uint(consumerID), uint(profileID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment profile removed"})
}
