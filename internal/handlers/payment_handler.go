package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary List Transactions
// @Description Get a paginated list of payment transactions for the actor's company
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /transactions [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	transactions, total, err := h.paymentService.ListTransactions(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range transactions {
		responses = append(responses, transactions[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Recent Transactions
// @Description Get the latest transaction per consumer for the actor's company
// @Tags Payments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /transactions/recent [get]
func (h *PaymentHandler) Recent(c *gin.Context) {
	transactions, err := h.paymentService.LatestTransactionPerConsumer(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range transactions {
		responses = append(responses, transactions[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"transactions": responses})
}

// @Summary Consumer Transactions
// @Description Get the payment history for a consumer account
// @Tags Payments
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /consumers/{consumer_id}/transactions [get]
func (h *PaymentHandler) ConsumerTransactions(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	transactions, err := h.paymentService.TransactionsForConsumer(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range transactions {
		responses = append(responses, transactions[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"transactions": responses})
}
