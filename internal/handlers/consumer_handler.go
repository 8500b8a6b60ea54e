package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type ConsumerHandler struct {
	consumerService *services.ConsumerService
	offerService    *services.OfferService
}

func NewConsumerHandler(consumerService *services.ConsumerService, offerService *services.OfferService) *ConsumerHandler {
	return &ConsumerHandler{
		consumerService: consumerService,
		offerService:    offerService,
	}
}

// @Summary List Consumers
// @Description Get a paginated list of consumer accounts for the actor's company
// @Tags Consumers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param search query string false "Search account number, name or email"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /consumers [get]
func (h *ConsumerHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.Filters["status"] = c.Query("status")
	query.Filters["subclient_id"] = c.Query("subclient_id")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	consumers, total, err := h.consumerService.List(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, consumer := range consumers {
		responses = append(responses, consumer.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"consumers": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Consumer
// @Description Get a consumer account by ID with negotiation and profiles
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id} [get]
func (h *ConsumerHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	consumer, err := h.consumerService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Consumer not found"})
		return
	}

	resp := gin.H{"consumer": consumer.ToResponse()}
	if consumer.Negotiation != nil {
		resp["negotiation"] = consumer.Negotiation.ToResponse()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Status Counts
// @Description Get consumer counts grouped by status for the actor's company
// @Tags Consumers
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /consumers/status_counts [get]
func (h *ConsumerHandler) StatusCounts(c *gin.Context) {
	counts, err := h.consumerService.CountByStatus(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

type CreateConsumerRequest struct {
	SubclientID   *uint    `json:"subclient_id"`
	AccountNumber string   `json:"account_number" binding:"required"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Mobile        string   `json:"mobile"`
	CurrentBalance float64 `json:"current_balance" binding:"required,gt=0"`

	PifDiscountPercent      *float64 `json:"pif_discount_percent"`
	PaySetupDiscountPercent *float64 `json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    *float64 `json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         *int     `json:"max_days_first_pay"`
}

// @Summary Create Consumer
// @Description Import a placed account for the actor's company
// @Tags Consumers
// @Accept json
// @Produce json
// @Param request body CreateConsumerRequest true "Account Details"
// @Success 201 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers [post]
func (h *ConsumerHandler) Create(c *gin.Context) {
	var req CreateConsumerRequest
	if err := BindNestedOrFlat(c, "consumer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	consumer := &models.Consumer{
		CompanyID:               middleware.GetCompanyID(c),
		SubclientID:             req.SubclientID,
		AccountNumber:           req.AccountNumber,
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Email:                   req.Email,
		Mobile:                  req.Mobile,
		CurrentBalance:          req.CurrentBalance,
		TotalBalance:            req.CurrentBalance,
		PifDiscountPercent:      req.PifDiscountPercent,
		PaySetupDiscountPercent: req.PaySetupDiscountPercent,
		MinMonthlyPayPercent:    req.MinMonthlyPayPercent,
		MaxDaysFirstPay:         req.MaxDaysFirstPay,
	}

	if err := h.consumerService.Create(c.Request.Context(), consumer,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"consumer": consumer.ToResponse()})
}

// @Summary Offer Terms
// @Description Get the creditor's standing offer terms for an account
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} services.OfferTerms
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/offer_terms [get]
func (h *ConsumerHandler) OfferTerms(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	terms, err := h.offerService.TermsForConsumer(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, terms)
}

// @Summary Dispute Account
// @Description Mark the account as disputed and void future captures
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/dispute [post]
func (h *ConsumerHandler) Dispute(c *gin.Context) {
	h.lifecycleAction(c, h.consumerService.Dispute)
}

// @Summary Mark Not Paying
// @Description Mark the account as not paying and void future captures
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/not_paying [post]
func (h *ConsumerHandler) NotPaying(c *gin.Context) {
	h.lifecycleAction(c, h.consumerService.MarkNotPaying)
}

// @Summary Hold Plan
// @Description Pause an active payment plan until a restart date
// @Tags Consumers
// @Accept json
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Param request body services.HoldRequest true "Hold Details"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/hold [post]
func (h *ConsumerHandler) Hold(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	var req services.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reason and restart date are required"})
		return
	}

	consumer, err := h.consumerService.Hold(c.Request.Context(), uint(id), &req,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consumer": consumer.ToResponse()})
}

// @Summary Restart Plan
// @Description Resume a held payment plan
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/restart [post]
func (h *ConsumerHandler) Restart(c *gin.Context) {
	h.lifecycleAction(c, h.consumerService.Restart)
}

// @Summary Renegotiate
// @Description Reopen the offer loop on an accepted or declined plan
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/renegotiate [post]
func (h *ConsumerHandler) Renegotiate(c *gin.Context) {
	h.lifecycleAction(c, h.consumerService.Renegotiate)
}

// @Summary Deactivate Account
// @Description Remove the account from negotiation entirely
// @Tags Consumers
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} models.ConsumerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/deactivate [post]
func (h *ConsumerHandler) Deactivate(c *gin.Context) {
	h.lifecycleAction(c, h.consumerService.Deactivate)
}

type lifecycleFn func(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error)

func (h *ConsumerHandler) lifecycleAction(c *gin.Context, fn lifecycleFn) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)
	consumer, err := fn(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consumer": consumer.ToResponse()})
}
