package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// @Summary List Companies
// @Description Get a paginated list of creditor companies
// @Tags Companies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")

	companies, total, err := h.companyService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Company
// @Description Get a creditor company by ID
// @Tags Companies
// @Produce json
// @Param company_id path int true "Company ID"
// @Success 200 {object} models.Company
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *CompanyHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)
	company, err := h.companyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

type CreateCompanyRequest struct {
	Name                    string  `json:"name" binding:"required"`
	PifDiscountPercent      float64 `json:"pif_discount_percent"`
	PaySetupDiscountPercent float64 `json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    float64 `json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         int     `json:"max_days_first_pay"`
}

// @Summary Create Company
// @Description Register a new creditor company
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body CreateCompanyRequest true "Company Details"
// @Success 201 {object} models.Company
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := BindNestedOrFlat(c, "company", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Company name is required"})
		return
	}

	maxDays := req.MaxDaysFirstPay
	if maxDays == 0 {
		maxDays = 30
	}

	company := &models.Company{
		Name:                    req.Name,
		PifDiscountPercent:      req.PifDiscountPercent,
		PaySetupDiscountPercent: req.PaySetupDiscountPercent,
		MinMonthlyPayPercent:    req.MinMonthlyPayPercent,
		MaxDaysFirstPay:         maxDays,
		Status:                  models.CompanyStatusActive,
	}

	if err := h.companyService.Create(c.Request.Context(), company,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

type UpdateTermsRequest struct {
	PifDiscountPercent      float64 `json:"pif_discount_percent"`
	PaySetupDiscountPercent float64 `json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    float64 `json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         int     `json:"max_days_first_pay" binding:"required,gt=0"`
}

// @Summary Update Terms
// @Description Change the company's default negotiation terms. Accepted plans keep their original terms.
// @Tags Companies
// @Accept json
// @Produce json
// @Param company_id path int true "Company ID"
// @Param request body UpdateTermsRequest true "Negotiation Terms"
// @Success 200 {object} models.Company
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id}/terms [put]
func (h *CompanyHandler) UpdateTerms(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)

	var req UpdateTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid terms payload"})
		return
	}

	company, err := h.companyService.UpdateTerms(c.Request.Context(), uint(id),
		req.PifDiscountPercent, req.PaySetupDiscountPercent, req.MinMonthlyPayPercent, req.MaxDaysFirstPay,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// @Summary List Subclients
// @Description Get the subclients of a company
// @Tags Companies
// @Produce json
// @Param company_id path int true "Company ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /companies/{company_id}/subclients [get]
func (h *CompanyHandler) Subclients(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)
	subclients, err := h.companyService.Subclients(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subclients": subclients})
}

type CreateSubclientRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary Create Subclient
// @Description Add a subclient under a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param company_id path int true "Company ID"
// @Param request body CreateSubclientRequest true "Subclient Details"
// @Success 201 {object} models.Subclient
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id}/subclients [post]
func (h *CompanyHandler) CreateSubclient(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)

	var req CreateSubclientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subclient name is required"})
		return
	}

	subclient := &models.Subclient{
		CompanyID: uint(id),
		Name:      req.Name,
	}
	if err := h.companyService.CreateSubclient(c.Request.Context(), subclient,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subclient": subclient})
}

type UpdateSubclientTermsRequest struct {
	PifDiscountPercent      *float64 `json:"pif_discount_percent"`
	PaySetupDiscountPercent *float64 `json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    *float64 `json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         *int     `json:"max_days_first_pay"`
}

// @Summary Update Subclient Terms
// @Description Change a subclient's term overrides. Null values fall back to the company defaults.
// @Tags Companies
// @Accept json
// @Produce json
// @Param subclient_id path int true "Subclient ID"
// @Param request body UpdateSubclientTermsRequest true "Term Overrides"
// @Success 200 {object} models.Subclient
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /subclients/{subclient_id}/terms [put]
func (h *CompanyHandler) UpdateSubclientTerms(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("subclient_id"), 10, 32)

	var req UpdateSubclientTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid terms payload"})
		return
	}

	subclient, err := h.companyService.UpdateSubclientTerms(c.Request.Context(), uint(id),
		req.PifDiscountPercent, req.PaySetupDiscountPercent, req.MinMonthlyPayPercent, req.MaxDaysFirstPay,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subclient": subclient})
}

// @Summary Active Membership
// @Description Get the membership carrying the company's platform fee
// @Tags Companies
// @Produce json
// @Param company_id path int true "Company ID"
// @Success 200 {object} models.CompanyMembership
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id}/membership [get]
func (h *CompanyHandler) Membership(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)
	membership, err := h.companyService.ActiveMembership(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active membership"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

type CreateMembershipRequest struct {
	PlanName string  `json:"plan_name" binding:"required"`
	Fee      float64 `json:"fee" binding:"required,gte=0,lte=100"`
}

// @Summary Create Membership
// @Description Assign a billing plan and platform fee to a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param company_id path int true "Company ID"
// @Param request body CreateMembershipRequest true "Membership Details"
// @Success 201 {object} models.CompanyMembership
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id}/memberships [post]
func (h *CompanyHandler) CreateMembership(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan name and fee are required"})
		return
	}

	membership := &models.CompanyMembership{
		CompanyID: uint(id),
		PlanName:  req.PlanName,
		Fee:       req.Fee,
		Status:    models.MembershipStatusActive,
	}
	if err := h.companyService.CreateMembership(c.Request.Context(), membership,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": membership})
}

type UpdateMembershipRequest struct {
	Fee float64 `json:"fee" binding:"gte=0,lte=100"`
}

// @Summary Update Membership Fee
// @Description Change the platform fee on the company's active membership
// @Tags Companies
// @Accept json
// @Produce json
// @Param company_id path int true "Company ID"
// @Param request body UpdateMembershipRequest true "New Fee"
// @Success 200 {object} models.CompanyMembership
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /companies/{company_id}/membership [put]
func (h *CompanyHandler) UpdateMembership(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("company_id"), 10, 32)

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee must be between 0 and 100"})
		return
	}

	membership, err := h.companyService.UpdateMembershipFee(c.Request.Context(), uint(id), req.Fee,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": membership})
}
