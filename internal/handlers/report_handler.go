package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// @Summary Export Accounts
// @Description Download the company's account book as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/consumers.xlsx [get]
func (h *ReportHandler) ExportConsumers(c *gin.Context) {
	data, filename, err := h.reportService.ExportConsumersXLSX(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Settlement Agreement
// @Description Download the settlement agreement PDF for an accepted plan
// @Tags Reports
// @Produce application/pdf
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {file} binary
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /consumers/{consumer_id}/agreement.pdf [get]
func (h *ReportHandler) SettlementAgreement(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	data, filename, err := h.reportService.GenerateSettlementAgreement(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Company Summary
// @Description Get the creditor dashboard: status counts and recent activity
// @Tags Reports
// @Produce json
// @Success 200 {object} services.CompanySummary
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context(),
		middleware.GetCompanyID(c), middleware.IsAdmin(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
