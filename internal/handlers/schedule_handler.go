package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/middleware"
	"github.com/younegotiate/negotiate-api/internal/services"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	paymentService  *services.PaymentService
}

func NewScheduleHandler(scheduleService *services.ScheduleService, paymentService *services.PaymentService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		paymentService:  paymentService,
	}
}

// @Summary Payment Schedule
// @Description Get the full payment schedule for a consumer account
// @Tags Schedules
// @Produce json
// @Param consumer_id path int true "Consumer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /consumers/{consumer_id}/schedule [get]
func (h *ScheduleHandler) Index(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("consumer_id"), 10, 32)

	rows, err := h.scheduleService.RowsForConsumer(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	remaining, _ := h.scheduleService.RemainingScheduled(c.Request.Context(), uint(id))

	var responses []interface{}
	for i := range rows {
		responses = append(responses, rows[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule":            responses,
		"remaining_scheduled": remaining,
	})
}

// @Summary Retry Payment
// @Description Re-attempt a failed schedule row
// @Tags Schedules
// @Produce json
// @Param schedule_id path int true "Schedule Transaction ID"
// @Success 200 {object} models.ScheduleTransactionResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /schedules/{schedule_id}/retry [post]
func (h *ScheduleHandler) Retry(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("schedule_id"), 10, 32)

	row, err := h.paymentService.RetrySchedule(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule_transaction": row.ToResponse()})
}
