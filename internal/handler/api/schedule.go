package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/handler/middleware"
	"studio-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes the back-office slot blocking controls.
type ScheduleHandler struct {
	scheduleCommands commands.ScheduleCommands
	location         *time.Location
}

func NewScheduleHandler(scheduleCommands commands.ScheduleCommands, location *time.Location) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleCommands: scheduleCommands,
		location:         location,
	}
}

// @Summary Toggle one slot
// @Description Block a free slot or unblock a blocked one
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ToggleSlotRequest true "Slot to toggle"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/schedule/slots/toggle [post]
func (h *ScheduleHandler) ToggleSlot(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	slotTime, err := req.SlotTime(h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid slot time",
		})
		return
	}

	blocked, err := h.scheduleCommands.ToggleSlot(c.Request.Context(), slotTime, slotTime.Hour(), adminID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrSlotInPast),
			errors.Is(err, commands.ErrSlotOutOfSchedule),
			errors.Is(err, commands.ErrDateBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Slot cannot be toggled",
			})
		case errors.Is(err, commands.ErrSlotOccupied):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Slot is occupied by a booking",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

// @Summary Toggle a whole day
// @Description Block all free slots of a day, or unblock a fully blocked day
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ToggleDayRequest true "Day to toggle"
// @Success 200 {object} commands.ToggleDayResult
// @Failure 400 {object} map[string]string
// @Router /admin/schedule/days/toggle [post]
func (h *ScheduleHandler) ToggleDay(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.ToggleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	day, err := req.Day(h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date",
		})
		return
	}

	result, err := h.scheduleCommands.ToggleDay(c.Request.Context(), day, adminID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDateBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Date is before the calendar lower bound",
			})
		case errors.Is(err, commands.ErrSlotInPast):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Day is already over",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
