package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"studio-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// @Summary Month availability grid
// @Description Per-day, per-slot availability for one month
// @Tags availability
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} queries.MonthAvailability
// @Failure 400 {object} map[string]string
// @Router /availability [get]
func (h *AvailabilityHandler) MonthGrid(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid year",
		})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid month",
		})
		return
	}

	grid, err := h.availability.MonthGrid(c.Request.Context(), year, time.Month(month))
	if err != nil {
		if errors.Is(err, queries.ErrMonthOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Month is before the calendar lower bound",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, grid)
}
