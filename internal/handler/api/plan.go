package api

import (
	"errors"
	"net/http"

	reqdto "studio-backend/internal/handler/dto/request"
	resdto "studio-backend/internal/handler/dto/response"
	"studio-backend/internal/handler/middleware"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlanHandler struct {
	planCommands commands.PlanCommands
	planQueries  queries.PlanQueries
}

func NewPlanHandler(planCommands commands.PlanCommands, planQueries queries.PlanQueries) *PlanHandler {
	return &PlanHandler{
		planCommands: planCommands,
		planQueries:  planQueries,
	}
}

// @Summary List plans
// @Description Public plan catalog
// @Tags plans
// @Produce json
// @Success 200 {array} queries.PlanCatalogView
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planQueries.ListPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary List my subscriptions
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.SubscriptionView
// @Failure 401 {object} map[string]string
// @Router /plans/subscriptions [get]
func (h *PlanHandler) ListMySubscriptions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	subs, err := h.planQueries.ListMySubscriptions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, subs)
}

// @Summary Subscribe to a plan
// @Description Open a payment checkout for the first period of a plan
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SubscribeRequest true "Subscription request"
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /plans/subscribe [post]
func (h *PlanHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.planCommands.Subscribe(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPlanNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Plan not found",
			})
		case errors.Is(err, commands.ErrCheckoutFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment checkout could not be created",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(result))
}

// @Summary Cancel a subscription
// @Description Cancel my subscription, choosing the refund form
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param request body reqdto.CancelPlanRequest true "Refund choice"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /plans/subscriptions/{id}/cancel [post]
func (h *PlanHandler) CancelSubscription(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid subscription id",
		})
		return
	}

	var req reqdto.CancelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.planCommands.CancelSubscription(c.Request.Context(), userID, id, req.RefundType); err != nil {
		switch {
		case errors.Is(err, commands.ErrSubscriptionNotFound), errors.Is(err, commands.ErrNotSubscriptionOwner):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Subscription not found",
			})
		case errors.Is(err, commands.ErrPlanAlreadyCanceled):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Subscription is already canceled",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
