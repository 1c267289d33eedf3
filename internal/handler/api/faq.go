package api

import (
	"errors"
	"net/http"

	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FaqHandler struct {
	faqCommands commands.FaqCommands
	faqQueries  queries.FaqQueries
}

func NewFaqHandler(faqCommands commands.FaqCommands, faqQueries queries.FaqQueries) *FaqHandler {
	return &FaqHandler{
		faqCommands: faqCommands,
		faqQueries:  faqQueries,
	}
}

// @Summary List published FAQ entries
// @Tags faq
// @Produce json
// @Success 200 {array} queries.FaqEntryView
// @Router /faq [get]
func (h *FaqHandler) ListPublished(c *gin.Context) {
	entries, err := h.faqQueries.ListPublished(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary List all FAQ entries
// @Description Back-office listing including drafts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.FaqEntryView
// @Router /admin/faq [get]
func (h *FaqHandler) ListAll(c *gin.Context) {
	entries, err := h.faqQueries.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary Create a FAQ entry
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpsertFaqRequest true "Entry"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /admin/faq [post]
func (h *FaqHandler) Create(c *gin.Context) {
	var req reqdto.UpsertFaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.faqCommands.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// @Summary Update a FAQ entry
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param request body reqdto.UpsertFaqRequest true "Entry"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/faq/{id} [put]
func (h *FaqHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid entry id",
		})
		return
	}

	var req reqdto.UpsertFaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.faqCommands.Update(c.Request.Context(), id, req); err != nil {
		if errors.Is(err, commands.ErrFaqNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "FAQ entry not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete a FAQ entry
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/faq/{id} [delete]
func (h *FaqHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid entry id",
		})
		return
	}

	if err := h.faqCommands.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, commands.ErrFaqNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "FAQ entry not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.Status(http.StatusNoContent)
}
