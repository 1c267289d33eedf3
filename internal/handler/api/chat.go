package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/handler/middleware"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatCommands commands.ChatCommands
	chatQueries  queries.ChatQueries
}

func NewChatHandler(chatCommands commands.ChatCommands, chatQueries queries.ChatQueries) *ChatHandler {
	return &ChatHandler{
		chatCommands: chatCommands,
		chatQueries:  chatQueries,
	}
}

// sinceParam parses the incremental polling cursor. Absent or malformed
// means "from the beginning".
func sinceParam(c *gin.Context) time.Time {
	raw := c.Query("since")
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// @Summary My chat thread
// @Description The customer's support thread and messages after `since`
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 cursor; only newer messages are returned"
// @Success 200 {object} queries.ThreadWithMessages
// @Failure 401 {object} map[string]string
// @Router /chat [get]
func (h *ChatHandler) MyThread(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	thread, err := h.chatQueries.MyThread(c.Request.Context(), userID, sinceParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, thread)
}

// @Summary Send a chat message
// @Description Append a message to my thread; in assistant mode the reply comes inline
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PostChatMessageRequest true "Message"
// @Success 201 {object} commands.PostMessageResult
// @Failure 400 {object} map[string]string
// @Router /chat/messages [post]
func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.chatCommands.PostCustomerMessage(c.Request.Context(), userID, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary List chat threads
// @Description Back-office thread overview, most recent first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.ChatThreadView
// @Router /admin/chat/threads [get]
func (h *ChatHandler) ListThreads(c *gin.Context) {
	threads, err := h.chatQueries.ListThreads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, threads)
}

// @Summary View a chat thread
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Param since query string false "RFC3339 cursor"
// @Success 200 {object} queries.ThreadWithMessages
// @Failure 404 {object} map[string]string
// @Router /admin/chat/threads/{id} [get]
func (h *ChatHandler) GetThread(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid thread id",
		})
		return
	}

	thread, err := h.chatQueries.Thread(c.Request.Context(), id, sinceParam(c))
	if err != nil {
		if errors.Is(err, queries.ErrThreadViewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Thread not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, thread)
}

// @Summary Reply as agent
// @Description Post a human reply; the thread switches to human mode
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AgentReplyRequest true "Reply"
// @Success 201 {object} queries.ChatMessageView
// @Failure 404 {object} map[string]string
// @Router /admin/chat/reply [post]
func (h *ChatHandler) AgentReply(c *gin.Context) {
	var req reqdto.AgentReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	msg, err := h.chatCommands.PostAgentMessage(c.Request.Context(), req.ThreadID, req.Body)
	if err != nil {
		if errors.Is(err, commands.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Thread not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// @Summary Set thread mode
// @Description Switch a thread between assistant and human handling
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SetChatModeRequest true "Mode"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/chat/mode [put]
func (h *ChatHandler) SetMode(c *gin.Context) {
	var req reqdto.SetChatModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.chatCommands.SetMode(c.Request.Context(), req.ThreadID, req.Mode); err != nil {
		if errors.Is(err, commands.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Thread not found",
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
