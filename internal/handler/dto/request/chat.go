package request

import "github.com/google/uuid"

type PostChatMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

type AgentReplyRequest struct {
	ThreadID uuid.UUID `json:"thread_id" binding:"required"`
	Body     string    `json:"body" binding:"required,max=4000"`
}

type SetChatModeRequest struct {
	ThreadID uuid.UUID `json:"thread_id" binding:"required"`
	Mode     string    `json:"mode" binding:"required,oneof=assistant human"`
}
