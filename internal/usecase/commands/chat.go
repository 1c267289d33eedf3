package commands

import (
	"context"
	"log/slog"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/assistant"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrThreadNotFound = errs.New("chat thread not found")
	ErrChatFailure    = errs.New("chat operation failed")
)

const (
	ChatModeAssistant = "assistant"
	ChatModeHuman     = "human"

	SenderCustomer  = "customer"
	SenderAgent     = "agent"
	SenderAssistant = "assistant"
)

// assistantHistoryLimit bounds how much thread history is replayed into
// the model on each turn.
const assistantHistoryLimit = 20

type ChatStore interface {
	EnsureThread(ctx context.Context, userID uuid.UUID, now time.Time) (uuid.UUID, error)
	FindThreadByID(ctx context.Context, id uuid.UUID) (*queries.ChatThreadView, error)
	SetThreadMode(ctx context.Context, threadID uuid.UUID, mode string) error
	AppendMessage(ctx context.Context, threadID uuid.UUID, sender, body string, at time.Time) (uuid.UUID, error)
	ListRecentMessages(ctx context.Context, threadID uuid.UUID, limit int32) ([]*queries.ChatMessageView, error)
}

// Responder is the AI side of the chat. Nil-safe via Enabled.
type Responder interface {
	Enabled() bool
	Reply(ctx context.Context, history []assistant.Message) (string, error)
}

type PostMessageResult struct {
	ThreadID uuid.UUID
	// Messages holds what this turn produced: the customer's message,
	// plus the assistant's reply when one was generated.
	Messages []*queries.ChatMessageView
}

type ChatCommands interface {
	PostCustomerMessage(ctx context.Context, userID uuid.UUID, body string) (*PostMessageResult, error)
	PostAgentMessage(ctx context.Context, threadID uuid.UUID, body string) (*queries.ChatMessageView, error)
	SetMode(ctx context.Context, threadID uuid.UUID, mode string) error
}

type chatCommandsImpl struct {
	chats     ChatStore
	responder Responder
	clock     clock.Clock
}

func NewChatCommands(chats ChatStore, responder Responder, clk clock.Clock) ChatCommands {
	return &chatCommandsImpl{chats: chats, responder: responder, clock: clk}
}

// PostCustomerMessage appends the customer's message to their thread,
// creating the thread on first contact. In assistant mode a reply is
// generated inline; a model failure degrades to a stored message with no
// answer, never to a lost message.
func (c *chatCommandsImpl) PostCustomerMessage(ctx context.Context, userID uuid.UUID, body string) (*PostMessageResult, error) {
	now := c.clock.Now()

	threadID, err := c.chats.EnsureThread(ctx, userID, now)
	if err != nil {
		return nil, errs.Mark(err, ErrChatFailure)
	}

	msgID, err := c.chats.AppendMessage(ctx, threadID, SenderCustomer, body, now)
	if err != nil {
		return nil, errs.Mark(err, ErrChatFailure)
	}

	result := &PostMessageResult{
		ThreadID: threadID,
		Messages: []*queries.ChatMessageView{{
			ID:        msgID,
			ThreadID:  threadID,
			Sender:    SenderCustomer,
			Body:      body,
			CreatedAt: now,
		}},
	}

	thread, err := c.chats.FindThreadByID(ctx, threadID)
	if err != nil {
		return nil, errs.Mark(err, ErrChatFailure)
	}
	if thread.Mode != ChatModeAssistant || !c.responder.Enabled() {
		return result, nil
	}

	reply, err := c.generateReply(ctx, threadID)
	if err != nil {
		slog.Warn("assistant reply failed", "thread_id", threadID, "error", err.Error())
		return result, nil
	}

	replyAt := c.clock.Now()
	replyID, err := c.chats.AppendMessage(ctx, threadID, SenderAssistant, reply, replyAt)
	if err != nil {
		slog.Warn("failed to store assistant reply", "thread_id", threadID, "error", err.Error())
		return result, nil
	}
	result.Messages = append(result.Messages, &queries.ChatMessageView{
		ID:        replyID,
		ThreadID:  threadID,
		Sender:    SenderAssistant,
		Body:      reply,
		CreatedAt: replyAt,
	})
	return result, nil
}

func (c *chatCommandsImpl) generateReply(ctx context.Context, threadID uuid.UUID) (string, error) {
	recent, err := c.chats.ListRecentMessages(ctx, threadID, assistantHistoryLimit)
	if err != nil {
		return "", err
	}

	history := make([]assistant.Message, 0, len(recent))
	for _, m := range recent {
		history = append(history, assistant.Message{
			FromCustomer: m.Sender == SenderCustomer,
			Body:         m.Body,
		})
	}
	return c.responder.Reply(ctx, history)
}

// PostAgentMessage is the back-office side: a human reply flips the
// thread to human mode so the assistant stops answering over the agent.
func (c *chatCommandsImpl) PostAgentMessage(ctx context.Context, threadID uuid.UUID, body string) (*queries.ChatMessageView, error) {
	now := c.clock.Now()

	msgID, err := c.chats.AppendMessage(ctx, threadID, SenderAgent, body, now)
	if err != nil {
		if infra.IsKind(err, infra.KindForeignKeyViolated) {
			return nil, ErrThreadNotFound
		}
		return nil, errs.Mark(err, ErrChatFailure)
	}

	if err := c.chats.SetThreadMode(ctx, threadID, ChatModeHuman); err != nil {
		slog.Warn("failed to switch thread to human mode", "thread_id", threadID, "error", err.Error())
	}

	return &queries.ChatMessageView{
		ID:        msgID,
		ThreadID:  threadID,
		Sender:    SenderAgent,
		Body:      body,
		CreatedAt: now,
	}, nil
}

func (c *chatCommandsImpl) SetMode(ctx context.Context, threadID uuid.UUID, mode string) error {
	if err := c.chats.SetThreadMode(ctx, threadID, mode); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrThreadNotFound
		}
		return errs.Mark(err, ErrChatFailure)
	}
	return nil
}
