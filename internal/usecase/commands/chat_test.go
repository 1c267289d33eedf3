//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/assistant"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatStoreFake struct {
	threads      map[uuid.UUID]*queries.ChatThreadView
	byUser       map[uuid.UUID]uuid.UUID
	messages     map[uuid.UUID][]*queries.ChatMessageView
	knownThreads bool // when true, AppendMessage rejects unknown thread ids
}

func newChatStoreFake() *chatStoreFake {
	return &chatStoreFake{
		threads:  make(map[uuid.UUID]*queries.ChatThreadView),
		byUser:   make(map[uuid.UUID]uuid.UUID),
		messages: make(map[uuid.UUID][]*queries.ChatMessageView),
	}
}

func (f *chatStoreFake) EnsureThread(_ context.Context, userID uuid.UUID, now time.Time) (uuid.UUID, error) {
	if id, ok := f.byUser[userID]; ok {
		return id, nil
	}
	id := uuid.New()
	f.byUser[userID] = id
	f.threads[id] = &queries.ChatThreadView{ID: id, UserID: userID, Mode: commands.ChatModeAssistant, LastMessageAt: now}
	return id, nil
}

func (f *chatStoreFake) FindThreadByID(_ context.Context, id uuid.UUID) (*queries.ChatThreadView, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, infra.WrapRepoErr("thread not found", nil, infra.KindNotFound)
	}
	return t, nil
}

func (f *chatStoreFake) SetThreadMode(_ context.Context, threadID uuid.UUID, mode string) error {
	t, ok := f.threads[threadID]
	if !ok {
		return infra.WrapRepoErr("thread not found", nil, infra.KindNotFound)
	}
	t.Mode = mode
	return nil
}

func (f *chatStoreFake) AppendMessage(_ context.Context, threadID uuid.UUID, sender, body string, at time.Time) (uuid.UUID, error) {
	if f.knownThreads {
		if _, ok := f.threads[threadID]; !ok {
			return uuid.Nil, infra.WrapRepoErr("no such thread", nil, infra.KindForeignKeyViolated)
		}
	}
	id := uuid.New()
	f.messages[threadID] = append(f.messages[threadID], &queries.ChatMessageView{
		ID: id, ThreadID: threadID, Sender: sender, Body: body, CreatedAt: at,
	})
	return id, nil
}

func (f *chatStoreFake) ListRecentMessages(_ context.Context, threadID uuid.UUID, limit int32) ([]*queries.ChatMessageView, error) {
	msgs := f.messages[threadID]
	if int32(len(msgs)) > limit {
		msgs = msgs[int32(len(msgs))-limit:]
	}
	return msgs, nil
}

type responderFake struct {
	enabled bool
	reply   string
	err     error
	history []assistant.Message
}

func (r *responderFake) Enabled() bool { return r.enabled }

func (r *responderFake) Reply(_ context.Context, history []assistant.Message) (string, error) {
	r.history = history
	return r.reply, r.err
}

func TestPostCustomerMessage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("assistant answers in assistant mode", func(t *testing.T) {
		store := newChatStoreFake()
		responder := &responderFake{enabled: true, reply: "Olá! Como posso ajudar?"}
		cmds := commands.NewChatCommands(store, responder, clock.NewMockClock(now))

		result, err := cmds.PostCustomerMessage(context.Background(), uuid.New(), "Qual o horário de funcionamento?")
		require.NoError(t, err)
		require.Len(t, result.Messages, 2)

		assert.Equal(t, commands.SenderCustomer, result.Messages[0].Sender)
		assert.Equal(t, commands.SenderAssistant, result.Messages[1].Sender)
		assert.Equal(t, "Olá! Como posso ajudar?", result.Messages[1].Body)

		// The customer's message was part of the replayed history.
		require.NotEmpty(t, responder.history)
		assert.True(t, responder.history[len(responder.history)-1].FromCustomer)
	})

	t.Run("model failure never loses the message", func(t *testing.T) {
		store := newChatStoreFake()
		responder := &responderFake{enabled: true, err: assert.AnError}
		cmds := commands.NewChatCommands(store, responder, clock.NewMockClock(now))

		result, err := cmds.PostCustomerMessage(context.Background(), uuid.New(), "alguém aí?")
		require.NoError(t, err)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, commands.SenderCustomer, result.Messages[0].Sender)
		assert.Len(t, store.messages[result.ThreadID], 1)
	})

	t.Run("disabled assistant stays silent", func(t *testing.T) {
		store := newChatStoreFake()
		responder := &responderFake{enabled: false}
		cmds := commands.NewChatCommands(store, responder, clock.NewMockClock(now))

		result, err := cmds.PostCustomerMessage(context.Background(), uuid.New(), "oi")
		require.NoError(t, err)
		assert.Len(t, result.Messages, 1)
	})

	t.Run("human mode thread gets no assistant reply", func(t *testing.T) {
		store := newChatStoreFake()
		responder := &responderFake{enabled: true, reply: "should not appear"}
		cmds := commands.NewChatCommands(store, responder, clock.NewMockClock(now))

		userID := uuid.New()
		threadID, err := store.EnsureThread(context.Background(), userID, now)
		require.NoError(t, err)
		require.NoError(t, store.SetThreadMode(context.Background(), threadID, commands.ChatModeHuman))

		result, err := cmds.PostCustomerMessage(context.Background(), userID, "continuando o assunto")
		require.NoError(t, err)
		assert.Len(t, result.Messages, 1)
	})

	t.Run("reuses the thread across messages", func(t *testing.T) {
		store := newChatStoreFake()
		cmds := commands.NewChatCommands(store, &responderFake{}, clock.NewMockClock(now))

		userID := uuid.New()
		first, err := cmds.PostCustomerMessage(context.Background(), userID, "primeira")
		require.NoError(t, err)
		second, err := cmds.PostCustomerMessage(context.Background(), userID, "segunda")
		require.NoError(t, err)

		assert.Equal(t, first.ThreadID, second.ThreadID)
		assert.Len(t, store.messages[first.ThreadID], 2)
	})
}

func TestPostAgentMessage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("flips the thread to human mode", func(t *testing.T) {
		store := newChatStoreFake()
		cmds := commands.NewChatCommands(store, &responderFake{enabled: true}, clock.NewMockClock(now))

		threadID, err := store.EnsureThread(context.Background(), uuid.New(), now)
		require.NoError(t, err)

		msg, err := cmds.PostAgentMessage(context.Background(), threadID, "Oi, sou do estúdio")
		require.NoError(t, err)
		assert.Equal(t, commands.SenderAgent, msg.Sender)
		assert.Equal(t, commands.ChatModeHuman, store.threads[threadID].Mode)
	})

	t.Run("unknown thread", func(t *testing.T) {
		store := newChatStoreFake()
		store.knownThreads = true
		cmds := commands.NewChatCommands(store, &responderFake{}, clock.NewMockClock(now))

		_, err := cmds.PostAgentMessage(context.Background(), uuid.New(), "oi")
		assert.ErrorIs(t, err, commands.ErrThreadNotFound)
	})
}

func TestSetMode(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newChatStoreFake()
	cmds := commands.NewChatCommands(store, &responderFake{}, clock.NewMockClock(now))

	threadID, err := store.EnsureThread(context.Background(), uuid.New(), now)
	require.NoError(t, err)

	require.NoError(t, cmds.SetMode(context.Background(), threadID, commands.ChatModeHuman))
	assert.Equal(t, commands.ChatModeHuman, store.threads[threadID].Mode)

	assert.ErrorIs(t, cmds.SetMode(context.Background(), uuid.New(), commands.ChatModeAssistant), commands.ErrThreadNotFound)
}
