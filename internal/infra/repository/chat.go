package repository

import (
	"context"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type ChatRepository struct {
	db db.DBTX
}

func NewChatRepository(pool db.DBTX) *ChatRepository {
	return &ChatRepository{db: pool}
}

const findThreadByUserSQL = `
SELECT t.id, t.user_id, u.email, t.mode, t.last_message_at
FROM chat_threads t
JOIN users u ON u.id = t.user_id
WHERE t.user_id = $1
`

func (r *ChatRepository) FindThreadByUser(ctx context.Context, userID uuid.UUID) (*queries.ChatThreadView, error) {
	var view queries.ChatThreadView
	err := r.db.QueryRow(ctx, findThreadByUserSQL, userID).Scan(
		&view.ID, &view.UserID, &view.UserEmail, &view.Mode, &view.LastMessageAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("chat thread not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find chat thread", err)
	}
	return &view, nil
}

const findThreadByIDSQL = `
SELECT t.id, t.user_id, u.email, t.mode, t.last_message_at
FROM chat_threads t
JOIN users u ON u.id = t.user_id
WHERE t.id = $1
`

func (r *ChatRepository) FindThreadByID(ctx context.Context, id uuid.UUID) (*queries.ChatThreadView, error) {
	var view queries.ChatThreadView
	err := r.db.QueryRow(ctx, findThreadByIDSQL, id).Scan(
		&view.ID, &view.UserID, &view.UserEmail, &view.Mode, &view.LastMessageAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("chat thread not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find chat thread", err)
	}
	return &view, nil
}

const createThreadSQL = `
INSERT INTO chat_threads (id, user_id, mode, last_message_at, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id
`

// EnsureThread returns the user's thread id, creating the row on first
// contact. The no-op ON CONFLICT update makes RETURNING work on both paths.
func (r *ChatRepository) EnsureThread(ctx context.Context, userID uuid.UUID, now time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, createThreadSQL, uuid.New(), userID, "assistant", now).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to ensure chat thread", err)
	}
	return id, nil
}

const setThreadModeSQL = `
UPDATE chat_threads SET mode = $2 WHERE id = $1
`

func (r *ChatRepository) SetThreadMode(ctx context.Context, threadID uuid.UUID, mode string) error {
	tag, err := r.db.Exec(ctx, setThreadModeSQL, threadID, mode)
	if err != nil {
		return infra.WrapRepoErr("failed to update chat thread mode", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("chat thread not found", nil, infra.KindNotFound)
	}
	return nil
}

const insertMessageSQL = `
WITH msg AS (
    INSERT INTO chat_messages (id, thread_id, sender, body, created_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING thread_id, created_at
)
UPDATE chat_threads t
SET last_message_at = msg.created_at
FROM msg
WHERE t.id = msg.thread_id
`

func (r *ChatRepository) AppendMessage(ctx context.Context, threadID uuid.UUID, sender, body string, at time.Time) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx, insertMessageSQL, id, threadID, sender, body, at)
	if err != nil {
		if pgconv.IsForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("chat thread not found", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to append chat message", err)
	}
	return id, nil
}

const listMessagesSQL = `
SELECT id, thread_id, sender, body, created_at
FROM chat_messages
WHERE thread_id = $1 AND created_at > $2
ORDER BY created_at
LIMIT $3
`

// ListMessagesSince backs the polling endpoint. Passing the zero time
// returns the thread from the beginning.
func (r *ChatRepository) ListMessagesSince(ctx context.Context, threadID uuid.UUID, since time.Time, limit int32) ([]*queries.ChatMessageView, error) {
	rows, err := r.db.Query(ctx, listMessagesSQL, threadID, since, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list chat messages", err)
	}
	defer rows.Close()

	var out []*queries.ChatMessageView
	for rows.Next() {
		var view queries.ChatMessageView
		if err := rows.Scan(&view.ID, &view.ThreadID, &view.Sender, &view.Body, &view.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan chat message", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate chat messages", err)
	}
	return out, nil
}

const listRecentMessagesSQL = `
SELECT id, thread_id, sender, body, created_at
FROM chat_messages
WHERE thread_id = $1
ORDER BY created_at DESC
LIMIT $2
`

// ListRecentMessages returns the newest messages oldest-first, for feeding
// conversation history to the assistant.
func (r *ChatRepository) ListRecentMessages(ctx context.Context, threadID uuid.UUID, limit int32) ([]*queries.ChatMessageView, error) {
	rows, err := r.db.Query(ctx, listRecentMessagesSQL, threadID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list chat messages", err)
	}
	defer rows.Close()

	var out []*queries.ChatMessageView
	for rows.Next() {
		var view queries.ChatMessageView
		if err := rows.Scan(&view.ID, &view.ThreadID, &view.Sender, &view.Body, &view.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan chat message", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate chat messages", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

const listThreadsSQL = `
SELECT t.id, t.user_id, u.email, t.mode, t.last_message_at
FROM chat_threads t
JOIN users u ON u.id = t.user_id
ORDER BY t.last_message_at DESC
LIMIT $1
`

func (r *ChatRepository) ListThreads(ctx context.Context, limit int32) ([]*queries.ChatThreadView, error) {
	rows, err := r.db.Query(ctx, listThreadsSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list chat threads", err)
	}
	defer rows.Close()

	var out []*queries.ChatThreadView
	for rows.Next() {
		var view queries.ChatThreadView
		if err := rows.Scan(&view.ID, &view.UserID, &view.UserEmail, &view.Mode, &view.LastMessageAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan chat thread", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate chat threads", err)
	}
	return out, nil
}
