package queries

import (
	"context"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrThreadViewNotFound = errs.New("chat thread not found")

const (
	defaultChatPageSize   = 50
	defaultThreadListSize = 100
)

type ChatReadStore interface {
	FindThreadByUser(ctx context.Context, userID uuid.UUID) (*ChatThreadView, error)
	FindThreadByID(ctx context.Context, id uuid.UUID) (*ChatThreadView, error)
	ListMessagesSince(ctx context.Context, threadID uuid.UUID, since time.Time, limit int32) ([]*ChatMessageView, error)
	ListThreads(ctx context.Context, limit int32) ([]*ChatThreadView, error)
}

type ThreadWithMessages struct {
	Thread   *ChatThreadView    `json:"thread"`
	Messages []*ChatMessageView `json:"messages"`
}

type ChatQueries interface {
	// MyThread returns the customer's thread and its messages after
	// `since`; a customer with no thread yet gets an empty view, not an
	// error, so the client can render the empty chat.
	MyThread(ctx context.Context, userID uuid.UUID, since time.Time) (*ThreadWithMessages, error)
	// Thread is the back-office view of any thread.
	Thread(ctx context.Context, threadID uuid.UUID, since time.Time) (*ThreadWithMessages, error)
	ListThreads(ctx context.Context) ([]*ChatThreadView, error)
}

type chatQueriesImpl struct {
	store ChatReadStore
}

func NewChatQueries(store ChatReadStore) ChatQueries {
	return &chatQueriesImpl{store: store}
}

func (q *chatQueriesImpl) MyThread(ctx context.Context, userID uuid.UUID, since time.Time) (*ThreadWithMessages, error) {
	thread, err := q.store.FindThreadByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &ThreadWithMessages{Messages: []*ChatMessageView{}}, nil
		}
		return nil, err
	}
	return q.withMessages(ctx, thread, since)
}

func (q *chatQueriesImpl) Thread(ctx context.Context, threadID uuid.UUID, since time.Time) (*ThreadWithMessages, error) {
	thread, err := q.store.FindThreadByID(ctx, threadID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrThreadViewNotFound
		}
		return nil, err
	}
	return q.withMessages(ctx, thread, since)
}

func (q *chatQueriesImpl) withMessages(ctx context.Context, thread *ChatThreadView, since time.Time) (*ThreadWithMessages, error) {
	messages, err := q.store.ListMessagesSince(ctx, thread.ID, since, defaultChatPageSize)
	if err != nil {
		return nil, err
	}
	return &ThreadWithMessages{Thread: thread, Messages: messages}, nil
}

func (q *chatQueriesImpl) ListThreads(ctx context.Context) ([]*ChatThreadView, error) {
	return q.store.ListThreads(ctx, defaultThreadListSize)
}
