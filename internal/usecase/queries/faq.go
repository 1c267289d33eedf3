package queries

import "context"

type FaqReadStore interface {
	ListPublished(ctx context.Context) ([]*FaqEntryView, error)
	ListAll(ctx context.Context) ([]*FaqEntryView, error)
}

type FaqQueries interface {
	// ListPublished is the public catalog, ordered by position.
	ListPublished(ctx context.Context) ([]*FaqEntryView, error)
	// ListAll includes drafts, for the back office.
	ListAll(ctx context.Context) ([]*FaqEntryView, error)
}

type faqQueriesImpl struct {
	store FaqReadStore
}

func NewFaqQueries(store FaqReadStore) FaqQueries {
	return &faqQueriesImpl{store: store}
}

func (q *faqQueriesImpl) ListPublished(ctx context.Context) ([]*FaqEntryView, error) {
	return q.store.ListPublished(ctx)
}

func (q *faqQueriesImpl) ListAll(ctx context.Context) ([]*FaqEntryView, error) {
	return q.store.ListAll(ctx)
}
