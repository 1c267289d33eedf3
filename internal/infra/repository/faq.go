package repository

import (
	"context"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type FaqRepository struct {
	db db.DBTX
}

func NewFaqRepository(pool db.DBTX) *FaqRepository {
	return &FaqRepository{db: pool}
}

const listPublishedFaqSQL = `
SELECT id, question, answer, position, published, updated_at
FROM faq_entries
WHERE published = true
ORDER BY position, updated_at
`

const listAllFaqSQL = `
SELECT id, question, answer, position, published, updated_at
FROM faq_entries
ORDER BY position, updated_at
`

func (r *FaqRepository) ListPublished(ctx context.Context) ([]*queries.FaqEntryView, error) {
	return r.list(ctx, listPublishedFaqSQL)
}

func (r *FaqRepository) ListAll(ctx context.Context) ([]*queries.FaqEntryView, error) {
	return r.list(ctx, listAllFaqSQL)
}

func (r *FaqRepository) list(ctx context.Context, sql string) ([]*queries.FaqEntryView, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list faq entries", err)
	}
	defer rows.Close()

	var out []*queries.FaqEntryView
	for rows.Next() {
		var view queries.FaqEntryView
		if err := rows.Scan(&view.ID, &view.Question, &view.Answer, &view.Position, &view.Published, &view.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan faq entry", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate faq entries", err)
	}
	return out, nil
}

const createFaqSQL = `
INSERT INTO faq_entries (id, question, answer, position, published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id
`

func (r *FaqRepository) Create(ctx context.Context, question, answer string, position int32, published bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, createFaqSQL, uuid.New(), question, answer, position, published).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create faq entry", err)
	}
	return id, nil
}

const updateFaqSQL = `
UPDATE faq_entries
SET question = $2, answer = $3, position = $4, published = $5, updated_at = now()
WHERE id = $1
`

func (r *FaqRepository) Update(ctx context.Context, id uuid.UUID, question, answer string, position int32, published bool) error {
	tag, err := r.db.Exec(ctx, updateFaqSQL, id, question, answer, position, published)
	if err != nil {
		return infra.WrapRepoErr("failed to update faq entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("faq entry not found", nil, infra.KindNotFound)
	}
	return nil
}

const deleteFaqSQL = `DELETE FROM faq_entries WHERE id = $1`

func (r *FaqRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteFaqSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete faq entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("faq entry not found", nil, infra.KindNotFound)
	}
	return nil
}
