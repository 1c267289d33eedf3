package commands

import (
	"context"

	"studio-backend/internal/infra"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrFaqNotFound = errs.New("faq entry not found")
	ErrFaqFailure  = errs.New("faq operation failed")
)

type FaqStore interface {
	Create(ctx context.Context, question, answer string, position int32, published bool) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, question, answer string, position int32, published bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FaqCommands interface {
	Create(ctx context.Context, req reqdto.UpsertFaqRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req reqdto.UpsertFaqRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type faqCommandsImpl struct {
	faqs FaqStore
}

func NewFaqCommands(faqs FaqStore) FaqCommands {
	return &faqCommandsImpl{faqs: faqs}
}

func (f *faqCommandsImpl) Create(ctx context.Context, req reqdto.UpsertFaqRequest) (uuid.UUID, error) {
	id, err := f.faqs.Create(ctx, req.Question, req.Answer, req.Position, req.Published)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrFaqFailure)
	}
	return id, nil
}

func (f *faqCommandsImpl) Update(ctx context.Context, id uuid.UUID, req reqdto.UpsertFaqRequest) error {
	if err := f.faqs.Update(ctx, id, req.Question, req.Answer, req.Position, req.Published); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrFaqNotFound
		}
		return errs.Mark(err, ErrFaqFailure)
	}
	return nil
}

func (f *faqCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := f.faqs.Delete(ctx, id); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrFaqNotFound
		}
		return errs.Mark(err, ErrFaqFailure)
	}
	return nil
}
