package queries

import (
	"context"

	"studio-backend/internal/domain/user"
	"studio-backend/internal/infra"
	"studio-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingViewNotFound = errs.New("booking not found")
	ErrBookingViewDenied   = errs.New("booking belongs to another user")
)

const defaultBookingListLimit = 100

type BookingReadStore interface {
	ViewByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetBooking(ctx context.Context, requesterID uuid.UUID, requesterRole string, id uuid.UUID) (*BookingView, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

// GetBooking returns one booking. Customers only see their own; a foreign
// booking reads as nonexistent rather than forbidden.
func (q *bookingQueriesImpl) GetBooking(ctx context.Context, requesterID uuid.UUID, requesterRole string, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.ViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingViewNotFound
		}
		return nil, err
	}
	if requesterRole != string(user.RoleAdmin) && view.UserID != requesterID {
		return nil, ErrBookingViewNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error) {
	return q.store.ListByUser(ctx, userID, defaultBookingListLimit)
}
