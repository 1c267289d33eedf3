package commands

import (
	"context"
	"log/slog"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/domain/coupon"
	"studio-backend/internal/domain/payment"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/infra/gateway"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBookingNotFound     = errs.New("booking not found")
	ErrNotBookingOwner     = errs.New("booking belongs to another user")
	ErrBookingConflict     = errs.New("requested time conflicts with another booking")
	ErrSlotBlocked         = errs.New("requested time is blocked")
	ErrInvalidBookingTime  = errs.New("requested time is not bookable")
	ErrInvalidTransition   = errs.New("booking status transition not allowed")
	ErrCouponNotApplicable = errs.New("coupon cannot be applied to this booking")
	ErrCheckoutFailed      = errs.New("checkout creation failed")
	ErrBookingFailure      = errs.New("booking operation failed")
)

// Refund coupons issued on cancellation stay valid for three months.
const refundCouponValidityMonths = 3

const checkoutDueDays = 3

type CheckoutResult struct {
	BookingID        *uuid.UUID
	GatewayPaymentID string
	CheckoutURL      string
	AmountCents      int64
	// Paid is true when a coupon covered the full amount and the booking
	// was confirmed without a checkout round-trip.
	Paid bool
}

type BookingStore interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	FindByIDTx(ctx context.Context, tx db.DBTX, id uuid.UUID) (*BookingSnapshot, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from, to booking.Status) (int64, error)
	AttachPayment(ctx context.Context, tx db.DBTX, id, paymentID uuid.UUID) error
	ListConflicting(ctx context.Context, tx db.DBTX, from, to time.Time) ([]BookingSnapshot, error)
}

type PendingMetadataStore interface {
	Create(ctx context.Context, tx db.DBTX, snap PendingMetadataSnapshot) error
	FindByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID string, now time.Time) (*PendingMetadataSnapshot, error)
	FindLatestByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID, now time.Time) (*PendingMetadataSnapshot, error)
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) (*PendingMetadataSnapshot, error)
	BindGatewayID(ctx context.Context, tx db.DBTX, id uuid.UUID, gatewayPaymentID string) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

type PaymentStore interface {
	TryInsert(ctx context.Context, tx db.DBTX, snap PaymentSnapshot) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentSnapshot, error)
	FindByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID string) (*PaymentSnapshot, error)
	FindLatestByUserAndKind(ctx context.Context, userID uuid.UUID, kind string) (*PaymentSnapshot, error)
	UpdateStatusByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID, status string) error
}

// PendingMetadataTTL is how long a parked intent stays correlatable.
const PendingMetadataTTL = 48 * time.Hour

type BookingCommands interface {
	RequestBooking(ctx context.Context, userID uuid.UUID, req reqdto.CreateBookingRequest) (*CheckoutResult, error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, refundType string) error
	SetStatus(ctx context.Context, bookingID uuid.UUID, status string) error
}

type bookingCommandsImpl struct {
	bookings     BookingStore
	blockedSlots BlockedSlotStore
	payments     PaymentStore
	metadata     PendingMetadataStore
	users        GatewayUserStore
	coupons      CouponCommands
	couponStore  CouponStore
	gateway      PaymentGateway
	pool         *pgxpool.Pool
	clock        clock.Clock
	location     *time.Location
	minDate      time.Time
}

func NewBookingCommands(
	bookings BookingStore,
	blockedSlots BlockedSlotStore,
	payments PaymentStore,
	metadata PendingMetadataStore,
	users GatewayUserStore,
	coupons CouponCommands,
	couponStore CouponStore,
	gw PaymentGateway,
	pool *pgxpool.Pool,
	clk clock.Clock,
	location *time.Location,
	minDate time.Time,
) BookingCommands {
	return &bookingCommandsImpl{
		bookings:     bookings,
		blockedSlots: blockedSlots,
		payments:     payments,
		metadata:     metadata,
		users:        users,
		coupons:      coupons,
		couponStore:  couponStore,
		gateway:      gw,
		pool:         pool,
		clock:        clk,
		location:     location,
		minDate:      minDate,
	}
}

// RequestBooking captures the customer's intent and opens a checkout with
// the processor. The booking row is created as pending (it does not hold
// the slot yet); reconciliation promotes it when the payment arrives. When
// a coupon covers the full amount there is nothing to charge and the
// booking is accepted immediately.
func (b *bookingCommandsImpl) RequestBooking(ctx context.Context, userID uuid.UUID, req reqdto.CreateBookingRequest) (*CheckoutResult, error) {
	startTime, err := req.StartTime(b.location)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingTime)
	}
	duration := time.Duration(req.DurationMin) * time.Minute

	if err := b.validateWindow(startTime, duration); err != nil {
		return nil, err
	}

	appliedCoupon, err := b.resolveCoupon(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	amountCents := req.AmountCents
	if appliedCoupon != nil {
		amountCents = appliedCoupon.ApplyDiscount(amountCents)
	}

	if amountCents == 0 && appliedCoupon != nil {
		return b.bookWithCouponOnly(ctx, userID, startTime, duration, req, appliedCoupon)
	}
	return b.bookWithCheckout(ctx, userID, startTime, duration, req, appliedCoupon, amountCents)
}

func (b *bookingCommandsImpl) bookWithCouponOnly(
	ctx context.Context,
	userID uuid.UUID,
	startTime time.Time,
	duration time.Duration,
	req reqdto.CreateBookingRequest,
	appliedCoupon *coupon.Coupon,
) (*CheckoutResult, error) {
	bookingID, err := shared.RunInTx(ctx, b.pool, func(tx db.DBTX) (uuid.UUID, error) {
		if err := b.checkConflicts(ctx, tx, startTime, duration); err != nil {
			return uuid.Nil, err
		}

		entity, err := booking.NewBooking(userID, startTime, duration, req.Category, req.GetNotes(), booking.StatusAccepted)
		if err != nil {
			return uuid.Nil, errs.Mark(err, ErrBookingFailure)
		}
		entity.AttachCoupon(appliedCoupon.ID())

		id, err := b.bookings.Create(ctx, tx, entity)
		if err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return uuid.Nil, ErrBookingConflict
			}
			return uuid.Nil, errs.Mark(err, ErrBookingFailure)
		}

		if err := b.coupons.RedeemTx(ctx, tx, appliedCoupon.Code().String(), userID, id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{BookingID: &bookingID, Paid: true}, nil
}

func (b *bookingCommandsImpl) bookWithCheckout(
	ctx context.Context,
	userID uuid.UUID,
	startTime time.Time,
	duration time.Duration,
	req reqdto.CreateBookingRequest,
	appliedCoupon *coupon.Coupon,
	amountCents int64,
) (*CheckoutResult, error) {
	userSnap, err := b.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrBookingFailure)
	}

	type pendingIntent struct {
		bookingID  uuid.UUID
		metadataID uuid.UUID
	}
	pending, err := shared.RunInTx(ctx, b.pool, func(tx db.DBTX) (pendingIntent, error) {
		if err := b.checkConflicts(ctx, tx, startTime, duration); err != nil {
			return pendingIntent{}, err
		}

		entity, err := booking.NewBooking(userID, startTime, duration, req.Category, req.GetNotes(), booking.StatusPending)
		if err != nil {
			return pendingIntent{}, errs.Mark(err, ErrBookingFailure)
		}
		bookingID, err := b.bookings.Create(ctx, tx, entity)
		if err != nil {
			return pendingIntent{}, errs.Mark(err, ErrBookingFailure)
		}

		intent := payment.NewBookingIntent(payment.BookingIntent{
			BookingID:  &bookingID,
			StartTime:  startTime,
			Duration:   duration,
			Category:   req.Category,
			Notes:      req.GetNotes(),
			CouponCode: req.GetCouponCode(),
		})
		payload, err := intent.Encode()
		if err != nil {
			return pendingIntent{}, errs.Mark(err, ErrBookingFailure)
		}

		now := b.clock.Now()
		metadataID := uuid.New()
		err = b.metadata.Create(ctx, tx, PendingMetadataSnapshot{
			ID:        metadataID,
			UserID:    userID,
			Payload:   payload,
			CreatedAt: now,
			ExpiresAt: now.Add(PendingMetadataTTL),
		})
		if err != nil {
			return pendingIntent{}, errs.Mark(err, ErrBookingFailure)
		}
		return pendingIntent{bookingID: bookingID, metadataID: metadataID}, nil
	})
	if err != nil {
		return nil, err
	}

	customerID, err := ensureGatewayCustomer(ctx, b.users, b.gateway, userSnap)
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutFailed)
	}

	charge, err := b.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		CustomerID:        customerID,
		BillingType:       billingTypeOrDefault(req.BillingType),
		Value:             float64(amountCents) / 100,
		DueDate:           b.clock.Now().AddDate(0, 0, checkoutDueDays).Format("2006-01-02"),
		Description:       "Reserva " + startTime.Format("02/01/2006 15:04") + " - " + req.Category,
		ExternalReference: EncodeReference(userID, pending.metadataID),
	})
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutFailed)
	}

	if err := b.correlateMetadata(ctx, pending.metadataID, charge.ID); err != nil {
		slog.Warn("failed to correlate pending metadata with charge",
			"metadata_id", pending.metadataID, "gateway_payment_id", charge.ID, "error", err.Error())
	}

	return &CheckoutResult{
		BookingID:        &pending.bookingID,
		GatewayPaymentID: charge.ID,
		CheckoutURL:      charge.InvoiceURL,
		AmountCents:      amountCents,
	}, nil
}

// CancelBooking transitions the booking to canceled, freeing its slot.
// For a paid booking the customer chooses between a processor refund and
// a refund coupon; either path is best-effort once the cancellation
// itself has committed.
func (b *bookingCommandsImpl) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, refundType string) error {
	snap, err := b.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBookingNotFound
		}
		return errs.Mark(err, ErrBookingFailure)
	}
	if snap.UserID != userID {
		return ErrNotBookingOwner
	}

	if err := b.transition(ctx, snap, booking.StatusCanceled); err != nil {
		return err
	}

	if snap.PaymentID == nil || snap.AmountCents == nil || *snap.AmountCents == 0 {
		return nil
	}

	switch refundType {
	case "coupon":
		expiresAt := b.clock.Now().AddDate(0, refundCouponValidityMonths, 0)
		if _, err := b.coupons.IssueRefundCoupon(ctx, userID, *snap.AmountCents, expiresAt); err != nil {
			slog.Error("failed to issue refund coupon for canceled booking",
				"booking_id", bookingID, "user_id", userID, "error", err.Error())
		}
	case "direct":
		paySnap, err := b.payments.FindByID(ctx, *snap.PaymentID)
		if err != nil {
			slog.Error("failed to load payment for refund", "booking_id", bookingID, "error", err.Error())
			return nil
		}
		if err := b.gateway.RefundPayment(ctx, paySnap.GatewayPaymentID, paySnap.AmountCents); err != nil {
			slog.Error("processor refund request failed",
				"booking_id", bookingID, "gateway_payment_id", paySnap.GatewayPaymentID, "error", err.Error())
		}
	}
	return nil
}

func (b *bookingCommandsImpl) SetStatus(ctx context.Context, bookingID uuid.UUID, status string) error {
	next, err := booking.NewStatus(status)
	if err != nil {
		return errs.Mark(err, ErrInvalidTransition)
	}

	snap, err := b.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBookingNotFound
		}
		return errs.Mark(err, ErrBookingFailure)
	}

	return b.transition(ctx, snap, next)
}

func (b *bookingCommandsImpl) transition(ctx context.Context, snap *BookingSnapshot, next booking.Status) error {
	current, err := booking.NewStatus(snap.Status)
	if err != nil {
		return errs.Mark(err, ErrBookingFailure)
	}
	if !current.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	affected, err := shared.RunInTx(ctx, b.pool, func(tx db.DBTX) (int64, error) {
		return b.bookings.UpdateStatus(ctx, tx, snap.ID, current, next)
	})
	if err != nil {
		return errs.Mark(err, ErrBookingFailure)
	}
	if affected == 0 {
		// Someone else moved the booking first.
		return ErrInvalidTransition
	}
	return nil
}

func (b *bookingCommandsImpl) validateWindow(startTime time.Time, duration time.Duration) error {
	slot, err := booking.SlotFromTime(startTime)
	if err != nil {
		return errs.Mark(err, ErrInvalidBookingTime)
	}
	if startTime.Minute() != 0 || startTime.Second() != 0 {
		return ErrInvalidBookingTime
	}
	if startTime.Before(b.minDate) {
		return ErrDateBelowMinimum
	}
	if slot.IsPast(b.clock.Now()) {
		return ErrSlotInPast
	}
	return nil
}

func (b *bookingCommandsImpl) resolveCoupon(ctx context.Context, userID uuid.UUID, req reqdto.CreateBookingRequest) (*coupon.Coupon, error) {
	code := req.GetCouponCode()
	if code == nil {
		return nil, nil
	}

	entity, err := b.couponStore.FindByCode(ctx, *code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, errs.Mark(err, ErrBookingFailure)
	}
	if entity.UserID() != userID {
		return nil, ErrCouponNotFound
	}
	if err := entity.ValidateRedemption(b.clock.Now()); err != nil {
		return nil, errs.Mark(err, ErrCouponNotApplicable)
	}
	if cat := entity.ServiceCategory(); cat != nil && *cat != req.Category {
		return nil, ErrCouponNotApplicable
	}
	return entity, nil
}

// checkConflicts rejects a window overlapping any slot-holding booking or
// any admin-blocked hour.
func (b *bookingCommandsImpl) checkConflicts(ctx context.Context, tx db.DBTX, startTime time.Time, duration time.Duration) error {
	conflicts, err := b.bookings.ListConflicting(ctx, tx, startTime, startTime.Add(duration))
	if err != nil {
		return errs.Mark(err, ErrBookingFailure)
	}
	if len(conflicts) > 0 {
		return ErrBookingConflict
	}

	blockedHours, err := b.blockedSlots.ListHoursByDay(ctx, startTime)
	if err != nil {
		return errs.Mark(err, ErrBookingFailure)
	}
	for _, hour := range blockedHours {
		slot, err := booking.NewSlot(startTime, hour)
		if err != nil {
			continue
		}
		if booking.Overlaps(slot, startTime, duration) {
			return ErrSlotBlocked
		}
	}
	return nil
}

func (b *bookingCommandsImpl) correlateMetadata(ctx context.Context, metadataID uuid.UUID, gatewayPaymentID string) error {
	_, err := shared.RunInTx(ctx, b.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, b.metadata.BindGatewayID(ctx, tx, metadataID, gatewayPaymentID)
	})
	return err
}

func billingTypeOrDefault(billingType string) string {
	if billingType == "" {
		return "UNDEFINED"
	}
	return billingType
}
