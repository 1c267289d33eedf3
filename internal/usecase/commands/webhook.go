package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/domain/payment"
	"studio-backend/internal/domain/plan"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/pkg/metrics"
	"studio-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookOutcome classifies what a notification did. Every outcome is
// acknowledged to the processor; the distinction only feeds logs and
// metrics.
type WebhookOutcome string

const (
	WebhookProcessed  WebhookOutcome = "processed"
	WebhookDuplicate  WebhookOutcome = "duplicate"
	WebhookIgnored    WebhookOutcome = "ignored"
	WebhookUnresolved WebhookOutcome = "unresolved"
	WebhookError      WebhookOutcome = "error"
)

var errDuplicatePayment = errs.New("payment already recorded")

type WebhookUserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	FindByEmail(ctx context.Context, email string) (*UserSnapshot, string, error)
}

type WebhookCommands interface {
	ProcessPaymentEvent(ctx context.Context, req reqdto.PaymentWebhookRequest) (WebhookOutcome, error)
}

type webhookCommandsImpl struct {
	bookings      BookingStore
	payments      PaymentStore
	metadata      PendingMetadataStore
	users         WebhookUserStore
	coupons       CouponCommands
	plans         PlanCommands
	notifications NotificationStore
	gateway       PaymentGateway
	pool          *pgxpool.Pool
	clock         clock.Clock
	location      *time.Location
	metrics       *metrics.Metrics
}

func NewWebhookCommands(
	bookings BookingStore,
	payments PaymentStore,
	metadata PendingMetadataStore,
	users WebhookUserStore,
	coupons CouponCommands,
	plans PlanCommands,
	notifications NotificationStore,
	gw PaymentGateway,
	pool *pgxpool.Pool,
	clk clock.Clock,
	location *time.Location,
	m *metrics.Metrics,
) WebhookCommands {
	return &webhookCommandsImpl{
		bookings:      bookings,
		payments:      payments,
		metadata:      metadata,
		users:         users,
		coupons:       coupons,
		plans:         plans,
		notifications: notifications,
		gateway:       gw,
		pool:          pool,
		clock:         clk,
		location:      location,
		metrics:       m,
	}
}

// ProcessPaymentEvent reconciles one processor notification. It never
// propagates a retryable failure as a handler error; the caller always
// acknowledges, and the processor's retry schedule covers transient
// faults via the idempotent payment record.
func (w *webhookCommandsImpl) ProcessPaymentEvent(ctx context.Context, req reqdto.PaymentWebhookRequest) (WebhookOutcome, error) {
	outcome, err := w.process(ctx, req)
	if err != nil {
		if outcome == "" {
			outcome = WebhookError
		}
		slog.Error("webhook reconciliation failed",
			"event", req.Event, "gateway_payment_id", req.Payment.ID, "outcome", string(outcome), "error", err.Error())
	}
	w.metrics.WebhookEvents.WithLabelValues(req.Event, string(outcome)).Inc()
	return outcome, err
}

func (w *webhookCommandsImpl) process(ctx context.Context, req reqdto.PaymentWebhookRequest) (WebhookOutcome, error) {
	if !req.IsPaymentEvent() {
		return WebhookIgnored, nil
	}

	status, err := payment.ParseStatus(req.Payment.Status)
	if err != nil {
		slog.Warn("unknown payment status in webhook",
			"event", req.Event, "status", req.Payment.Status, "gateway_payment_id", req.Payment.ID)
		return WebhookIgnored, nil
	}

	if !status.IsSuccess() {
		return w.handleNonSuccess(ctx, req.Payment, status)
	}
	return w.handleSuccess(ctx, req.Payment, status)
}

// handleNonSuccess records the status transition and, for overdue and
// deleted charges, releases the pending slot they were holding.
func (w *webhookCommandsImpl) handleNonSuccess(ctx context.Context, evt reqdto.WebhookPayment, status payment.Status) (WebhookOutcome, error) {
	now := w.clock.Now()
	_, err := shared.RunInTx(ctx, w.pool, func(tx db.DBTX) (struct{}, error) {
		if err := w.payments.UpdateStatusByGatewayID(ctx, tx, evt.ID, status.String()); err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return struct{}{}, err
			}
		}

		if status != payment.StatusOverdue && status != payment.StatusDeleted {
			return struct{}{}, nil
		}

		meta, err := w.metadata.FindByGatewayID(ctx, tx, evt.ID, now)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return struct{}{}, nil
			}
			return struct{}{}, err
		}

		intent, err := payment.DecodeIntent(meta.Payload)
		if err == nil && intent.Kind == payment.IntentBooking && intent.Booking.BookingID != nil {
			if _, err := w.bookings.UpdateStatus(ctx, tx, *intent.Booking.BookingID, booking.StatusPending, booking.StatusRejected); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, w.metadata.Delete(ctx, tx, meta.ID)
	})
	if err != nil {
		return WebhookError, err
	}
	return WebhookProcessed, nil
}

// reconcileResult carries what the transaction decided, for the
// best-effort follow-ups that run after commit.
type reconcileResult struct {
	user       *UserSnapshot
	source     string
	bookingID  *uuid.UUID
	sub        *plan.Subscription
	firstCycle bool
	renewed    bool
}

func (w *webhookCommandsImpl) handleSuccess(ctx context.Context, evt reqdto.WebhookPayment, status payment.Status) (WebhookOutcome, error) {
	now := w.clock.Now()

	res, err := shared.RunInTx(ctx, w.pool, func(tx db.DBTX) (reconcileResult, error) {
		user, err := w.resolveUser(ctx, tx, evt, now)
		if err != nil {
			return reconcileResult{}, err
		}
		if user == nil {
			return reconcileResult{source: resolveSourceNone}, nil
		}

		resolved, err := w.resolveIntent(ctx, tx, evt, user.ID, now)
		if err != nil {
			return reconcileResult{}, err
		}

		kind := "booking"
		switch {
		case evt.Subscription != "" || resolved.intent.Kind == payment.IntentPlan:
			kind = "plan"
		case resolved.source == resolveSourceNone:
			kind = "unknown"
		}

		paymentID, err := w.recordPayment(ctx, tx, evt, user.ID, status, kind)
		if err != nil {
			return reconcileResult{}, err
		}

		result := reconcileResult{user: user, source: resolved.source}
		switch {
		case evt.Subscription != "":
			sub, err := w.reconcileRecurring(ctx, tx, evt.Subscription, user.ID, resolved)
			if err != nil {
				return reconcileResult{}, err
			}
			result.sub = sub
			result.renewed = true

		case resolved.intent.Kind == payment.IntentPlan:
			sub, err := w.plans.ActivateFromPayment(ctx, tx, user.ID, *resolved.intent.Plan)
			if err != nil {
				return reconcileResult{}, err
			}
			result.sub = sub
			result.firstCycle = sub.GatewaySubID() == nil

		case resolved.intent.Kind == payment.IntentBooking:
			bookingID, err := w.reconcileBooking(ctx, tx, user.ID, *resolved.intent.Booking, paymentID, evt)
			if err != nil {
				return reconcileResult{}, err
			}
			result.bookingID = bookingID

		default:
			// Money arrived but nothing tells us what for. The payment
			// row keeps it from being lost; an operator follows up.
			slog.Warn("payment received without a recoverable intent",
				"gateway_payment_id", evt.ID, "user_id", user.ID, "description", evt.Description)
		}

		if resolved.metadataID != nil {
			if err := w.metadata.Delete(ctx, tx, *resolved.metadataID); err != nil {
				return reconcileResult{}, err
			}
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, errDuplicatePayment) {
			return WebhookDuplicate, nil
		}
		return WebhookError, err
	}

	w.metrics.IntentResolutions.WithLabelValues(res.source).Inc()
	if res.user == nil {
		slog.Warn("could not resolve user for payment webhook",
			"gateway_payment_id", evt.ID, "customer", evt.Customer, "reference", evt.ExternalReference)
		return WebhookUnresolved, nil
	}
	if res.source == resolveSourceNone && res.sub == nil && res.bookingID == nil {
		return WebhookUnresolved, nil
	}

	w.runFollowUps(ctx, evt, res)
	return WebhookProcessed, nil
}

func (w *webhookCommandsImpl) recordPayment(ctx context.Context, tx db.DBTX, evt reqdto.WebhookPayment, userID uuid.UUID, status payment.Status, kind string) (uuid.UUID, error) {
	snap := PaymentSnapshot{
		ID:               uuid.New(),
		GatewayPaymentID: evt.ID,
		UserID:           userID,
		AmountCents:      evt.AmountCents(),
		Status:           status.String(),
		Kind:             kind,
	}
	if evt.Description != "" {
		desc := evt.Description
		snap.Description = &desc
	}

	id, err := w.payments.TryInsert(ctx, tx, snap)
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return uuid.Nil, errDuplicatePayment
		}
		return uuid.Nil, err
	}
	return id, nil
}

// reconcileRecurring handles a charge tied to a processor-side
// subscription: a renewal when we know the subscription id, or the first
// charge of a recurring plan we have not activated yet.
func (w *webhookCommandsImpl) reconcileRecurring(ctx context.Context, tx db.DBTX, gatewaySubID string, userID uuid.UUID, resolved resolvedIntent) (*plan.Subscription, error) {
	sub, err := w.plans.RenewByGatewaySubID(ctx, tx, gatewaySubID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}
	if resolved.intent.Kind != payment.IntentPlan {
		return nil, err
	}

	sub, err = w.plans.ActivateFromPayment(ctx, tx, userID, *resolved.intent.Plan)
	if err != nil {
		return nil, err
	}
	if err := w.plans.AttachGatewaySubscription(ctx, tx, sub, gatewaySubID); err != nil {
		return nil, err
	}
	return sub, nil
}

// reconcileBooking confirms the pending booking the checkout created, or
// materializes one when the charge was created out of band.
func (w *webhookCommandsImpl) reconcileBooking(ctx context.Context, tx db.DBTX, userID uuid.UUID, bi payment.BookingIntent, paymentID uuid.UUID, evt reqdto.WebhookPayment) (*uuid.UUID, error) {
	if bi.BookingID != nil {
		return w.confirmBooking(ctx, tx, userID, *bi.BookingID, bi.CouponCode, paymentID)
	}

	// No booking row to confirm. If a booking by the same user already
	// covers this window, the link was lost; adopt it instead of
	// double-booking the slot.
	conflicts, err := w.bookings.ListConflicting(ctx, tx, bi.StartTime, bi.StartTime.Add(bi.Duration))
	if err != nil {
		return nil, err
	}
	for i := range conflicts {
		if conflicts[i].UserID == userID && conflicts[i].StartTime.Equal(bi.StartTime) {
			return w.confirmBooking(ctx, tx, userID, conflicts[i].ID, bi.CouponCode, paymentID)
		}
	}
	if len(conflicts) > 0 {
		slog.Error("paid booking window is occupied by another customer",
			"gateway_payment_id", evt.ID, "user_id", userID, "start_time", bi.StartTime)
		return nil, nil
	}

	entity, err := booking.NewBooking(userID, bi.StartTime, bi.Duration, bi.Category, bi.Notes, booking.StatusAccepted)
	if err != nil {
		return nil, err
	}
	bookingID, err := w.bookings.Create(ctx, tx, entity)
	if err != nil {
		return nil, err
	}
	if err := w.bookings.AttachPayment(ctx, tx, bookingID, paymentID); err != nil {
		return nil, err
	}
	w.redeemBookingCoupon(ctx, tx, bi.CouponCode, userID, bookingID)
	return &bookingID, nil
}

func (w *webhookCommandsImpl) confirmBooking(ctx context.Context, tx db.DBTX, userID, bookingID uuid.UUID, couponCode *string, paymentID uuid.UUID) (*uuid.UUID, error) {
	rows, err := w.bookings.UpdateStatus(ctx, tx, bookingID, booking.StatusPending, booking.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		snap, err := w.bookings.FindByIDTx(ctx, tx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("paid booking no longer exists", "booking_id", bookingID)
				return nil, nil
			}
			return nil, err
		}
		if snap.Status == string(booking.StatusRejected) || snap.Status == string(booking.StatusCanceled) {
			// The slot was released before the money arrived. Keep the
			// payment recorded and let support sort out the refund.
			slog.Warn("payment arrived for a released booking",
				"booking_id", bookingID, "status", snap.Status)
		}
	}

	if err := w.bookings.AttachPayment(ctx, tx, bookingID, paymentID); err != nil {
		return nil, err
	}
	w.redeemBookingCoupon(ctx, tx, couponCode, userID, bookingID)
	return &bookingID, nil
}

// redeemBookingCoupon marks the coupon used now that the discounted charge
// is paid. Business rejections (used, expired, foreign) are logged and
// swallowed; only infrastructure failures abort reconciliation.
func (w *webhookCommandsImpl) redeemBookingCoupon(ctx context.Context, tx db.DBTX, code *string, userID, bookingID uuid.UUID) {
	if code == nil || *code == "" {
		return
	}
	if err := w.coupons.RedeemTx(ctx, tx, *code, userID, bookingID); err != nil {
		slog.Warn("coupon redemption skipped during reconciliation",
			"booking_id", bookingID, "user_id", userID, "error", err.Error())
	}
}

// runFollowUps performs the post-commit side effects. All of them are
// best-effort: the reconciled state is already durable.
func (w *webhookCommandsImpl) runFollowUps(ctx context.Context, evt reqdto.WebhookPayment, res reconcileResult) {
	if res.sub != nil {
		if res.firstCycle {
			if err := w.plans.RegisterRecurring(ctx, res.sub); err != nil {
				slog.Error("failed to register recurring subscription",
					"subscription_id", res.sub.ID(), "error", err.Error())
			}
		}
		w.plans.IssueCycleCoupons(ctx, res.sub)
	}

	template := "booking_confirmed"
	if res.sub != nil {
		template = "plan_activated"
		if res.renewed {
			template = "plan_renewed"
		}
	}

	payload, err := json.Marshal(map[string]any{
		"gateway_payment_id": evt.ID,
		"amount_cents":       evt.AmountCents(),
	})
	if err != nil {
		return
	}
	err = w.notifications.Enqueue(ctx, w.pool, NotificationMessage{
		UserID:   res.user.ID,
		Channel:  "email",
		Template: template,
		Payload:  payload,
	})
	if err != nil {
		slog.Warn("failed to enqueue payment notification",
			"user_id", res.user.ID, "template", template, "error", err.Error())
	}
}
