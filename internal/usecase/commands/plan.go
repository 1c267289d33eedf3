package commands

import (
	"context"
	"errors"
	"log/slog"

	"studio-backend/internal/domain/payment"
	"studio-backend/internal/domain/plan"
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
	ErrPlanNotFound         = errs.New("plan not found")
	ErrSubscriptionNotFound = errs.New("subscription not found")
	ErrNotSubscriptionOwner = errs.New("subscription belongs to another user")
	ErrPlanAlreadyCanceled  = errs.New("plan is already canceled")
	ErrPlanFailure          = errs.New("plan operation failed")
)

type SubscriptionStore interface {
	Create(ctx context.Context, tx db.DBTX, s *plan.Subscription) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, s *plan.Subscription) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*plan.Subscription, error)
	FindByUserAndPlan(ctx context.Context, tx db.DBTX, userID, planID uuid.UUID) (*plan.Subscription, error)
	FindByGatewaySubID(ctx context.Context, tx db.DBTX, gatewaySubID string) (*plan.Subscription, error)
	FindPlan(ctx context.Context, id uuid.UUID) (*PlanCatalogSnapshot, error)
}

type PlanCommands interface {
	Subscribe(ctx context.Context, userID uuid.UUID, req reqdto.SubscribeRequest) (*CheckoutResult, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID, refundType string) error

	// ActivateFromPayment and RenewByGatewaySubID are the reconciliation
	// entry points; they run inside the webhook's transaction.
	ActivateFromPayment(ctx context.Context, tx db.DBTX, userID uuid.UUID, intent payment.PlanIntent) (*plan.Subscription, error)
	RenewByGatewaySubID(ctx context.Context, tx db.DBTX, gatewaySubID string) (*plan.Subscription, error)
	AttachGatewaySubscription(ctx context.Context, tx db.DBTX, sub *plan.Subscription, gatewaySubID string) error

	// RegisterRecurring and IssueCycleCoupons are best-effort follow-ups
	// run after the reconciliation transaction commits.
	RegisterRecurring(ctx context.Context, sub *plan.Subscription) error
	IssueCycleCoupons(ctx context.Context, sub *plan.Subscription)
}

type planCommandsImpl struct {
	subscriptions SubscriptionStore
	payments      PaymentStore
	metadata      PendingMetadataStore
	users         GatewayUserStore
	coupons       CouponCommands
	gateway       PaymentGateway
	pool          *pgxpool.Pool
	clock         clock.Clock
}

func NewPlanCommands(
	subscriptions SubscriptionStore,
	payments PaymentStore,
	metadata PendingMetadataStore,
	users GatewayUserStore,
	coupons CouponCommands,
	gw PaymentGateway,
	pool *pgxpool.Pool,
	clk clock.Clock,
) PlanCommands {
	return &planCommandsImpl{
		subscriptions: subscriptions,
		payments:      payments,
		metadata:      metadata,
		users:         users,
		coupons:       coupons,
		gateway:       gw,
		pool:          pool,
		clock:         clk,
	}
}

// Subscribe parks the plan intent and opens a checkout for the first
// period. The subscription record itself is only materialized when the
// payment notification arrives.
func (p *planCommandsImpl) Subscribe(ctx context.Context, userID uuid.UUID, req reqdto.SubscribeRequest) (*CheckoutResult, error) {
	cycle, err := plan.NewCycle(req.Cycle)
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	catalog, err := p.subscriptions.FindPlan(ctx, req.PlanID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	if !catalog.Active {
		return nil, ErrPlanNotFound
	}

	amountCents := catalog.MonthlyPriceCents
	if cycle == plan.CycleYearly {
		amountCents = catalog.YearlyPriceCents
	}

	userSnap, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	intent := payment.NewPlanIntent(payment.PlanIntent{
		PlanID:      catalog.ID,
		Cycle:       cycle.String(),
		AmountCents: amountCents,
	})
	payload, err := intent.Encode()
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	now := p.clock.Now()
	metadataID := uuid.New()
	_, err = shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, p.metadata.Create(ctx, tx, PendingMetadataSnapshot{
			ID:        metadataID,
			UserID:    userID,
			Payload:   payload,
			CreatedAt: now,
			ExpiresAt: now.Add(PendingMetadataTTL),
		})
	})
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	customerID, err := ensureGatewayCustomer(ctx, p.users, p.gateway, userSnap)
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutFailed)
	}

	charge, err := p.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		CustomerID:        customerID,
		BillingType:       billingTypeOrDefault(req.BillingType),
		Value:             float64(amountCents) / 100,
		DueDate:           now.AddDate(0, 0, checkoutDueDays).Format("2006-01-02"),
		Description:       "Assinatura " + catalog.Name + " (" + cycle.String() + ")",
		ExternalReference: EncodeReference(userID, metadataID),
	})
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutFailed)
	}

	if err := p.correlateMetadata(ctx, metadataID, charge.ID); err != nil {
		slog.Warn("failed to correlate pending metadata with charge",
			"metadata_id", metadataID, "gateway_payment_id", charge.ID, "error", err.Error())
	}

	return &CheckoutResult{
		GatewayPaymentID: charge.ID,
		CheckoutURL:      charge.InvoiceURL,
		AmountCents:      amountCents,
	}, nil
}

// CancelSubscription marks the record canceled and voids its unused
// coupons in the same transaction. Processor-side cancellation and the
// refund are best-effort afterwards.
func (p *planCommandsImpl) CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID, refundType string) error {
	sub, err := shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (*plan.Subscription, error) {
		sub, err := p.subscriptions.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrSubscriptionNotFound
			}
			return nil, errs.Mark(err, ErrPlanFailure)
		}
		if sub.UserID() != userID {
			return nil, ErrNotSubscriptionOwner
		}

		if err := sub.Cancel(); err != nil {
			if errors.Is(err, plan.ErrAlreadyCanceled) {
				return nil, ErrPlanAlreadyCanceled
			}
			return nil, errs.Mark(err, ErrPlanFailure)
		}
		if err := p.subscriptions.Update(ctx, tx, sub); err != nil {
			return nil, errs.Mark(err, ErrPlanFailure)
		}

		if _, err := p.coupons.VoidPlanCoupons(ctx, tx, subscriptionID); err != nil {
			return nil, err
		}
		return sub, nil
	})
	if err != nil {
		return err
	}

	if gwSubID := sub.GatewaySubID(); gwSubID != nil && *gwSubID != "" {
		if err := p.gateway.CancelSubscription(ctx, *gwSubID); err != nil {
			slog.Error("processor subscription cancellation failed",
				"subscription_id", subscriptionID, "gateway_sub_id", *gwSubID, "error", err.Error())
		}
	}

	switch refundType {
	case "coupon":
		expiresAt := p.clock.Now().AddDate(0, refundCouponValidityMonths, 0)
		if _, err := p.coupons.IssueRefundCoupon(ctx, userID, sub.AmountCents(), expiresAt); err != nil {
			slog.Error("failed to issue refund coupon for canceled plan",
				"subscription_id", subscriptionID, "user_id", userID, "error", err.Error())
		}
	case "direct":
		paySnap, err := p.payments.FindLatestByUserAndKind(ctx, userID, "plan")
		if err != nil {
			slog.Error("failed to find plan payment for refund",
				"subscription_id", subscriptionID, "user_id", userID, "error", err.Error())
			return nil
		}
		if err := p.gateway.RefundPayment(ctx, paySnap.GatewayPaymentID, paySnap.AmountCents); err != nil {
			slog.Error("processor refund request failed",
				"subscription_id", subscriptionID, "gateway_payment_id", paySnap.GatewayPaymentID, "error", err.Error())
		}
	}
	return nil
}

// ActivateFromPayment creates the subscription on first payment, or
// resets the entitlement window in place when one already exists for the
// same user and plan (idempotent re-activation).
func (p *planCommandsImpl) ActivateFromPayment(ctx context.Context, tx db.DBTX, userID uuid.UUID, intent payment.PlanIntent) (*plan.Subscription, error) {
	cycle, err := plan.NewCycle(intent.Cycle)
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	now := p.clock.Now()

	existing, err := p.subscriptions.FindByUserAndPlan(ctx, tx, userID, intent.PlanID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	if existing != nil {
		if err := existing.Reactivate(cycle, intent.AmountCents, now); err != nil {
			return nil, errs.Mark(err, ErrPlanFailure)
		}
		if err := p.subscriptions.Update(ctx, tx, existing); err != nil {
			return nil, errs.Mark(err, ErrPlanFailure)
		}
		return existing, nil
	}

	sub, err := plan.Activate(userID, intent.PlanID, cycle, intent.AmountCents, now)
	if err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	if _, err := p.subscriptions.Create(ctx, tx, sub); err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	return sub, nil
}

// RenewByGatewaySubID extends the entitlement window by one more period
// computed from the current end date, not from the payment's arrival.
func (p *planCommandsImpl) RenewByGatewaySubID(ctx context.Context, tx db.DBTX, gatewaySubID string) (*plan.Subscription, error) {
	sub, err := p.subscriptions.FindByGatewaySubID(ctx, tx, gatewaySubID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errs.Mark(err, ErrPlanFailure)
	}

	if err := sub.Renew(); err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	if err := p.subscriptions.Update(ctx, tx, sub); err != nil {
		return nil, errs.Mark(err, ErrPlanFailure)
	}
	return sub, nil
}

// AttachGatewaySubscription persists the processor's subscription id on a
// subscription that was activated by the first recurring charge.
func (p *planCommandsImpl) AttachGatewaySubscription(ctx context.Context, tx db.DBTX, sub *plan.Subscription, gatewaySubID string) error {
	sub.BindGatewaySubscription(gatewaySubID)
	if err := p.subscriptions.Update(ctx, tx, sub); err != nil {
		return errs.Mark(err, ErrPlanFailure)
	}
	return nil
}

// RegisterRecurring creates the processor-side recurring subscription
// after the first payment and binds its id locally.
func (p *planCommandsImpl) RegisterRecurring(ctx context.Context, sub *plan.Subscription) error {
	userSnap, err := p.users.FindByID(ctx, sub.UserID())
	if err != nil {
		return errs.Mark(err, ErrPlanFailure)
	}
	customerID, err := ensureGatewayCustomer(ctx, p.users, p.gateway, userSnap)
	if err != nil {
		return errs.Mark(err, ErrPlanFailure)
	}

	gwCycle := "MONTHLY"
	if sub.Cycle() == plan.CycleYearly {
		gwCycle = "YEARLY"
	}

	gwSub, err := p.gateway.CreateSubscription(ctx, gateway.SubscriptionRequest{
		CustomerID:        customerID,
		BillingType:       "UNDEFINED",
		Value:             float64(sub.AmountCents()) / 100,
		NextDueDate:       sub.EndDate().Format("2006-01-02"),
		Cycle:             gwCycle,
		ExternalReference: sub.UserID().String(),
	})
	if err != nil {
		return errs.Mark(err, ErrPlanFailure)
	}

	sub.BindGatewaySubscription(gwSub.ID)
	_, err = shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, p.subscriptions.Update(ctx, tx, sub)
	})
	if err != nil {
		return errs.Mark(err, ErrPlanFailure)
	}
	return nil
}

// IssueCycleCoupons grants the plan's entitlement coupons for the current
// period. Failures are logged and swallowed; coupon issuance never rolls
// back an activation or renewal.
func (p *planCommandsImpl) IssueCycleCoupons(ctx context.Context, sub *plan.Subscription) {
	catalog, err := p.subscriptions.FindPlan(ctx, sub.PlanID())
	if err != nil {
		slog.Error("failed to load plan for coupon issuance",
			"subscription_id", sub.ID(), "plan_id", sub.PlanID(), "error", err.Error())
		return
	}
	if len(catalog.Entitlements) == 0 {
		return
	}

	codes, err := p.coupons.IssuePlanCoupons(ctx, sub.UserID(), sub.ID(), catalog.Entitlements, sub.EndDate())
	if err != nil {
		slog.Error("plan coupon issuance incomplete",
			"subscription_id", sub.ID(), "issued", len(codes), "error", err.Error())
		return
	}
	slog.Info("plan coupons issued", "subscription_id", sub.ID(), "count", len(codes))
}

func (p *planCommandsImpl) correlateMetadata(ctx context.Context, metadataID uuid.UUID, gatewayPaymentID string) error {
	_, err := shared.RunInTx(ctx, p.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, p.metadata.BindGatewayID(ctx, tx, metadataID, gatewayPaymentID)
	})
	return err
}
