package commands

import (
	"context"
	"strings"
	"time"

	"studio-backend/internal/domain/payment"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

// Intent resolution sources, in the order they are tried. Recorded as a
// metric label so we can see when the fallbacks start carrying traffic.
const (
	resolveSourceEventMetadata  = "event_metadata"
	resolveSourcePendingPayment = "pending_by_payment"
	resolveSourcePendingRef     = "pending_by_reference"
	resolveSourcePendingUser    = "pending_by_user"
	resolveSourceDescription    = "description"
	resolveSourceNone           = "none"
)

// chargeDescriptionLayout matches the description format emitted when a
// booking checkout is created ("Reserva 02/01/2006 15:04 - <category>").
const (
	chargeDescriptionPrefix = "Reserva "
	chargeDescriptionLayout = "02/01/2006 15:04"
)

type resolvedIntent struct {
	intent payment.Intent
	// metadataID is set when the intent came out of the pending metadata
	// table; the row is consumed once reconciliation commits.
	metadataID *uuid.UUID
	source     string
}

// resolveUser identifies the paying customer. The external reference is
// authoritative; pending metadata and the processor's customer record are
// fallbacks for charges created outside our checkout flow.
func (w *webhookCommandsImpl) resolveUser(ctx context.Context, tx db.DBTX, evt reqdto.WebhookPayment, now time.Time) (*UserSnapshot, error) {
	if userID, _ := ParseReference(evt.ExternalReference); userID != nil {
		snap, err := w.users.FindByID(ctx, *userID)
		if err == nil {
			return snap, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
	}

	meta, err := w.metadata.FindByGatewayID(ctx, tx, evt.ID, now)
	if err == nil {
		snap, err := w.users.FindByID(ctx, meta.UserID)
		if err == nil {
			return snap, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	if evt.Customer != "" {
		customer, err := w.gateway.GetCustomer(ctx, evt.Customer)
		if err != nil {
			return nil, errs.Wrap(err, "failed to look up processor customer")
		}
		if customer.Email != "" {
			snap, _, err := w.users.FindByEmail(ctx, customer.Email)
			if err == nil {
				return snap, nil
			}
			if !infra.IsKind(err, infra.KindNotFound) {
				return nil, err
			}
		}
	}
	return nil, nil
}

// resolveIntent recovers the customer's original request for a payment
// notification, trying the event payload, the pending metadata table and
// finally the charge description.
func (w *webhookCommandsImpl) resolveIntent(ctx context.Context, tx db.DBTX, evt reqdto.WebhookPayment, userID uuid.UUID, now time.Time) (resolvedIntent, error) {
	if len(evt.Metadata) > 0 {
		if intent, err := payment.DecodeIntent(evt.Metadata); err == nil {
			return resolvedIntent{intent: intent, source: resolveSourceEventMetadata}, nil
		}
	}

	meta, err := w.metadata.FindByGatewayID(ctx, tx, evt.ID, now)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return resolvedIntent{}, err
	}
	if meta != nil {
		if intent, err := payment.DecodeIntent(meta.Payload); err == nil {
			return resolvedIntent{intent: intent, metadataID: &meta.ID, source: resolveSourcePendingPayment}, nil
		}
	}

	if _, metaID := ParseReference(evt.ExternalReference); metaID != nil {
		meta, err := w.metadata.FindByID(ctx, tx, *metaID, now)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return resolvedIntent{}, err
		}
		if meta != nil && meta.UserID == userID {
			if intent, err := payment.DecodeIntent(meta.Payload); err == nil {
				return resolvedIntent{intent: intent, metadataID: &meta.ID, source: resolveSourcePendingRef}, nil
			}
		}
	}

	meta, err = w.metadata.FindLatestByUser(ctx, tx, userID, now)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return resolvedIntent{}, err
	}
	// The latest unexpired row is only trusted when it is not already
	// correlated with a different charge.
	if meta != nil && (meta.GatewayPaymentID == nil || *meta.GatewayPaymentID == evt.ID) {
		if intent, err := payment.DecodeIntent(meta.Payload); err == nil {
			return resolvedIntent{intent: intent, metadataID: &meta.ID, source: resolveSourcePendingUser}, nil
		}
	}

	if bi, ok := parseChargeDescription(evt.Description, w.location); ok {
		return resolvedIntent{intent: payment.NewBookingIntent(bi), source: resolveSourceDescription}, nil
	}

	return resolvedIntent{source: resolveSourceNone}, nil
}

// parseChargeDescription reconstructs a minimal booking intent from the
// human-readable charge description. Duration is unknown at this point, so
// the shortest bookable window is assumed.
func parseChargeDescription(desc string, loc *time.Location) (payment.BookingIntent, bool) {
	desc = strings.TrimSpace(desc)
	if !strings.HasPrefix(desc, chargeDescriptionPrefix) {
		return payment.BookingIntent{}, false
	}
	rest := strings.TrimPrefix(desc, chargeDescriptionPrefix)

	idx := strings.LastIndex(rest, " - ")
	if idx < 0 {
		return payment.BookingIntent{}, false
	}
	stamp, category := rest[:idx], strings.TrimSpace(rest[idx+3:])
	if category == "" {
		return payment.BookingIntent{}, false
	}

	startTime, err := time.ParseInLocation(chargeDescriptionLayout, strings.TrimSpace(stamp), loc)
	if err != nil {
		return payment.BookingIntent{}, false
	}

	return payment.BookingIntent{
		StartTime: startTime,
		Duration:  time.Hour,
		Category:  category,
	}, true
}
