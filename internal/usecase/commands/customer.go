package commands

import (
	"context"
	"log/slog"

	"studio-backend/internal/infra/gateway"

	"github.com/google/uuid"
)

type GatewayUserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	SetGatewayCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

// ensureGatewayCustomer returns the processor-side customer id for a user,
// registering one on first checkout. The local mapping update is
// best-effort; a failure only means one extra CreateCustomer call later.
func ensureGatewayCustomer(ctx context.Context, users GatewayUserStore, gw PaymentGateway, snap *UserSnapshot) (string, error) {
	if snap.GatewayCustomerID != nil && *snap.GatewayCustomerID != "" {
		return *snap.GatewayCustomerID, nil
	}

	req := gateway.CustomerRequest{
		Name:              snap.Name,
		Email:             snap.Email,
		ExternalReference: snap.ID.String(),
	}
	if snap.Phone != nil {
		req.Phone = *snap.Phone
	}

	customer, err := gw.CreateCustomer(ctx, req)
	if err != nil {
		return "", err
	}

	if err := users.SetGatewayCustomerID(ctx, snap.ID, customer.ID); err != nil {
		slog.Warn("failed to persist gateway customer id", "user_id", snap.ID, "error", err.Error())
	}
	return customer.ID, nil
}
