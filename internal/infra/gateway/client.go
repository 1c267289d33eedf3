package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"studio-backend/internal/pkg/config"
	"studio-backend/internal/pkg/errs"
)

var (
	ErrGatewayDisabled  = errs.New("payment gateway is not configured")
	ErrGatewayRequest   = errs.New("payment gateway request failed")
	ErrCustomerNotFound = errs.New("gateway customer not found")
)

// MaxExternalReferenceLen is the processor's hard cap on the reference
// field. Anything longer is rejected, which is why full intents travel
// through the pending-metadata side channel instead.
const MaxExternalReferenceLen = 100

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var out Customer
	err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if len(req.ExternalReference) > MaxExternalReferenceLen {
		req.ExternalReference = req.ExternalReference[:MaxExternalReferenceLen]
	}
	var out Charge
	if err := c.do(ctx, http.MethodPost, "/payments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*GatewaySubscription, error) {
	if len(req.ExternalReference) > MaxExternalReferenceLen {
		req.ExternalReference = req.ExternalReference[:MaxExternalReferenceLen]
	}
	var out GatewaySubscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return c.do(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(subscriptionID), nil, nil)
}

func (c *Client) RefundPayment(ctx context.Context, paymentID string, amountCents int64) error {
	body := map[string]any{
		"value": float64(amountCents) / 100.0,
	}
	return c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/refund", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil {
		return ErrGatewayDisabled
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(err, "failed to encode gateway request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errs.Wrap(err, "failed to build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "gateway call failed"), ErrGatewayRequest)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to read gateway response"), ErrGatewayRequest)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrCustomerNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return errs.Mark(
				errs.Newf("gateway returned %d: %s", resp.StatusCode, apiErr.Errors[0].Description),
				ErrGatewayRequest,
			)
		}
		return errs.Mark(fmt.Errorf("gateway returned %d", resp.StatusCode), ErrGatewayRequest)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errs.Mark(errs.Wrap(err, "failed to decode gateway response"), ErrGatewayRequest)
		}
	}
	return nil
}
