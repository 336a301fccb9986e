// Package accountapi is the HTTP client for the remote account service that owns
// customer addresses.
package accountapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tiwac100/hydrogen/internal/domain"
	apperrors "github.com/tiwac100/hydrogen/pkg/errors"
	"github.com/tiwac100/hydrogen/pkg/httpclient"
	"github.com/tiwac100/hydrogen/pkg/tracing"
)

const (
	serviceName   = "account-service"
	tracerName    = "github.com/tiwac100/hydrogen/internal/accountapi"
	addressesPath = "/api/v1/customers/me/addresses"
)

// UnavailableMessage is shown to the customer when the account service cannot be reached.
const UnavailableMessage = "account service unavailable"

// CircuitOpenFallback turns an open circuit into a user-presentable error.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable(UnavailableMessage)
}

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client calls the account service's customer address API on behalf of a customer.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a client for the account service at baseURL.
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type listResponse struct {
	Data domain.AddressCollection `json:"data"`
}

type createResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListAddresses returns the customer's addresses and default address.
func (c *Client) ListAddresses(ctx context.Context, token string) (*domain.AddressCollection, error) {
	var resp listResponse
	if err := c.do(ctx, "list_addresses", http.MethodGet, addressesPath, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Addresses == nil {
		resp.Data.Addresses = []domain.Address{}
	}
	return &resp.Data, nil
}

// CreateAddress creates an address and returns the identifier the service assigned.
func (c *Client) CreateAddress(ctx context.Context, token string, fields domain.AddressInput) (string, error) {
	var resp createResponse
	if err := c.do(ctx, "create_address", http.MethodPost, addressesPath, token, fields, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("%s: create address response carried no id", serviceName)
	}
	return resp.Data.ID, nil
}

// UpdateAddress replaces the supplied fields of an existing address.
func (c *Client) UpdateAddress(ctx context.Context, token, id string, fields domain.AddressInput) error {
	return c.do(ctx, "update_address", http.MethodPut, addressPath(id), token, fields, nil)
}

// DeleteAddress deletes an address.
func (c *Client) DeleteAddress(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_address", http.MethodDelete, addressPath(id), token, nil, nil)
}

// SetDefaultAddress makes id the customer's default address.
func (c *Client) SetDefaultAddress(ctx context.Context, token, id string) error {
	return c.do(ctx, "set_default_address", http.MethodPut, addressPath(id)+"/default", token, nil, nil)
}

// Ping checks that the account service answers its liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/live", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", serviceName, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping %s: status %d", serviceName, resp.StatusCode)
	}
	return nil
}

func addressPath(id string) string {
	return addressesPath + "/" + url.PathEscape(id)
}

// do sends one request and decodes the "data" envelope into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx, span := tracing.StartClientSpan(ctx, tracerName, req, attribute.String("account.operation", op))
	defer span.End()

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.WarnContext(ctx, "account service call failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("call %s %s: %w", serviceName, op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := httpclient.ParseResponseError(resp, serviceName)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			c.logger.WarnContext(ctx, "account service returned unstructured error",
				slog.String("operation", op),
				slog.Int("status", resp.StatusCode),
			)
		}
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
