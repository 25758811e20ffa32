// Package toss implements the server-to-server confirmation client for the
// Toss Payments gateway. One confirm call per incoming request, never
// retried: the gateway is the authority for whether a charge took place, and
// re-sending without an idempotency key could double-charge.
package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

const confirmPath = "/v1/payments/confirm"

// ConfirmRequest carries the fields the gateway needs to settle a charge
// that the buyer already authorized in the browser.
type ConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// Confirmation is the gateway's canonical payment object for an accepted
// charge. Raw preserves the full gateway response body for API callers that
// echo it verbatim.
type Confirmation struct {
	TransactionID string
	OrderID       string
	Method        string
	Amount        int64
	Status        string
	ApprovedAt    *time.Time
	Raw           json.RawMessage
}

// GatewayError is a confirmation the gateway declined or could not process.
// Message carries the gateway's own error text when one was returned.
type GatewayError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway rejected confirmation (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway confirmation failed: %s", e.Message)
}

// Config holds the client's credentials and endpoints.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client confirms payments against the gateway. Calls run through a circuit
// breaker so a dead gateway fails fast instead of tying up request handlers;
// the breaker never adds attempts.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Confirmation]
}

// NewClient creates a gateway client from config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tosspayments.com"
	}

	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Confirmation](gobreaker.Settings{
			Name:        "toss-confirm",
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 10 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				// Gateway declines are business outcomes, not gateway
				// outages; they must not trip the breaker.
				var gwErr *GatewayError
				return err == nil || (errors.As(err, &gwErr) && gwErr.HTTPStatus > 0)
			},
		}),
	}
}

// Configured reports whether a secret credential is present.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

// Confirm sends exactly one confirmation attempt for the given order.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*Confirmation, error) {
	conf, err := c.breaker.Execute(func() (*Confirmation, error) {
		return c.confirm(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &GatewayError{Message: "payment gateway unavailable"}
		}
		return nil, err
	}
	return conf, nil
}

func (c *Client) confirm(ctx context.Context, req ConfirmRequest) (*Confirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal confirm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+confirmPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build confirm request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("read gateway response: %v", err), HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseGatewayError(respBody, resp.StatusCode)
	}

	return parseConfirmation(respBody)
}

// wire shape of an accepted confirmation; only the fields this service
// consumes are named, the rest rides along inside Raw.
type confirmResponse struct {
	ID          string     `json:"id"`
	PaymentKey  string     `json:"paymentKey"`
	OrderID     string     `json:"orderId"`
	Method      string     `json:"method"`
	TotalAmount int64      `json:"totalAmount"`
	Status      string     `json:"status"`
	ApprovedAt  *time.Time `json:"approvedAt"`
}

func parseConfirmation(body []byte) (*Confirmation, error) {
	var wire confirmResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("malformed gateway response: %v", err)}
	}

	txnID := wire.ID
	if txnID == "" {
		txnID = wire.PaymentKey
	}

	return &Confirmation{
		TransactionID: txnID,
		OrderID:       wire.OrderID,
		Method:        wire.Method,
		Amount:        wire.TotalAmount,
		Status:        wire.Status,
		ApprovedAt:    wire.ApprovedAt,
		Raw:           json.RawMessage(body),
	}, nil
}

func parseGatewayError(body []byte, status int) *GatewayError {
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Message != "" {
		return &GatewayError{Code: wire.Code, Message: wire.Message, HTTPStatus: status}
	}
	return &GatewayError{Message: "payment confirmation failed", HTTPStatus: status}
}
