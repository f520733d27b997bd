package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL              = "https://api.paystack.co"
	defaultMinorUnit            = 100
	responseBodyReadLimit int64 = 1 << 20
)

var errSecretKeyRequired = errors.New("paystack secret key is required")

// GatewayError reports a transport failure or a non-2xx gateway response.
// Payment initiation is never retried: a duplicated initialization must not
// happen silently.
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paystack: %s: %v", e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.StatusCode)
	}
	return "paystack: " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client initializes transactions against the Paystack API. The secret key
// is server-held and never accepted from a request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	minorUnit  int
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMinorUnit sets the major-to-minor currency multiplier. Paystack wants
// kobo, so the default is 100.
func WithMinorUnit(factor int) Option {
	return func(c *Client) {
		if factor > 0 {
			c.minorUnit = factor
		}
	}
}

func NewClient(secretKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(secretKey)
	if trimmedKey == "" {
		return nil, errSecretKeyRequired
	}

	client := &Client{
		secretKey:  trimmedKey,
		baseURL:    defaultBaseURL,
		minorUnit:  defaultMinorUnit,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// minorUnits converts a major-unit amount to the gateway's minor unit.
// Going through decimals avoids the binary-float truncation that would turn
// 19.99 * 100 into 1998.
func minorUnits(amountMajor float64, factor int) int64 {
	return decimal.NewFromFloat(amountMajor).
		Mul(decimal.NewFromInt(int64(factor))).
		Round(0).
		IntPart()
}

type initializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// InitializeResponse relays the gateway payload as-is. Data stays raw JSON
// so the authorization handoff reaches the caller unmodified.
type InitializeResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize converts amountMajor to the gateway's minor unit and asks the
// gateway to start a transaction. The caller owns nothing past
// the returned authorization handoff.
func (c *Client) Initialize(ctx context.Context, email string, amountMajor float64) (*InitializeResponse, error) {
	payload := initializeRequest{
		Email:     email,
		Amount:    minorUnits(amountMajor, c.minorUnit),
		Reference: uuid.NewString(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/transaction/initialize",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, &GatewayError{Message: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Message: "do request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "transaction initialize failed",
		}
	}

	var result InitializeResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}

	return &result, nil
}
