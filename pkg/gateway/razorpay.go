package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable marks transient transport failures; the caller may retry.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrRejected marks a provider-side refusal; retrying will not help.
	ErrRejected = errors.New("payment gateway rejected request")
)

// Order is the provider-side order created before the client pays.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client is the gateway contract the payment engine depends on.
// VerifySignature and VerifyWebhookSignature are pure and never mutate
// provider state.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error)
	CreateRefund(ctx context.Context, gatewayPaymentID string, amount int64) (string, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
}

// RazorpayClient talks to the Razorpay REST API with basic auth and a
// bounded request timeout.
type RazorpayClient struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	log           *zap.Logger
}

func NewRazorpayClient(config utils.RazorpayConfig, log *zap.Logger) *RazorpayClient {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayClient{
		keyID:         config.KeyID,
		keySecret:     config.KeySecret,
		webhookSecret: config.WebhookSecret,
		baseURL:       config.BaseURL,
		httpClient:    &http.Client{Timeout: timeout},
		log:           log.With(zap.String("gateway", "razorpay")),
	}
}

func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder registers an order with the provider. Not retried here: a
// failed attempt may still have created an order server-side, so the engine
// checks for an existing pending payment before calling again.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	payload := map[string]any{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	var order Order
	if err := c.post(ctx, "/v1/orders", payload, &order); err != nil {
		return nil, err
	}

	c.log.Info("Gateway order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency),
	)

	return &order, nil
}

// CreateRefund issues a full or partial refund against a captured payment
// and returns the provider refund reference.
func (c *RazorpayClient) CreateRefund(ctx context.Context, gatewayPaymentID string, amount int64) (string, error) {
	payload := map[string]any{
		"amount": amount,
	}

	var refund struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/v1/payments/%s/refund", gatewayPaymentID)
	if err := c.post(ctx, path, payload, &refund); err != nil {
		return "", err
	}

	c.log.Info("Gateway refund created",
		zap.String("refund_id", refund.ID),
		zap.String("payment_id", gatewayPaymentID),
	)

	return refund.ID, nil
}

// VerifySignature checks the HMAC-SHA256 the provider computes over
// "<order_id>|<payment_id>". Constant-time comparison; a mismatch is a
// false return, not an error.
func (c *RazorpayClient) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature HMAC over the raw
// webhook body. Webhooks are signed with a separate secret.
func (c *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (c *RazorpayClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Gateway request failed", zap.Error(err), zap.String("path", path))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode gateway response: %w", err)
			}
		}
		return nil
	case resp.StatusCode >= 500:
		c.log.Error("Gateway server error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		c.log.Warn("Gateway rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
			zap.ByteString("body", respBody),
		)
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, respBody)
	}
}
