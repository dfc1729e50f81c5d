package services

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
	"net/url"
	"strings"
	"time"
)

// ErrGatewayDisabled is returned when no API keys are configured.
var ErrGatewayDisabled = errors.New("razorpay gateway is not configured")

// RazorpayConfig holds the API credentials and endpoint.
type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

// RazorpayClient talks to the Razorpay REST API with basic auth.
type RazorpayClient struct {
	cfg        RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayClient creates a client. Missing keys leave it disabled.
func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether both API keys are present.
func (c *RazorpayClient) Enabled() bool {
	return c.cfg.KeyID != "" && c.cfg.KeySecret != ""
}

// OrderRequest is the body of POST /orders. Amount is in paise.
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order is the subset of the order entity the POS uses.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// QRCode is the subset of the QR code entity the POS uses.
type QRCode struct {
	ID            string `json:"id"`
	ImageURL      string `json:"image_url"`
	Status        string `json:"status"`
	FixedAmount   bool   `json:"fixed_amount"`
	PaymentAmount int64  `json:"payment_amount"`
}

// Payment is the subset of the payment entity the POS uses.
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

// RazorpayError is a non-2xx answer from the gateway.
type RazorpayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *RazorpayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("razorpay status %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("razorpay %d %s: %s", e.StatusCode, e.Code, e.Description)
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order for the given amount.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// FetchQRCode loads a QR code by id.
func (c *RazorpayClient) FetchQRCode(ctx context.Context, id string) (*QRCode, error) {
	var qr QRCode
	if err := c.do(ctx, http.MethodGet, "/payments/qr_codes/"+url.PathEscape(id), nil, &qr); err != nil {
		return nil, fmt.Errorf("fetch qr code: %w", err)
	}
	return &qr, nil
}

// FetchPayment loads a payment by id.
func (c *RazorpayClient) FetchPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, &payment); err != nil {
		return nil, fmt.Errorf("fetch payment: %w", err)
	}
	return &payment, nil
}

// VerifyPaymentSignature checks the checkout signature returned to the client
// after a successful payment.
func (c *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, c.cfg.KeySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against body.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return verifyHMAC(body, signature, secret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	actual, _ := hex.DecodeString(Sign(payload, secret))
	return hmac.Equal(actual, expected)
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *RazorpayClient) do(ctx context.Context, method, path string, body, out any) error {
	if !c.Enabled() {
		return ErrGatewayDisabled
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayErrorBody
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return &RazorpayError{StatusCode: resp.StatusCode, Code: apiErr.Error.Code, Description: apiErr.Error.Description}
		}
		return &RazorpayError{StatusCode: resp.StatusCode, Description: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
