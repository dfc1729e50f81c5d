package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/services"
)

// PaymentGateway is the subset of the Razorpay API the checkout uses.
type PaymentGateway interface {
	Enabled() bool
	CreateOrder(ctx context.Context, req services.OrderRequest) (*services.Order, error)
	FetchQRCode(ctx context.Context, id string) (*services.QRCode, error)
	FetchPayment(ctx context.Context, id string) (*services.Payment, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// PaymentHandler bridges the POS checkout to the payment gateway.
type PaymentHandler struct {
	gateway  PaymentGateway
	notifier services.Notifier
	qrID     string
	now      func() time.Time
}

// NewPaymentHandler constructs PaymentHandler. notifier may be nil.
func NewPaymentHandler(gateway PaymentGateway, notifier services.Notifier, qrID string) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, notifier: notifier, qrID: qrID, now: time.Now}
}

func (h *PaymentHandler) requireGateway() error {
	if h.gateway == nil || !h.gateway.Enabled() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Razorpay unavailable")
	}
	return nil
}

// maxOrderRupees keeps the paise amount inside int64.
const maxOrderRupees = math.MaxInt64 / 100

type createOrderRequest struct {
	Amount float64 `json:"amount"`
}

// CreateOrder opens a gateway order for amount rupees.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	if err := h.requireGateway(); err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("amount", "Invalid amount")
	}
	if req.Amount <= 0 || req.Amount >= maxOrderRupees || math.IsNaN(req.Amount) {
		return badRequest("amount", "Invalid amount")
	}

	order, err := h.gateway.CreateOrder(c.UserContext(), services.OrderRequest{
		Amount:   int64(math.Round(req.Amount * 100)),
		Currency: "INR",
		Receipt:  fmt.Sprintf("receipt_%d", h.now().UnixMilli()),
	})
	if err != nil {
		slog.Error("create order failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create order")
	}

	slog.Info("order created", "order_id", order.ID, "amount", order.Amount)
	return c.JSON(fiber.Map{"order_id": order.ID, "amount": order.Amount})
}

// FetchQR returns the configured static QR code.
func (h *PaymentHandler) FetchQR(c *fiber.Ctx) error {
	if err := h.requireGateway(); err != nil {
		return err
	}
	if h.qrID == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "QR code not configured")
	}

	qr, err := h.gateway.FetchQRCode(c.UserContext(), h.qrID)
	if err != nil {
		slog.Error("fetch qr failed", "qr_id", h.qrID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch QR code")
	}
	if qr.Status == "closed" {
		return fiber.NewError(fiber.StatusBadRequest, "QR code is closed or expired")
	}

	var amount *float64
	if qr.FixedAmount {
		rupees := float64(qr.PaymentAmount) / 100
		amount = &rupees
	}

	return c.JSON(fiber.Map{
		"qr_id":     qr.ID,
		"image_url": qr.ImageURL,
		"amount":    amount,
	})
}

type verifyPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

// VerifyPayment confirms a payment and reports its method. When the client
// forwards the checkout signature it must match.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	if err := h.requireGateway(); err != nil {
		return err
	}

	var req verifyPaymentRequest
	if err := parseBody(c, &req); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Message = "Payment ID is required"
		}
		return err
	}

	if req.OrderID != "" && req.Signature != "" &&
		!h.gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		return badRequest("signature", "Invalid payment signature")
	}

	payment, err := h.gateway.FetchPayment(c.UserContext(), req.PaymentID)
	if err != nil {
		slog.Error("verify payment failed", "payment_id", req.PaymentID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to verify payment")
	}

	method := payment.Method
	if method == "" {
		method = "unknown"
	}
	return c.JSON(fiber.Map{"method": method})
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity services.Payment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook receives gateway events. The signature is checked by middleware.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var event webhookEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return badRequest("", "Invalid webhook payload")
	}

	slog.Info("razorpay webhook", "event", event.Event)

	if event.Event == "payment.captured" && h.notifier != nil {
		payment := event.Payload.Payment.Entity
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := h.notifier.NotifyPaymentCaptured(ctx, &payment); err != nil {
				slog.Warn("payment notification failed", "payment_id", payment.ID, "error", err)
			}
		}()
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
