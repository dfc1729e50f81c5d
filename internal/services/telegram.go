package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tastetab/internal/models"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Notifier pushes staff-facing alerts.
type Notifier interface {
	NotifyNewBill(ctx context.Context, bill *models.Bill) error
	NotifyPaymentCaptured(ctx context.Context, payment *Payment) error
}

// TelegramService sends notifications to the admin chat through the Bot API.
type TelegramService struct {
	apiBase     string
	botToken    string
	adminChatID string
	httpClient  *http.Client
}

// NewTelegramService creates a new TelegramService. An empty apiBase uses the
// public Bot API endpoint.
func NewTelegramService(apiBase, botToken, adminChatID string) *TelegramService {
	if apiBase == "" {
		apiBase = defaultTelegramAPI
	}
	return &TelegramService{
		apiBase:     strings.TrimRight(apiBase, "/"),
		botToken:    botToken,
		adminChatID: adminChatID,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML-formatted message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		slog.Debug("telegram bot token not configured, skipping message")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		slog.Debug("telegram admin chat not configured, skipping message")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice formats amount with thousand separators, two decimals and the
// currency code.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "INR"
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}
	whole := fmt.Sprintf("%.2f", amount)
	intPart, frac, _ := strings.Cut(whole, ".")

	var result strings.Builder
	if negative {
		result.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}

	return result.String() + "." + frac + " " + currency
}

// BillMessage renders the new bill alert.
func BillMessage(bill *models.Bill) string {
	var lines strings.Builder
	for i, item := range bill.Items {
		fmt.Fprintf(&lines, "%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ItemName),
			item.Quantity,
			FormatPrice(item.Price, ""),
			FormatPrice(item.Total, ""),
		)
	}

	status := "✅ Success"
	if bill.Status == models.BillFailed {
		status = "❌ Failed"
	}

	return strings.TrimSpace(fmt.Sprintf(`<b>🧾 NEW BILL</b>
<b>ID:</b> %s
<b>Date:</b> %s
<b>Items:</b>
%s
<b>Grand total:</b> %s
<b>Payment:</b> %s
<b>Status:</b> %s`,
		bill.ID,
		bill.Date.Format("2006-01-02 15:04"),
		lines.String(),
		FormatPrice(bill.GrandTotal, ""),
		bill.PaymentMethod,
		status,
	))
}

// PaymentMessage renders the captured payment alert. Amount is converted from paise.
func PaymentMessage(payment *Payment) string {
	currency := payment.Currency
	if currency == "" {
		currency = "INR"
	}
	method := payment.Method
	if method == "" {
		method = "unknown"
	}

	return strings.TrimSpace(fmt.Sprintf(`<b>✅ PAYMENT CAPTURED</b>
<b>Payment:</b> %s
<b>Order:</b> %s
<b>Amount:</b> %s
<b>Method:</b> %s`,
		html.EscapeString(payment.ID),
		html.EscapeString(payment.OrderID),
		FormatPrice(float64(payment.Amount)/100, currency),
		html.EscapeString(method),
	))
}

// NotifyNewBill sends notification about a new bill to the admin chat.
func (s *TelegramService) NotifyNewBill(ctx context.Context, bill *models.Bill) error {
	return s.SendToAdmin(ctx, BillMessage(bill))
}

// NotifyPaymentCaptured sends notification about a captured payment.
func (s *TelegramService) NotifyPaymentCaptured(ctx context.Context, payment *Payment) error {
	return s.SendToAdmin(ctx, PaymentMessage(payment))
}
