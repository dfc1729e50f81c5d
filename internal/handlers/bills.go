package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/report"
	"github.com/example/tastetab/internal/services"
	"github.com/example/tastetab/internal/store"
)

const notifyTimeout = 15 * time.Second

// BillHandler manages the billing ledger and its exports.
type BillHandler struct {
	bills    store.BillStore
	notifier services.Notifier
	now      func() time.Time
}

// NewBillHandler constructs BillHandler. notifier may be nil.
func NewBillHandler(bills store.BillStore, notifier services.Notifier) *BillHandler {
	return &BillHandler{bills: bills, notifier: notifier, now: time.Now}
}

type billItemRequest struct {
	ItemName string   `json:"itemName" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Quantity *int     `json:"quantity" validate:"required,gte=1"`
	Total    *float64 `json:"total" validate:"required,gte=0"`
}

type createBillRequest struct {
	Items         []billItemRequest `json:"items" validate:"required,min=1,dive"`
	GrandTotal    *float64          `json:"grandTotal" validate:"required,gte=0"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=cash online"`
	Status        string            `json:"status" validate:"required,oneof=success failed"`
}

// ListBills returns every bill, oldest first.
func (h *BillHandler) ListBills(c *fiber.Ctx) error {
	bills, err := h.bills.ListBills(c.UserContext())
	if err != nil {
		slog.Error("list bills failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bills")
	}
	return c.JSON(bills)
}

// GetBill returns one bill.
func (h *BillHandler) GetBill(c *fiber.Ctx) error {
	bill, err := h.loadBill(c)
	if err != nil {
		return err
	}
	return c.JSON(bill)
}

func (h *BillHandler) loadBill(c *fiber.Ctx) (*models.Bill, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	bill, err := h.bills.GetBill(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Bill not found")
		}
		return nil, err
	}
	return bill, nil
}

// CreateBill records a completed checkout. The grand total is stored as sent.
func (h *BillHandler) CreateBill(c *fiber.Ctx) error {
	var req createBillRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	bill := &models.Bill{
		GrandTotal:    *req.GrandTotal,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Status:        models.BillStatus(req.Status),
		Items:         make([]models.BillItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		bill.Items = append(bill.Items, models.BillItem{
			ItemName: item.ItemName,
			Category: item.Category,
			Price:    *item.Price,
			Quantity: *item.Quantity,
			Total:    *item.Total,
		})
	}

	if sum := bill.LinesTotal(); math.Abs(sum-bill.GrandTotal) > 0.005 {
		slog.Warn("bill grand total differs from line totals",
			"grand_total", bill.GrandTotal, "lines_total", sum)
	}

	if err := h.bills.CreateBill(c.UserContext(), bill); err != nil {
		slog.Error("create bill failed", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "Failed to save bill")
	}

	slog.Info("bill created", "bill_id", bill.ID, "grand_total", bill.GrandTotal, "payment_method", bill.PaymentMethod)
	h.notifyAsync(*bill)

	return c.Status(fiber.StatusCreated).JSON(bill)
}

func (h *BillHandler) notifyAsync(bill models.Bill) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.NotifyNewBill(ctx, &bill); err != nil {
			slog.Warn("bill notification failed", "bill_id", bill.ID, "error", err)
		}
	}()
}

func (h *BillHandler) filteredBills(c *fiber.Ctx) ([]models.Bill, error) {
	filter, err := report.ParseFilter(report.Query{
		Period:        c.Query("period"),
		From:          c.Query("from"),
		To:            c.Query("to"),
		PaymentMethod: c.Query("paymentMethod"),
		Status:        c.Query("status"),
	}, h.now())
	if err != nil {
		return nil, badRequest("", err.Error())
	}

	bills, err := h.bills.ListBills(c.UserContext())
	if err != nil {
		return nil, err
	}
	return filter.Apply(bills), nil
}

// Report returns the dashboard summary and the matching bills.
func (h *BillHandler) Report(c *fiber.Ctx) error {
	bills, err := h.filteredBills(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"summary": report.Summarize(bills),
		"bills":   bills,
	})
}

// ExportCSV streams the matching bills as a CSV attachment.
func (h *BillHandler) ExportCSV(c *fiber.Ctx) error {
	bills, err := h.filteredBills(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, bills); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(h.exportName(c, "csv"))
	return c.Send(buf.Bytes())
}

// ExportPDF renders the matching bills as a PDF ledger.
func (h *BillHandler) ExportPDF(c *fiber.Ctx) error {
	bills, err := h.filteredBills(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteLedger(&buf, "BILLING REPORT", bills); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(h.exportName(c, "pdf"))
	return c.Send(buf.Bytes())
}

// Receipt renders the printable receipt of one bill.
func (h *BillHandler) Receipt(c *fiber.Ctx) error {
	bill, err := h.loadBill(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteReceipt(&buf, bill); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(fmt.Sprintf("bill_%s.pdf", bill.Date.Local().Format("2006-01-02")))
	return c.Send(buf.Bytes())
}

func (h *BillHandler) exportName(c *fiber.Ctx, ext string) string {
	switch {
	case c.Query("from") != "":
		return fmt.Sprintf("bills_%s.%s", c.Query("from"), ext)
	case c.Query("period") != "":
		return fmt.Sprintf("bills_%s.%s", c.Query("period"), ext)
	default:
		return "bills_all." + ext
	}
}
