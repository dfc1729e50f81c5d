package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/example/tastetab/internal/models"
)

const (
	pageBottom = 275.0
	marginLeft = 20.0
	lineEnd    = 190.0
	colQty     = 100.0
	colPrice   = 130.0
	colTotal   = 160.0
)

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newPDF() *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCreator("TasteTab", false)
	pdf.AddPage()
	return &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *pdfDoc) font(style string, size float64) {
	d.pdf.SetFont("Helvetica", style, size)
}

func (d *pdfDoc) text(x, y float64, s string) {
	d.pdf.Text(x, y, d.tr(s))
}

func (d *pdfDoc) center(x, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(x-d.pdf.GetStringWidth(s)/2, y, s)
}

func (d *pdfDoc) right(x, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(x-d.pdf.GetStringWidth(s), y, s)
}

func (d *pdfDoc) rule() {
	d.pdf.SetLineWidth(0.2)
	d.pdf.Line(marginLeft, d.y, lineEnd, d.y)
}

// advance moves the cursor down by dy, starting a new page when it runs past
// the bottom margin.
func (d *pdfDoc) advance(dy float64) {
	d.y += dy
	if d.y > pageBottom {
		d.pdf.AddPage()
		d.y = 20
	}
}

func (d *pdfDoc) output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// writeItems draws the Item/Qty/Price/Total table starting at the cursor.
func (d *pdfDoc) writeItems(items []models.BillItem) {
	d.font("B", 10)
	d.text(marginLeft, d.y, "Item")
	d.center(colQty, d.y, "Qty")
	d.right(colPrice, d.y, "Price")
	d.right(colTotal, d.y, "Total")
	d.advance(5)
	d.rule()
	d.advance(5)

	d.font("", 10)
	for _, item := range items {
		d.text(marginLeft, d.y, truncate(d, item.ItemName, colQty-marginLeft-10))
		d.center(colQty, d.y, strconv.Itoa(item.Quantity))
		d.right(colPrice, d.y, money(item.Price))
		d.right(colTotal, d.y, money(item.Total))
		d.advance(10)
	}
}

// WriteReceipt renders the printable receipt for one bill.
func WriteReceipt(w io.Writer, bill *models.Bill) error {
	d := newPDF()
	d.pdf.SetTitle("Bill "+bill.ID.String(), false)

	d.font("", 16)
	d.center(105, 20, "FOOD BILL")

	d.font("", 12)
	d.text(marginLeft, 40, "Date: "+bill.Date.Local().Format("2006-01-02 15:04:05"))
	d.text(marginLeft, 50, "Payment Method: "+string(bill.PaymentMethod))
	d.text(marginLeft, 60, "Status: "+string(bill.Status))

	d.y = 70
	d.writeItems(bill.Items)

	d.advance(5)
	d.rule()
	d.advance(10)
	d.font("B", 12)
	d.text(marginLeft, d.y, "Grand Total: "+money(bill.GrandTotal))

	return d.output(w)
}

// WriteLedger renders a summary page header followed by one block per bill,
// in input order.
func WriteLedger(w io.Writer, title string, bills []models.Bill) error {
	d := newPDF()
	d.pdf.SetTitle(title, false)
	summary := Summarize(bills)

	d.font("", 16)
	d.center(105, 20, title)

	d.font("", 11)
	d.y = 35
	lines := []string{
		fmt.Sprintf("Bills: %d", summary.Count),
		"Total: " + money(summary.TotalAmount),
		fmt.Sprintf("Online: %s (%d successful)", money(summary.OnlineAmount), summary.OnlineSuccess),
		fmt.Sprintf("Cash: %s (%d successful)", money(summary.CashAmount), summary.CashSuccess),
		fmt.Sprintf("Failed: %d", summary.Failed),
	}
	for _, line := range lines {
		d.text(marginLeft, d.y, line)
		d.advance(7)
	}

	for i := range bills {
		bill := &bills[i]
		d.advance(5)
		d.rule()
		d.advance(7)

		d.font("B", 11)
		d.text(marginLeft, d.y, "Bill "+bill.ID.String())
		d.right(lineEnd, d.y, money(bill.GrandTotal))
		d.advance(6)

		d.font("", 10)
		d.text(marginLeft, d.y, fmt.Sprintf("%s  |  %s  |  %s",
			bill.Date.Local().Format("2006-01-02 15:04"), bill.PaymentMethod, bill.Status))
		d.advance(8)

		d.writeItems(bill.Items)
	}

	return d.output(w)
}

func money(v float64) string {
	return "Rs. " + strconv.FormatFloat(v, 'f', 2, 64)
}

// truncate shortens s with an ellipsis so it fits in width millimetres.
func truncate(d *pdfDoc, s string, width float64) string {
	if d.pdf.GetStringWidth(d.tr(s)) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && d.pdf.GetStringWidth(d.tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
