package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/tastetab/internal/models"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"ID", "Items", "Grand Total", "Date", "Payment Method", "Status"}

// ItemsCell renders line items as "name (Qty: n)" joined with "; ".
func ItemsCell(items []models.BillItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (Qty: %d)", item.ItemName, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

// WriteCSV writes one row per bill in input order.
func WriteCSV(w io.Writer, bills []models.Bill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, bill := range bills {
		row := []string{
			bill.ID.String(),
			ItemsCell(bill.Items),
			formatAmount(bill.GrandTotal),
			bill.Date.Local().Format(dateLayout),
			string(bill.PaymentMethod),
			string(bill.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
