package report

import "github.com/example/tastetab/internal/models"

// CategoryTotal is the summed line total of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary aggregates a set of bills the way the admin dashboard shows them.
type Summary struct {
	Count         int             `json:"count"`
	TotalAmount   float64         `json:"totalAmount"`
	Categories    []CategoryTotal `json:"categories"`
	OnlineSuccess int             `json:"onlineTransactions"`
	CashSuccess   int             `json:"cashTransactions"`
	Failed        int             `json:"failedTransactions"`
	OnlineAmount  float64         `json:"onlineAmount"`
	CashAmount    float64         `json:"cashAmount"`
}

// Summarize computes the summary. Categories appear in the order they are
// first seen. Amount totals use grandTotal regardless of status.
func Summarize(bills []models.Bill) Summary {
	s := Summary{Count: len(bills), Categories: []CategoryTotal{}}
	index := map[string]int{}

	for _, bill := range bills {
		s.TotalAmount += bill.GrandTotal

		switch bill.PaymentMethod {
		case models.PaymentOnline:
			s.OnlineAmount += bill.GrandTotal
			if bill.Status == models.BillSuccess {
				s.OnlineSuccess++
			}
		case models.PaymentCash:
			s.CashAmount += bill.GrandTotal
			if bill.Status == models.BillSuccess {
				s.CashSuccess++
			}
		}
		if bill.Status == models.BillFailed {
			s.Failed++
		}

		for _, item := range bill.Items {
			i, ok := index[item.Category]
			if !ok {
				i = len(s.Categories)
				index[item.Category] = i
				s.Categories = append(s.Categories, CategoryTotal{Category: item.Category})
			}
			s.Categories[i].Total += item.Total
		}
	}

	return s
}
