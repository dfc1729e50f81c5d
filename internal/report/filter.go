// Package report filters the billing ledger and renders it as summaries,
// CSV exports and PDF documents.
package report

import (
	"fmt"
	"time"

	"github.com/example/tastetab/internal/models"
)

// Period names a date range relative to the current day.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodLastWeek  Period = "lastWeek"
	PeriodLastMonth Period = "lastMonth"
	PeriodLast1Mo   Period = "last1Month"
	PeriodThisMonth Period = "thisMonth"
	PeriodLastYear  Period = "lastYear"
	PeriodAllTime   Period = "allTime"
)

const dateLayout = "2006-01-02"

// Range is an inclusive time window. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// DayRange spans from the start of from's day to the end of to's day.
func DayRange(from, to time.Time) Range {
	return Range{From: startOfDay(from), To: endOfDay(to)}
}

// PresetRange resolves a named period against now.
func PresetRange(p Period, now time.Time) (Range, error) {
	today := startOfDay(now)

	switch p {
	case PeriodToday:
		return DayRange(today, today), nil
	case PeriodYesterday:
		y := today.AddDate(0, 0, -1)
		return DayRange(y, y), nil
	case PeriodLastWeek:
		return DayRange(today.AddDate(0, 0, -7), today), nil
	case PeriodLast1Mo:
		return DayRange(addMonths(today, -1), today), nil
	case PeriodThisMonth:
		return DayRange(startOfMonth(today), today), nil
	case PeriodLastMonth:
		first := startOfMonth(addMonths(today, -1))
		return DayRange(first, first.AddDate(0, 1, -1)), nil
	case PeriodLastYear:
		return DayRange(addMonths(today, -12), today), nil
	case PeriodAllTime, "":
		return Range{}, nil
	default:
		return Range{}, fmt.Errorf("unknown period %q", p)
	}
}

// Filter selects bills by date window, payment method and status. Empty or
// "all" method and status match everything.
type Filter struct {
	Range         Range
	PaymentMethod string
	Status        string
}

// Query is the raw report query string.
type Query struct {
	Period        string
	From          string
	To            string
	PaymentMethod string
	Status        string
}

// ParseFilter builds a Filter from q. Explicit from/to dates take precedence
// over the period; a single date selects that one day.
func ParseFilter(q Query, now time.Time) (Filter, error) {
	f := Filter{PaymentMethod: q.PaymentMethod, Status: q.Status}

	switch f.PaymentMethod {
	case "", "all", string(models.PaymentCash), string(models.PaymentOnline):
	default:
		return Filter{}, fmt.Errorf("unknown payment method %q", q.PaymentMethod)
	}
	switch f.Status {
	case "", "all", string(models.BillSuccess), string(models.BillFailed):
	default:
		return Filter{}, fmt.Errorf("unknown status %q", q.Status)
	}

	if q.From == "" && q.To == "" {
		r, err := PresetRange(Period(q.Period), now)
		if err != nil {
			return Filter{}, err
		}
		f.Range = r
		return f, nil
	}

	from, to := q.From, q.To
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}

	start, err := time.ParseInLocation(dateLayout, from, now.Location())
	if err != nil {
		return Filter{}, fmt.Errorf("invalid from date %q", from)
	}
	end, err := time.ParseInLocation(dateLayout, to, now.Location())
	if err != nil {
		return Filter{}, fmt.Errorf("invalid to date %q", to)
	}
	if end.Before(start) {
		return Filter{}, fmt.Errorf("to date %s is before from date %s", to, from)
	}

	f.Range = DayRange(start, end)
	return f, nil
}

// Match reports whether bill passes every criterion.
func (f Filter) Match(bill *models.Bill) bool {
	if f.PaymentMethod != "" && f.PaymentMethod != "all" && string(bill.PaymentMethod) != f.PaymentMethod {
		return false
	}
	if f.Status != "" && f.Status != "all" && string(bill.Status) != f.Status {
		return false
	}
	return f.Range.Contains(bill.Date)
}

// Apply returns the matching bills in input order.
func (f Filter) Apply(bills []models.Bill) []models.Bill {
	out := make([]models.Bill, 0, len(bills))
	for i := range bills {
		if f.Match(&bills[i]) {
			out = append(out, bills[i])
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// addMonths shifts t by n months, clamping the day to the target month's
// length so Mar 31 minus one month is Feb 28 (or 29).
func addMonths(t time.Time, n int) time.Time {
	first := startOfMonth(t).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	h, mi, s := t.Clock()
	return time.Date(first.Year(), first.Month(), day, h, mi, s, t.Nanosecond(), t.Location())
}
