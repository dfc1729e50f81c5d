package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how a bill was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

// BillStatus records whether the charge went through.
type BillStatus string

const (
	BillSuccess BillStatus = "success"
	BillFailed  BillStatus = "failed"
)

// Bill is an immutable ledger entry.
type Bill struct {
	BaseModel
	Items         []BillItem    `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	GrandTotal    float64       `json:"grandTotal"`
	PaymentMethod PaymentMethod `gorm:"index" json:"paymentMethod"`
	Status        BillStatus    `gorm:"index" json:"status"`
	Date          time.Time     `gorm:"index" json:"date"`
}

// BillItem is a single line of a bill. Values are copied from the cart, not
// looked up from the menu.
type BillItem struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	BillID   uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Position int       `json:"-"`
	ItemName string    `json:"itemName"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Total    float64   `json:"total"`
}

// LinesTotal sums the line totals as supplied by the client.
func (b *Bill) LinesTotal() float64 {
	var sum float64
	for _, item := range b.Items {
		sum += item.Total
	}
	return sum
}
