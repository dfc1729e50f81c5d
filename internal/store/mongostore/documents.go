package mongostore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/tastetab/internal/models"
)

// Documents keep ids as strings so they read naturally in the mongo shell.

type userDoc struct {
	ID          string     `bson:"_id"`
	Username    string     `bson:"username"`
	Email       string     `bson:"email"`
	Phone       *string    `bson:"phone,omitempty"`
	Password    string     `bson:"password"`
	Role        string     `bson:"role"`
	OTP         *string    `bson:"otp"`
	OTPIssuedAt *time.Time `bson:"otpIssuedAt"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

type itemDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Category  string    `bson:"category"`
	Price     float64   `bson:"price"`
	ImageURL  string    `bson:"imageUrl"`
	OpenTime  string    `bson:"openTime"`
	CloseTime string    `bson:"closeTime"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type billItemDoc struct {
	ItemName string  `bson:"itemName"`
	Category string  `bson:"category"`
	Price    float64 `bson:"price"`
	Quantity int     `bson:"quantity"`
	Total    float64 `bson:"total"`
}

type billDoc struct {
	ID            string        `bson:"_id"`
	Items         []billItemDoc `bson:"items"`
	GrandTotal    float64       `bson:"grandTotal"`
	PaymentMethod string        `bson:"paymentMethod"`
	Status        string        `bson:"status"`
	Date          time.Time     `bson:"date"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed document id %q: %w", raw, err)
	}
	return id, nil
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Password:    u.PasswordHash,
		Role:        string(u.Role),
		OTP:         u.OTP,
		OTPIssuedAt: u.OTPIssuedAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (d userDoc) toModel() (*models.User, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     d.Username,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.Password,
		Role:         models.Role(d.Role),
		OTP:          d.OTP,
		OTPIssuedAt:  d.OTPIssuedAt,
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, d.CreatedAt, d.UpdatedAt
	return u, nil
}

func toItemDoc(i *models.Item) itemDoc {
	return itemDoc{
		ID:        i.ID.String(),
		Name:      i.Name,
		Category:  i.Category,
		Price:     i.Price,
		ImageURL:  i.ImageURL,
		OpenTime:  i.OpenTime,
		CloseTime: i.CloseTime,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (d itemDoc) toModel() (*models.Item, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	i := &models.Item{
		Name:      d.Name,
		Category:  d.Category,
		Price:     d.Price,
		ImageURL:  d.ImageURL,
		OpenTime:  d.OpenTime,
		CloseTime: d.CloseTime,
	}
	i.ID, i.CreatedAt, i.UpdatedAt = id, d.CreatedAt, d.UpdatedAt
	return i, nil
}

func toBillDoc(b *models.Bill) billDoc {
	items := make([]billItemDoc, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, billItemDoc{
			ItemName: it.ItemName,
			Category: it.Category,
			Price:    it.Price,
			Quantity: it.Quantity,
			Total:    it.Total,
		})
	}
	return billDoc{
		ID:            b.ID.String(),
		Items:         items,
		GrandTotal:    b.GrandTotal,
		PaymentMethod: string(b.PaymentMethod),
		Status:        string(b.Status),
		Date:          b.Date,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (d billDoc) toModel() (*models.Bill, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	b := &models.Bill{
		GrandTotal:    d.GrandTotal,
		PaymentMethod: models.PaymentMethod(d.PaymentMethod),
		Status:        models.BillStatus(d.Status),
		Date:          d.Date,
		Items:         make([]models.BillItem, 0, len(d.Items)),
	}
	b.ID, b.CreatedAt, b.UpdatedAt = id, d.CreatedAt, d.UpdatedAt
	for i, it := range d.Items {
		b.Items = append(b.Items, models.BillItem{
			BillID:   id,
			Position: i,
			ItemName: it.ItemName,
			Category: it.Category,
			Price:    it.Price,
			Quantity: it.Quantity,
			Total:    it.Total,
		})
	}
	return b, nil
}
