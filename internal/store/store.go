// Package store persists users, menu items and bills. GormStore backs the
// postgres and sqlite deployments, mongostore the document database one.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/tastetab/internal/models"
)

// ErrNotFound is returned when a record with the requested key does not exist.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique-key violation. Field is empty when the
// backend could not tell which key collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return fmt.Sprintf("duplicate %s", e.Field)
}

// UserStore is the credential store.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindConflictingUser returns any user sharing the username, the email or
	// (when non-empty) the phone.
	FindConflictingUser(ctx context.Context, username, email, phone string) (*models.User, error)
	SetUserOTP(ctx context.Context, id uuid.UUID, otp string, issuedAt time.Time) error
	// ResetUserPassword stores the new hash and clears the one-time code.
	ResetUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ItemStore is the menu catalog.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	CreateItems(ctx context.Context, items []models.Item) error
	UpdateItem(ctx context.Context, id uuid.UUID, changes *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// BillStore is the append-only billing ledger.
type BillStore interface {
	ListBills(ctx context.Context) ([]models.Bill, error)
	GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	CreateBill(ctx context.Context, bill *models.Bill) error
}

// Store bundles every collection behind one handle.
type Store interface {
	UserStore
	ItemStore
	BillStore
	Close(ctx context.Context) error
}

// ConflictField names the first field of candidate that collides with
// existing, checking username, email and phone in that order.
func ConflictField(existing *models.User, username, email, phone string) string {
	switch {
	case existing == nil:
		return ""
	case existing.Username == username:
		return "username"
	case existing.Email == email:
		return "email"
	case phone != "" && existing.Phone != nil && *existing.Phone == phone:
		return "phone"
	default:
		return ""
	}
}
