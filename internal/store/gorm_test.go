package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"

	"github.com/example/tastetab/internal/database"
	"github.com/example/tastetab/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("file:"+name+"?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	s := NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func strPtr(s string) *string { return &s }

func TestGormStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Phone:        strPtr("9876543210"),
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}

	got, err := s.FindUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if got.ID != user.ID || got.Role != models.RoleUser {
		t.Errorf("unexpected user %+v", got)
	}

	if _, err := s.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	byID, err := s.FindUserByID(ctx, user.ID)
	if err != nil || byID.Username != "alice" {
		t.Errorf("FindUserByID = %+v, %v", byID, err)
	}
}

func TestGormStoreDuplicateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h", Role: models.RoleUser}
	if err := s.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	second := &models.User{Username: "bobby", Email: "bob@example.com", PasswordHash: "h", Role: models.RoleUser}
	err := s.CreateUser(ctx, second)

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Field != "email" {
		t.Errorf("Field = %q, want email", dup.Field)
	}

	third := &models.User{Username: "bob", Email: "other@example.com", PasswordHash: "h", Role: models.RoleUser}
	if err := s.CreateUser(ctx, third); !errors.As(err, &dup) || dup.Field != "username" {
		t.Errorf("expected username DuplicateError, got %v", err)
	}
}

func TestGormStoreUsersWithoutPhoneDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"carol", "dave"} {
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "h", Role: models.RoleUser}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
	}
}

func TestGormStoreFindConflictingUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	existing := &models.User{
		Username:     "erin",
		Email:        "erin@example.com",
		Phone:        strPtr("1234567890"),
		PasswordHash: "h",
		Role:         models.RoleAdmin,
	}
	if err := s.CreateUser(ctx, existing); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	tests := []struct {
		name      string
		username  string
		email     string
		phone     string
		wantField string
	}{
		{"username", "erin", "other@example.com", "", "username"},
		{"email", "other", "erin@example.com", "", "email"},
		{"phone", "other", "other@example.com", "1234567890", "phone"},
		{"none", "other", "other@example.com", "5555555555", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.FindConflictingUser(ctx, tt.username, tt.email, tt.phone)
			if tt.wantField == "" {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindConflictingUser failed: %v", err)
			}
			if got := ConflictField(found, tt.username, tt.email, tt.phone); got != tt.wantField {
				t.Errorf("ConflictField = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestGormStoreOTPLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user := &models.User{Username: "frank", Email: "frank@example.com", PasswordHash: "old", Role: models.RoleUser}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	issued := time.Now().Truncate(time.Second)
	if err := s.SetUserOTP(ctx, user.ID, "123456", issued); err != nil {
		t.Fatalf("SetUserOTP failed: %v", err)
	}

	got, _ := s.FindUserByID(ctx, user.ID)
	if got.OTP == nil || *got.OTP != "123456" {
		t.Fatalf("expected otp to be stored, got %v", got.OTP)
	}
	if got.OTPIssuedAt == nil {
		t.Fatal("expected otp issue time to be stored")
	}

	if err := s.ResetUserPassword(ctx, user.ID, "new"); err != nil {
		t.Fatalf("ResetUserPassword failed: %v", err)
	}

	got, _ = s.FindUserByID(ctx, user.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected new hash, got %q", got.PasswordHash)
	}
	if got.OTP != nil || got.OTPIssuedAt != nil {
		t.Error("expected otp to be cleared")
	}

	if err := s.SetUserOTP(ctx, uuid.New(), "1", issued); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestGormStoreItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &models.Item{Name: "Masala Dosa", Category: "South Indian", Price: 80, ImageURL: "http://img/dosa.jpg", OpenTime: "7:00 AM", CloseTime: "11:00 AM"}
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	created := item.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	updated, err := s.UpdateItem(ctx, item.ID, &models.Item{Name: "Plain Dosa", Category: "South Indian", Price: 60, ImageURL: "", OpenTime: "7:00 AM", CloseTime: "12:00 PM"})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Name != "Plain Dosa" || updated.Price != 60 || updated.ImageURL != "" || updated.CloseTime != "12:00 PM" {
		t.Errorf("unexpected updated item %+v", updated)
	}
	if !updated.UpdatedAt.After(created) {
		t.Errorf("UpdatedAt not advanced: %v -> %v", created, updated.UpdatedAt)
	}

	if _, err := s.UpdateItem(ctx, uuid.New(), &models.Item{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.CreateItems(ctx, []models.Item{
		{Name: "Idli", Category: "South Indian", Price: 40},
		{Name: "Lassi", Category: "Drinks", Price: 50},
	}); err != nil {
		t.Fatalf("CreateItems failed: %v", err)
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	if err := s.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := s.DeleteItem(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGormStoreBills(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := &models.Bill{
		Items: []models.BillItem{
			{ItemName: "Tea", Category: "Drinks", Price: 20, Quantity: 2, Total: 40},
			{ItemName: "Samosa", Category: "Snacks", Price: 15, Quantity: 1, Total: 15},
		},
		GrandTotal:    55,
		PaymentMethod: models.PaymentCash,
		Status:        models.BillSuccess,
		Date:          time.Now().Add(-time.Hour),
	}
	newer := &models.Bill{
		Items:         []models.BillItem{{ItemName: "Coffee", Category: "Drinks", Price: 30, Quantity: 1, Total: 30}},
		GrandTotal:    30,
		PaymentMethod: models.PaymentOnline,
		Status:        models.BillFailed,
	}

	for _, b := range []*models.Bill{newer, older} {
		if err := s.CreateBill(ctx, b); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
	}
	if newer.Date.IsZero() {
		t.Error("expected date to default to write time")
	}

	bills, err := s.ListBills(ctx)
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(bills))
	}
	if bills[0].ID != older.ID {
		t.Error("expected bills ordered by date")
	}
	if len(bills[0].Items) != 2 || bills[0].Items[0].ItemName != "Tea" || bills[0].Items[1].ItemName != "Samosa" {
		t.Errorf("line items not preserved in order: %+v", bills[0].Items)
	}

	got, err := s.GetBill(ctx, newer.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.PaymentMethod != models.PaymentOnline || got.Status != models.BillFailed || len(got.Items) != 1 {
		t.Errorf("unexpected bill %+v", got)
	}

	if _, err := s.GetBill(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConflictFieldOrder(t *testing.T) {
	existing := &models.User{Username: "a", Email: "a@x.io", Phone: strPtr("1111111111")}

	if got := ConflictField(existing, "a", "a@x.io", "1111111111"); got != "username" {
		t.Errorf("expected username first, got %q", got)
	}
	if got := ConflictField(existing, "b", "a@x.io", "1111111111"); got != "email" {
		t.Errorf("expected email second, got %q", got)
	}
	if got := ConflictField(nil, "a", "b", "c"); got != "" {
		t.Errorf("expected empty field for nil user, got %q", got)
	}
}
