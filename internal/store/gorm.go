package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tastetab/internal/models"
)

// GormStore implements Store on top of a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened, migrated gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying gorm handle.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateGormError(err)
	}
	return nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *GormStore) FindConflictingUser(ctx context.Context, username, email, phone string) (*models.User, error) {
	query := s.db.WithContext(ctx).Where("username = ? OR email = ?", username, email)
	if phone != "" {
		query = query.Or("phone = ?", phone)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *GormStore) SetUserOTP(ctx context.Context, id uuid.UUID, otp string, issuedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"otp": otp, "otp_issued_at": issuedAt})
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ResetUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": passwordHash, "otp": nil, "otp_issued_at": nil})
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &item, nil
}

func (s *GormStore) CreateItem(ctx context.Context, item *models.Item) error {
	return translateGormError(s.db.WithContext(ctx).Create(item).Error)
}

func (s *GormStore) CreateItems(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return translateGormError(s.db.WithContext(ctx).Create(&items).Error)
}

func (s *GormStore) UpdateItem(ctx context.Context, id uuid.UUID, changes *models.Item) (*models.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	// Select every editable column so zero values (empty strings) are written too.
	err = s.db.WithContext(ctx).Model(item).
		Select("name", "category", "price", "image_url", "open_time", "close_time", "updated_at").
		Updates(models.Item{
			Name:      changes.Name,
			Category:  changes.Category,
			Price:     changes.Price,
			ImageURL:  changes.ImageURL,
			OpenTime:  changes.OpenTime,
			CloseTime: changes.CloseTime,
		}).Error
	if err != nil {
		return nil, translateGormError(err)
	}

	return s.GetItem(ctx, id)
}

func (s *GormStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListBills(ctx context.Context) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("date asc").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (s *GormStore) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &bill, nil
}

func (s *GormStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}
	for i := range bill.Items {
		bill.Items[i].Position = i
	}
	return translateGormError(s.db.WithContext(ctx).Create(bill).Error)
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &DuplicateError{Field: duplicateField(err.Error())}
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return &DuplicateError{Field: duplicateField(msg)}
	}
	return err
}

// duplicateField guesses the colliding column from the driver message,
// e.g. "UNIQUE constraint failed: users.email" or "idx_users_email".
func duplicateField(msg string) string {
	for _, field := range []string{"username", "email", "phone"} {
		if strings.Contains(msg, "users."+field) || strings.Contains(msg, "idx_users_"+field) {
			return field
		}
	}
	return ""
}
