package models

import "time"

// Role tags a user as administrator or cashier.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account able to log in to the point of sale.
type User struct {
	BaseModel
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone        *string    `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"not null" json:"role"`
	OTP          *string    `json:"-"`
	OTPIssuedAt  *time.Time `json:"-"`
}
