package models

// Item is a menu entry. Open and close times are free text as entered by
// the admin ("10:00 AM").
type Item struct {
	BaseModel
	Name      string  `gorm:"not null" json:"name" yaml:"name"`
	Category  string  `gorm:"index;not null" json:"category" yaml:"category"`
	Price     float64 `gorm:"not null" json:"price" yaml:"price"`
	ImageURL  string  `json:"imageUrl" yaml:"imageUrl"`
	OpenTime  string  `json:"openTime" yaml:"openTime"`
	CloseTime string  `json:"closeTime" yaml:"closeTime"`
}
