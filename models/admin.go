package models

// Admin is a desk operator account. CreatedAt is stored in the fixed
// DD/MM/YYYY format used across the application.
type Admin struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    string `gorm:"not null" json:"createdAt"`
}
