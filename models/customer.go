package models

// Account types accepted for a customer account.
const (
	AccountTypeSavings = "Savings"
	AccountTypeCurrent = "Current"
)

// Customer is a bank account plus its owner's profile. The account number is
// caller-supplied, never generated. Balance is whole currency units (int64),
// never floating point.
type Customer struct {
	AccountNumber string `gorm:"primaryKey" json:"accountNumber"`
	PINHash       string `gorm:"not null" json:"-"`
	Balance       int64  `gorm:"not null" json:"balance"`
	CreatedAt     string `gorm:"not null" json:"createdAt"`
	Name          string `gorm:"not null" json:"name"`
	AccountType   string `gorm:"type:varchar(10);not null" json:"accountType"`
	DateOfBirth   string `gorm:"not null" json:"dateOfBirth"`
	Mobile        string `gorm:"type:varchar(11);not null" json:"mobile"`
	Gender        string `gorm:"type:varchar(10);not null" json:"gender"`
	Nationality   string `gorm:"not null" json:"nationality"`
	KYCDocument   string `gorm:"not null" json:"kycDocument"`

	Transactions []Transaction `gorm:"foreignKey:AccountNumber;references:AccountNumber;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}
