package dto

// CreateCustomerInput carries the raw, operator-entered fields for opening an
// account. Everything arrives as strings; the validator normalizes them.
type CreateCustomerInput struct {
	AccountNumber  string `json:"accountNumber" validate:"required"`
	Name           string `json:"name" validate:"required"`
	AccountType    string `json:"accountType" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`
	Mobile         string `json:"mobile" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	Nationality    string `json:"nationality" validate:"required"`
	KYCDocument    string `json:"kycDocument" validate:"required"`
	PIN            string `json:"pin" validate:"required"`
	InitialBalance string `json:"initialBalance" validate:"required"`
}

// CustomerSummary is the full profile view returned to the desk operator.
type CustomerSummary struct {
	AccountNumber string `json:"accountNumber"`
	Balance       int64  `json:"balance"`
	CreatedAt     string `json:"createdAt"`
	Name          string `json:"name"`
	AccountType   string `json:"accountType"`
	DateOfBirth   string `json:"dateOfBirth"`
	Mobile        string `json:"mobile"`
	Gender        string `json:"gender"`
	Nationality   string `json:"nationality"`
	KYCDocument   string `json:"kycDocument"`
}
