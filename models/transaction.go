package models

// Transaction kinds.
const (
	TxTypeDeposit  = "deposit"
	TxTypeWithdraw = "withdraw"
)

// Transaction is one append-only ledger entry. Amount is the absolute value
// moved; the direction lives in TxType. BalanceAfter snapshots the account
// balance as of this entry.
type Transaction struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AccountNumber string `gorm:"not null;index" json:"accountNumber"`
	Amount        int64  `gorm:"not null" json:"amount"`
	TxType        string `gorm:"type:varchar(10);not null" json:"txType"`
	BalanceAfter  int64  `gorm:"not null" json:"balanceAfter"`
	CreatedAt     string `gorm:"not null" json:"createdAt"`
}
