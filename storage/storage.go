// Package storage owns all reads and writes of the relational schema. Every
// public method is one self-contained unit of work; "not found" comes back as
// an empty result or a sentinel, never a raised storage error.
package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bankdesk/config"
	"bankdesk/models"
)

// Sentinels for the balance-change path. The service layer translates them
// into the error taxonomy.
var (
	ErrAccountMissing = errors.New("account not found")
	ErrFloorBreached  = errors.New("balance floor breached")
)

type Storage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// AnyAdminExists reports whether at least one admin account exists.
func (s *Storage) AnyAdminExists(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error
	return count > 0, err
}

func (s *Storage) AdminExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Admin{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *Storage) CreateAdmin(ctx context.Context, username, passwordHash string) error {
	admin := models.Admin{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Format(config.DateFormat),
	}
	return s.db.WithContext(ctx).Create(&admin).Error
}

// GetAdminHash returns the stored password hash for username, with found
// false when no such admin exists.
func (s *Storage) GetAdminHash(ctx context.Context, username string) (string, bool, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return admin.PasswordHash, true, nil
}

func (s *Storage) UpdateAdminHash(ctx context.Context, username, passwordHash string) error {
	return s.db.WithContext(ctx).Model(&models.Admin{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash).Error
}

// DeleteAdmin removes the admin and returns the number of rows deleted.
func (s *Storage) DeleteAdmin(ctx context.Context, username string) (int64, error) {
	result := s.db.WithContext(ctx).Where("username = ?", username).Delete(&models.Admin{})
	return result.RowsAffected, result.Error
}

func (s *Storage) CustomerExists(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("account_number = ?", accountNumber).Count(&count).Error
	return count > 0, err
}

func (s *Storage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

// GetCustomer returns nil when the account does not exist.
func (s *Storage) GetCustomer(ctx context.Context, accountNumber string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Storage) GetCustomerByMobile(ctx context.Context, mobile string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("mobile = ?", mobile).
		Order("account_number").First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomerByName matches the full name case-insensitively. Ties between
// customers sharing a name resolve to the lowest account number.
func (s *Storage) GetCustomerByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).
		Order("account_number").First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Storage) UpdateCustomerPIN(ctx context.Context, accountNumber, pinHash string) error {
	return s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("account_number = ?", accountNumber).
		Update("pin_hash", pinHash).Error
}

// DeleteCustomer removes the account; its transactions go with it via the
// foreign-key cascade. Returns the number of customer rows deleted.
func (s *Storage) DeleteCustomer(ctx context.Context, accountNumber string) (int64, error) {
	result := s.db.WithContext(ctx).Where("account_number = ?", accountNumber).Delete(&models.Customer{})
	return result.RowsAffected, result.Error
}

func (s *Storage) TransactionsForAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).Where("account_number = ?", accountNumber).
		Order("id").Find(&txs).Error
	return txs, err
}

// ApplyBalanceChange moves the balance by delta (signed) and appends the
// matching ledger entry in one transaction, so a crash can never separate the
// two. The update is relative and conditional: when floor is non-nil the
// balance may not drop below it, enforced inside the same statement. Returns
// the new balance, ErrAccountMissing, or ErrFloorBreached.
func (s *Storage) ApplyBalanceChange(ctx context.Context, accountNumber string, delta int64, txType string, floor *int64) (int64, error) {
	var newBalance int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Customer{}).
			Where("account_number = ?", accountNumber)
		if floor != nil {
			update = update.Where("balance + ? >= ?", delta, *floor)
		}
		result := update.Update("balance", gorm.Expr("balance + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Customer{}).
				Where("account_number = ?", accountNumber).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrAccountMissing
			}
			return ErrFloorBreached
		}

		var customer models.Customer
		if err := tx.Where("account_number = ?", accountNumber).First(&customer).Error; err != nil {
			return err
		}
		newBalance = customer.Balance

		amount := delta
		if amount < 0 {
			amount = -amount
		}
		entry := models.Transaction{
			AccountNumber: accountNumber,
			Amount:        amount,
			TxType:        txType,
			BalanceAfter:  newBalance,
			CreatedAt:     time.Now().Format(config.DateFormat),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}
