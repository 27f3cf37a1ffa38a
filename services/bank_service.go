// Package services orchestrates validation, credential checks, and storage
// into the desk operations. It is the only layer that mints taxonomy errors;
// storage and security below it report plain outcomes.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "bankdesk/errors"

	"bankdesk/config"
	"bankdesk/dto"
	"bankdesk/models"
	"bankdesk/security"
	"bankdesk/services/logger"
	"bankdesk/storage"
	"bankdesk/validator"
)

type BankService struct {
	store    *storage.Storage
	hasher   *security.Hasher
	logger   logger.Logger
	settings config.Settings
}

type BankServiceOptions struct {
	Store    *storage.Storage
	Hasher   *security.Hasher
	Logger   logger.Logger
	Settings config.Settings
}

func NewBankService(opts BankServiceOptions) *BankService {
	return &BankService{
		store:    opts.Store,
		hasher:   opts.Hasher,
		logger:   opts.Logger,
		settings: opts.Settings,
	}
}

// Bootstrap creates the one configured admin when the system has none.
// A no-op when any admin exists or when bootstrap credentials are not set.
func (s *BankService) Bootstrap(ctx context.Context) error {
	exists, err := s.store.AnyAdminExists(ctx)
	if err != nil {
		return fmt.Errorf("check for existing admins: %w", err)
	}
	if exists {
		return nil
	}
	if s.settings.BootstrapAdminID == "" || s.settings.BootstrapAdminPassword == "" {
		return nil
	}
	if err := s.CreateAdmin(ctx, s.settings.BootstrapAdminID, s.settings.BootstrapAdminPassword); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin %q created", s.settings.BootstrapAdminID)
	return nil
}

// AdminExists reports whether the given admin (or, with an empty id, any
// admin at all) exists.
func (s *BankService) AdminExists(ctx context.Context, adminID string) (bool, error) {
	if adminID == "" {
		return s.store.AnyAdminExists(ctx)
	}
	return s.store.AdminExists(ctx, adminID)
}

func (s *BankService) CreateAdmin(ctx context.Context, adminID, password string) error {
	adminID, err := validator.AdminID(adminID)
	if err != nil {
		return err
	}
	password, err = validator.Password(password, "Password")
	if err != nil {
		return err
	}

	exists, err := s.store.AdminExists(ctx, adminID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.NewAppError(apperr.ErrCodeConflict, "Admin ID is already in use", nil)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.store.CreateAdmin(ctx, adminID, hash)
}

// AuthenticateAdmin fails closed: an unknown admin id yields false, not an
// error. A match under stale hash parameters persists the upgraded hash.
func (s *BankService) AuthenticateAdmin(ctx context.Context, adminID, password string) (bool, error) {
	adminID, err := validator.AdminID(adminID)
	if err != nil {
		return false, err
	}
	password, err = validator.RequireNonEmpty(password, "Password")
	if err != nil {
		return false, err
	}

	storedHash, found, err := s.store.GetAdminHash(ctx, adminID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	valid, upgraded := s.hasher.VerifyAndUpgrade(storedHash, password)
	if valid && upgraded != "" {
		if err := s.store.UpdateAdminHash(ctx, adminID, upgraded); err != nil {
			return false, err
		}
		s.logger.Info("rehashed credentials for admin %q", adminID)
	}
	return valid, nil
}

// DeleteAdmin removes an admin account. The caller's own identity and the
// configured protected set are never deletable.
func (s *BankService) DeleteAdmin(ctx context.Context, adminID, currentAdminID string) error {
	adminID, err := validator.AdminID(adminID)
	if err != nil {
		return err
	}
	if currentAdminID != "" && adminID == currentAdminID {
		return apperr.NewAppError(apperr.ErrCodeBusinessRule, "cannot delete the currently logged-in admin", nil)
	}
	if s.settings.ProtectedAdmins[adminID] {
		return apperr.NewAppError(apperr.ErrCodeBusinessRule, "this admin account is protected", nil)
	}

	removed, err := s.store.DeleteAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return apperr.NewAppError(apperr.ErrCodeNotFound, "admin account not found", nil)
	}
	s.logger.Info("deleted admin %q", adminID)
	return nil
}

func (s *BankService) CustomerExists(ctx context.Context, accountNumber string) (bool, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return false, err
	}
	return s.store.CustomerExists(ctx, accountNumber)
}

func (s *BankService) CreateCustomer(ctx context.Context, input dto.CreateCustomerInput) error {
	if err := validator.CreateCustomer(input); err != nil {
		return err
	}

	accountNumber, err := validator.AccountNumber(input.AccountNumber)
	if err != nil {
		return err
	}
	name, err := validator.RequireNonEmpty(input.Name, "Name")
	if err != nil {
		return err
	}
	accountType, err := validator.AccountType(input.AccountType)
	if err != nil {
		return err
	}
	dateOfBirth, err := validator.DateOfBirth(input.DateOfBirth)
	if err != nil {
		return err
	}
	mobile, err := validator.Mobile(input.Mobile)
	if err != nil {
		return err
	}
	gender, err := validator.Gender(input.Gender)
	if err != nil {
		return err
	}
	nationality, err := validator.RequireNonEmpty(input.Nationality, "Nationality")
	if err != nil {
		return err
	}
	kycDocument, err := validator.RequireNonEmpty(input.KYCDocument, "KYC document")
	if err != nil {
		return err
	}
	pin, err := validator.PIN(input.PIN)
	if err != nil {
		return err
	}
	balance, err := validator.Amount(input.InitialBalance)
	if err != nil {
		return err
	}

	exists, err := s.store.CustomerExists(ctx, accountNumber)
	if err != nil {
		return err
	}
	if exists {
		return apperr.NewAppError(apperr.ErrCodeConflict, "account number is already allocated", nil)
	}
	if balance < s.settings.MinBalance {
		return apperr.NewAppError(apperr.ErrCodeBusinessRule,
			fmt.Sprintf("initial balance must be at least %d", s.settings.MinBalance), nil)
	}

	pinHash, err := s.hasher.Hash(pin)
	if err != nil {
		return err
	}
	customer := models.Customer{
		AccountNumber: accountNumber,
		PINHash:       pinHash,
		Balance:       balance,
		CreatedAt:     time.Now().Format(config.DateFormat),
		Name:          name,
		AccountType:   accountType,
		DateOfBirth:   dateOfBirth,
		Mobile:        mobile,
		Gender:        gender,
		Nationality:   nationality,
		KYCDocument:   kycDocument,
	}
	if err := s.store.CreateCustomer(ctx, &customer); err != nil {
		return err
	}
	s.logger.Info("opened account %s", accountNumber)
	return nil
}

// AuthenticateCustomer fails closed on an unknown account and upgrades stale
// PIN hashes in place, mirroring AuthenticateAdmin.
func (s *BankService) AuthenticateCustomer(ctx context.Context, accountNumber, pin string) (bool, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return false, err
	}
	pin, err = validator.RequireNonEmpty(pin, "PIN")
	if err != nil {
		return false, err
	}

	customer, err := s.store.GetCustomer(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	if customer == nil {
		return false, nil
	}

	valid, upgraded := s.hasher.VerifyAndUpgrade(customer.PINHash, pin)
	if valid && upgraded != "" {
		if err := s.store.UpdateCustomerPIN(ctx, accountNumber, upgraded); err != nil {
			return false, err
		}
		s.logger.Info("rehashed PIN for account %s", accountNumber)
	}
	return valid, nil
}

// resolveIdentifier maps a login identifier to an account number: first as an
// account number, then as a mobile number, last as a case-insensitive exact
// name. Empty string means no such identity; the caller folds that into a
// generic authentication failure so account existence never leaks.
func (s *BankService) resolveIdentifier(ctx context.Context, identifier string) (string, error) {
	identifier, err := validator.RequireNonEmpty(identifier, "Identifier")
	if err != nil {
		return "", err
	}

	if accountNumber, verr := validator.AccountNumber(identifier); verr == nil {
		customer, err := s.store.GetCustomer(ctx, accountNumber)
		if err != nil {
			return "", err
		}
		if customer != nil {
			return customer.AccountNumber, nil
		}
	}

	if mobile, verr := validator.Mobile(identifier); verr == nil {
		customer, err := s.store.GetCustomerByMobile(ctx, mobile)
		if err != nil {
			return "", err
		}
		if customer != nil {
			return customer.AccountNumber, nil
		}
	}

	customer, err := s.store.GetCustomerByName(ctx, identifier)
	if err != nil {
		return "", err
	}
	if customer != nil {
		return customer.AccountNumber, nil
	}
	return "", nil
}

// AuthenticateCustomerByIdentifier accepts an account number, mobile number,
// or name, and returns the resolved account number on a successful PIN check.
// ok is false both when no identity matches and when the PIN is wrong.
func (s *BankService) AuthenticateCustomerByIdentifier(ctx context.Context, identifier, pin string) (accountNumber string, ok bool, err error) {
	accountNumber, err = s.resolveIdentifier(ctx, identifier)
	if err != nil {
		return "", false, err
	}
	if accountNumber == "" {
		return "", false, nil
	}

	valid, err := s.AuthenticateCustomer(ctx, accountNumber, pin)
	if err != nil {
		return "", false, err
	}
	if !valid {
		return "", false, nil
	}
	return accountNumber, true, nil
}

// ChangePIN overwrites the stored PIN hash. Verifying the old PIN first is
// the caller's concern (RequireCustomerAuth).
func (s *BankService) ChangePIN(ctx context.Context, accountNumber, newPIN string) error {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return err
	}
	newPIN, err = validator.PIN(newPIN)
	if err != nil {
		return err
	}

	exists, err := s.store.CustomerExists(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}

	hash, err := s.hasher.Hash(newPIN)
	if err != nil {
		return err
	}
	return s.store.UpdateCustomerPIN(ctx, accountNumber, hash)
}

func (s *BankService) DeleteCustomer(ctx context.Context, accountNumber string) error {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return err
	}
	removed, err := s.store.DeleteCustomer(ctx, accountNumber)
	if err != nil {
		return err
	}
	if removed == 0 {
		return apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	s.logger.Info("closed account %s", accountNumber)
	return nil
}

func (s *BankService) GetBalance(ctx context.Context, accountNumber string) (int64, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return 0, err
	}
	customer, err := s.store.GetCustomer(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	return customer.Balance, nil
}

func (s *BankService) GetCustomerSummary(ctx context.Context, accountNumber string) (*dto.CustomerSummary, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return nil, err
	}
	customer, err := s.store.GetCustomer(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	return &dto.CustomerSummary{
		AccountNumber: customer.AccountNumber,
		Balance:       customer.Balance,
		CreatedAt:     customer.CreatedAt,
		Name:          customer.Name,
		AccountType:   customer.AccountType,
		DateOfBirth:   customer.DateOfBirth,
		Mobile:        customer.Mobile,
		Gender:        customer.Gender,
		Nationality:   customer.Nationality,
		KYCDocument:   customer.KYCDocument,
	}, nil
}

func (s *BankService) TransactionHistory(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return nil, err
	}
	exists, err := s.store.CustomerExists(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	return s.store.TransactionsForAccount(ctx, accountNumber)
}

func (s *BankService) Deposit(ctx context.Context, accountNumber, amount string) (int64, error) {
	accountNumber, amountValue, err := s.checkMovement(accountNumber, amount)
	if err != nil {
		return 0, err
	}

	newBalance, err := s.store.ApplyBalanceChange(ctx, accountNumber, amountValue, models.TxTypeDeposit, nil)
	if errors.Is(err, storage.ErrAccountMissing) {
		return 0, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	if err != nil {
		return 0, err
	}
	s.logger.Info("deposit of %d to %s, balance %d", amountValue, accountNumber, newBalance)
	return newBalance, nil
}

func (s *BankService) Withdraw(ctx context.Context, accountNumber, amount string) (int64, error) {
	accountNumber, amountValue, err := s.checkMovement(accountNumber, amount)
	if err != nil {
		return 0, err
	}

	customer, err := s.store.GetCustomer(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	if customer.Balance-amountValue < s.settings.MinBalance {
		return 0, apperr.NewAppError(apperr.ErrCodeBusinessRule, "minimum balance requirement not met", nil)
	}

	// The floor is re-checked inside the storage transaction, so even a
	// concurrent writer cannot push the balance under it between the check
	// above and the update.
	floor := s.settings.MinBalance
	newBalance, err := s.store.ApplyBalanceChange(ctx, accountNumber, -amountValue, models.TxTypeWithdraw, &floor)
	if errors.Is(err, storage.ErrAccountMissing) {
		return 0, apperr.NewAppError(apperr.ErrCodeNotFound, "account not found", nil)
	}
	if errors.Is(err, storage.ErrFloorBreached) {
		return 0, apperr.NewAppError(apperr.ErrCodeBusinessRule, "minimum balance requirement not met", nil)
	}
	if err != nil {
		return 0, err
	}
	s.logger.Info("withdrawal of %d from %s, balance %d", amountValue, accountNumber, newBalance)
	return newBalance, nil
}

// checkMovement validates the account number and amount and enforces the
// per-transaction ceiling before any storage access.
func (s *BankService) checkMovement(accountNumber, amount string) (string, int64, error) {
	accountNumber, err := validator.AccountNumber(accountNumber)
	if err != nil {
		return "", 0, err
	}
	amountValue, err := validator.Amount(amount)
	if err != nil {
		return "", 0, err
	}
	if amountValue == 0 {
		return "", 0, apperr.NewAppError(apperr.ErrCodeValidation, "Amount must be a positive whole number", nil)
	}
	if amountValue > s.settings.MaxTransaction {
		return "", 0, apperr.NewAppError(apperr.ErrCodeBusinessRule,
			fmt.Sprintf("amount exceeds the per-transaction limit of %d", s.settings.MaxTransaction), nil)
	}
	return accountNumber, amountValue, nil
}

// RequireAdminAuth turns a failed admin login into an AUTH_ERROR.
func (s *BankService) RequireAdminAuth(ctx context.Context, adminID, password string) error {
	ok, err := s.AuthenticateAdmin(ctx, adminID, password)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NewAppError(apperr.ErrCodeAuth, "invalid admin credentials", nil)
	}
	return nil
}

// RequireCustomerAuth turns a failed customer login into an AUTH_ERROR.
func (s *BankService) RequireCustomerAuth(ctx context.Context, accountNumber, pin string) error {
	ok, err := s.AuthenticateCustomer(ctx, accountNumber, pin)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NewAppError(apperr.ErrCodeAuth, "invalid customer credentials", nil)
	}
	return nil
}
