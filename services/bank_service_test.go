package services

import (
	"context"
	"path/filepath"
	"testing"

	"bankdesk/config"
	"bankdesk/dto"
	"bankdesk/errors"
	"bankdesk/models"
	"bankdesk/security"
	"bankdesk/services/logger"
	"bankdesk/storage"
)

func testSettings() config.Settings {
	return config.Settings{
		MinBalance:     10000,
		MaxTransaction: 25000,
		Argon2: config.Argon2Params{
			TimeCost:    1,
			MemoryCost:  8 * 1024,
			Parallelism: 1,
			KeyLength:   32,
			SaltLength:  16,
		},
		ProtectedAdmins: map[string]bool{"aayush": true},
	}
}

func testServiceWithStore(t *testing.T, settings config.Settings) (*BankService, *storage.Storage) {
	t.Helper()
	db, err := config.OpenDB(filepath.Join(t.TempDir(), "bank_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	store := storage.NewStorage(db)
	service := NewBankService(BankServiceOptions{
		Store:    store,
		Hasher:   security.NewHasher(settings.Argon2),
		Logger:   logger.NewDefaultLogger(logger.ErrorLevel),
		Settings: settings,
	})
	return service, store
}

func testService(t *testing.T, settings config.Settings) *BankService {
	t.Helper()
	service, _ := testServiceWithStore(t, settings)
	return service
}

func testCustomerInput(accountNumber, name, mobile, pin, balance string) dto.CreateCustomerInput {
	return dto.CreateCustomerInput{
		AccountNumber:  accountNumber,
		Name:           name,
		AccountType:    "Savings",
		DateOfBirth:    "01/01/2000",
		Mobile:         mobile,
		Gender:         "Male",
		Nationality:    "Testland",
		KYCDocument:    "Passport",
		PIN:            pin,
		InitialBalance: balance,
	}
}

func wantCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if !errors.Is(err, code) {
		t.Fatalf("want %s, got %v", code, err)
	}
}

func TestAdminLifecycle(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	exists, err := s.AdminExists(ctx, "")
	if err != nil || exists {
		t.Fatalf("fresh system should have no admins: exists=%v err=%v", exists, err)
	}

	if err := s.CreateAdmin(ctx, "admin", "pass123"); err != nil {
		t.Fatal(err)
	}
	exists, _ = s.AdminExists(ctx, "")
	if !exists {
		t.Fatal("admin not created")
	}

	ok, err := s.AuthenticateAdmin(ctx, "admin", "pass123")
	if err != nil || !ok {
		t.Fatalf("correct password rejected: ok=%v err=%v", ok, err)
	}
	ok, err = s.AuthenticateAdmin(ctx, "admin", "wrong")
	if err != nil || ok {
		t.Fatalf("wrong password accepted: ok=%v err=%v", ok, err)
	}
	ok, err = s.AuthenticateAdmin(ctx, "ghost", "pass123")
	if err != nil || ok {
		t.Fatalf("unknown admin must fail closed: ok=%v err=%v", ok, err)
	}
}

func TestCreateAdminDuplicate(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, "admin", "pass123"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, s.CreateAdmin(ctx, "admin", "pass456"), errors.ErrCodeConflict)
}

func TestCreateAdminShortPassword(t *testing.T) {
	s := testService(t, testSettings())
	wantCode(t, s.CreateAdmin(context.Background(), "admin", "short"), errors.ErrCodeValidation)
}

func TestDeleteAdminRules(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, "admin", "pass123"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAdmin(ctx, "other", "pass123"); err != nil {
		t.Fatal(err)
	}

	wantCode(t, s.DeleteAdmin(ctx, "admin", "admin"), errors.ErrCodeBusinessRule)
	wantCode(t, s.DeleteAdmin(ctx, "aayush", "admin"), errors.ErrCodeBusinessRule)
	wantCode(t, s.DeleteAdmin(ctx, "ghost", "admin"), errors.ErrCodeNotFound)

	if err := s.DeleteAdmin(ctx, "other", "admin"); err != nil {
		t.Fatal(err)
	}
	exists, _ := s.AdminExists(ctx, "other")
	if exists {
		t.Fatal("admin survived deletion")
	}
}

func TestBootstrapAdmin(t *testing.T) {
	settings := testSettings()
	settings.BootstrapAdminID = "boot"
	settings.BootstrapAdminPassword = "boot-pass"
	s := testService(t, settings)
	ctx := context.Background()

	if err := s.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	ok, err := s.AuthenticateAdmin(ctx, "boot", "boot-pass")
	if err != nil || !ok {
		t.Fatalf("bootstrap admin cannot log in: ok=%v err=%v", ok, err)
	}

	// A second bootstrap with an admin present is a no-op, not a Conflict.
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAdmin(ctx, "boot", "other-pass"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Fatalf("bootstrap must have created exactly one admin, got %v", err)
	}
}

func TestCreateCustomerRules(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}

	wantCode(t, s.CreateCustomer(ctx, testCustomerInput("12345", "Other User", "1234567891", "1234", "10000")),
		errors.ErrCodeConflict)
	wantCode(t, s.CreateCustomer(ctx, testCustomerInput("12346", "Poor User", "1234567892", "1234", "9999")),
		errors.ErrCodeBusinessRule)
	wantCode(t, s.CreateCustomer(ctx, testCustomerInput("abc", "Bad Number", "1234567893", "1234", "10000")),
		errors.ErrCodeValidation)

	badDOB := testCustomerInput("12347", "Bad DOB", "1234567894", "1234", "10000")
	badDOB.DateOfBirth = "2000-01-01"
	wantCode(t, s.CreateCustomer(ctx, badDOB), errors.ErrCodeValidation)
}

func TestCreateCustomerRejectsFutureDOB(t *testing.T) {
	s := testService(t, testSettings())
	input := testCustomerInput("12348", "Future Kid", "1234567895", "1234", "10000")
	input.DateOfBirth = "01/01/2999"
	wantCode(t, s.CreateCustomer(context.Background(), input), errors.ErrCodeValidation)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}

	balance, err := s.Deposit(ctx, "12345", "1000")
	if err != nil || balance != 11000 {
		t.Fatalf("deposit: balance=%d err=%v", balance, err)
	}
	balance, err = s.Withdraw(ctx, "12345", "1000")
	if err != nil || balance != 10000 {
		t.Fatalf("withdraw: balance=%d err=%v", balance, err)
	}

	txs, err := s.TransactionHistory(ctx, "12345")
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("want 2 ledger entries, got %d", len(txs))
	}
	if txs[0].TxType != models.TxTypeDeposit || txs[0].BalanceAfter != 11000 {
		t.Fatalf("bad deposit entry: %+v", txs[0])
	}
	if txs[1].TxType != models.TxTypeWithdraw || txs[1].BalanceAfter != 10000 {
		t.Fatalf("bad withdraw entry: %+v", txs[1])
	}
}

func TestWithdrawFloor(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10500")); err != nil {
		t.Fatal(err)
	}

	wantCode(t, mustErr(s.Withdraw(ctx, "12345", "501")), errors.ErrCodeBusinessRule)

	balance, err := s.GetBalance(ctx, "12345")
	if err != nil || balance != 10500 {
		t.Fatalf("rejected withdrawal changed the balance: %d err=%v", balance, err)
	}
	if txs, _ := s.TransactionHistory(ctx, "12345"); len(txs) != 0 {
		t.Fatalf("rejected withdrawal left ledger entries: %d", len(txs))
	}

	if _, err := s.Withdraw(ctx, "12345", "500"); err != nil {
		t.Fatalf("withdrawal down to the floor must pass: %v", err)
	}
}

func TestTransactionCeiling(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "50000")); err != nil {
		t.Fatal(err)
	}

	wantCode(t, mustErr(s.Deposit(ctx, "12345", "25001")), errors.ErrCodeBusinessRule)
	wantCode(t, mustErr(s.Withdraw(ctx, "12345", "25001")), errors.ErrCodeBusinessRule)
	if txs, _ := s.TransactionHistory(ctx, "12345"); len(txs) != 0 {
		t.Fatalf("over-ceiling attempts touched storage: %d entries", len(txs))
	}

	if _, err := s.Deposit(ctx, "12345", "25000"); err != nil {
		t.Fatalf("ceiling amount itself must pass: %v", err)
	}
}

func TestMovementOnMissingAccount(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	wantCode(t, mustErr(s.Deposit(ctx, "99999", "100")), errors.ErrCodeNotFound)
	wantCode(t, mustErr(s.Withdraw(ctx, "99999", "100")), errors.ErrCodeNotFound)
	wantCode(t, mustErr(s.GetBalance(ctx, "99999")), errors.ErrCodeNotFound)
}

// staleHasher hashes under deliberately different cost parameters so the
// result reads as stale against testSettings.
func staleHasher() *security.Hasher {
	return security.NewHasher(config.Argon2Params{
		TimeCost:    1,
		MemoryCost:  4 * 1024,
		Parallelism: 1,
		KeyLength:   16,
		SaltLength:  8,
	})
}

func TestAuthenticateAdminRehashesStaleHash(t *testing.T) {
	settings := testSettings()
	s, store := testServiceWithStore(t, settings)
	ctx := context.Background()

	stale, err := staleHasher().Hash("pass123")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAdmin(ctx, "admin", stale); err != nil {
		t.Fatal(err)
	}

	ok, err := s.AuthenticateAdmin(ctx, "admin", "pass123")
	if err != nil || !ok {
		t.Fatalf("login under stale parameters rejected: ok=%v err=%v", ok, err)
	}

	// The login must have overwritten the stored hash in place.
	got, found, err := store.GetAdminHash(ctx, "admin")
	if err != nil || !found {
		t.Fatalf("admin hash lookup: found=%v err=%v", found, err)
	}
	if got == stale {
		t.Fatal("stale admin hash was not replaced on login")
	}
	current := security.NewHasher(settings.Argon2)
	if valid, again := current.VerifyAndUpgrade(got, "pass123"); !valid || again != "" {
		t.Fatalf("replacement hash not at current parameters: valid=%v upgraded=%q", valid, again)
	}

	// A second login verifies against the new hash with no further rewrite.
	ok, err = s.AuthenticateAdmin(ctx, "admin", "pass123")
	if err != nil || !ok {
		t.Fatalf("login after rehash rejected: ok=%v err=%v", ok, err)
	}
	after, _, _ := store.GetAdminHash(ctx, "admin")
	if after != got {
		t.Fatal("hash rewritten again despite current parameters")
	}
}

func TestAuthenticateCustomerRehashesStalePIN(t *testing.T) {
	settings := testSettings()
	s, store := testServiceWithStore(t, settings)
	ctx := context.Background()

	stale, err := staleHasher().Hash("1234")
	if err != nil {
		t.Fatal(err)
	}
	err = store.CreateCustomer(ctx, &models.Customer{
		AccountNumber: "77777",
		PINHash:       stale,
		Balance:       10000,
		CreatedAt:     "01/01/2024",
		Name:          "Stale User",
		AccountType:   models.AccountTypeSavings,
		DateOfBirth:   "01/01/2000",
		Mobile:        "1234567890",
		Gender:        "Female",
		Nationality:   "Testland",
		KYCDocument:   "Passport",
	})
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.AuthenticateCustomer(ctx, "77777", "1234")
	if err != nil || !ok {
		t.Fatalf("login under stale parameters rejected: ok=%v err=%v", ok, err)
	}

	customer, err := store.GetCustomer(ctx, "77777")
	if err != nil || customer == nil {
		t.Fatalf("customer lookup: %+v err=%v", customer, err)
	}
	if customer.PINHash == stale {
		t.Fatal("stale PIN hash was not replaced on login")
	}
	current := security.NewHasher(settings.Argon2)
	if valid, again := current.VerifyAndUpgrade(customer.PINHash, "1234"); !valid || again != "" {
		t.Fatalf("replacement hash not at current parameters: valid=%v upgraded=%q", valid, again)
	}

	// Wrong PIN against the stale hash must not rewrite anything.
	if ok, _ := s.AuthenticateCustomer(ctx, "77777", "0000"); ok {
		t.Fatal("wrong PIN accepted")
	}
}

func TestCustomerAuthentication(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("55555", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}

	ok, err := s.AuthenticateCustomer(ctx, "55555", "1234")
	if err != nil || !ok {
		t.Fatalf("correct PIN rejected: ok=%v err=%v", ok, err)
	}
	ok, _ = s.AuthenticateCustomer(ctx, "55555", "0000")
	if ok {
		t.Fatal("wrong PIN accepted")
	}
	ok, _ = s.AuthenticateCustomer(ctx, "99999", "1234")
	if ok {
		t.Fatal("unknown account must fail closed")
	}

	if err := s.ChangePIN(ctx, "55555", "9999"); err != nil {
		t.Fatal(err)
	}
	ok, _ = s.AuthenticateCustomer(ctx, "55555", "9999")
	if !ok {
		t.Fatal("new PIN rejected after change")
	}
	ok, _ = s.AuthenticateCustomer(ctx, "55555", "1234")
	if ok {
		t.Fatal("old PIN still works after change")
	}

	wantCode(t, s.ChangePIN(ctx, "99999", "9999"), errors.ErrCodeNotFound)
	wantCode(t, s.ChangePIN(ctx, "55555", "12"), errors.ErrCodeValidation)
}

func TestIdentifierLogin(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("98765", "Unique User", "9998887776", "1212", "10000")); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		identifier string
		pin        string
		want       string
		wantOK     bool
	}{
		{"98765", "1212", "98765", true},
		{"9998887776", "1212", "98765", true},
		{"Unique User", "1212", "98765", true},
		{"unique user", "1212", "98765", true},
		{"9998887776", "0000", "", false},
		{"no match", "1212", "", false},
	}
	for _, tc := range cases {
		got, ok, err := s.AuthenticateCustomerByIdentifier(ctx, tc.identifier, tc.pin)
		if err != nil {
			t.Fatalf("identifier %q: %v", tc.identifier, err)
		}
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("identifier %q: got (%q, %v) want (%q, %v)", tc.identifier, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIdentifierPriority(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	// One customer's mobile number is another customer's account number; the
	// account-number interpretation must win.
	if err := s.CreateCustomer(ctx, testCustomerInput("1234567890", "Account Holder", "1112223334", "1111", "10000")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCustomer(ctx, testCustomerInput("22222", "Mobile Holder", "1234567890", "2222", "10000")); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.AuthenticateCustomerByIdentifier(ctx, "1234567890", "1111")
	if err != nil || !ok || got != "1234567890" {
		t.Fatalf("account number must outrank mobile: got (%q, %v, %v)", got, ok, err)
	}
	// The mobile holder's PIN does not unlock via the shared identifier.
	_, ok, err = s.AuthenticateCustomerByIdentifier(ctx, "1234567890", "2222")
	if err != nil || ok {
		t.Fatalf("PIN checked against the wrong account: ok=%v err=%v", ok, err)
	}
}

func TestDeleteCustomerCascade(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Deposit(ctx, "12345", "500"); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteCustomer(ctx, "12345"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, s.DeleteCustomer(ctx, "12345"), errors.ErrCodeNotFound)
	wantCode(t, mustErr(s.GetBalance(ctx, "12345")), errors.ErrCodeNotFound)
	wantCode(t, errOf(s.TransactionHistory(ctx, "12345")), errors.ErrCodeNotFound)
}

func TestGetCustomerSummary(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}

	summary, err := s.GetCustomerSummary(ctx, "12345")
	if err != nil {
		t.Fatal(err)
	}
	if summary.AccountNumber != "12345" || summary.Name != "Test User" ||
		summary.Balance != 10000 || summary.AccountType != "Savings" ||
		summary.Mobile != "1234567890" || summary.DateOfBirth != "01/01/2000" ||
		summary.Gender != "Male" || summary.Nationality != "Testland" ||
		summary.KYCDocument != "Passport" {
		t.Fatalf("bad summary: %+v", summary)
	}

	_, err = s.GetCustomerSummary(ctx, "99999")
	wantCode(t, err, errors.ErrCodeNotFound)
}

func TestRequireAuthHelpers(t *testing.T) {
	s := testService(t, testSettings())
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, "admin", "pass123"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCustomer(ctx, testCustomerInput("12345", "Test User", "1234567890", "1234", "10000")); err != nil {
		t.Fatal(err)
	}

	if err := s.RequireAdminAuth(ctx, "admin", "pass123"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, s.RequireAdminAuth(ctx, "admin", "wrong"), errors.ErrCodeAuth)
	if err := s.RequireCustomerAuth(ctx, "12345", "1234"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, s.RequireCustomerAuth(ctx, "12345", "0000"), errors.ErrCodeAuth)
}

func mustErr(_ int64, err error) error {
	return err
}

func errOf(_ []models.Transaction, err error) error {
	return err
}
