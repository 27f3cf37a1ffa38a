package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"bankdesk/dto"
	"bankdesk/migrate"
	"bankdesk/services/logger"
)

// initCmd prepares the database and, when bootstrap credentials are
// configured and no admin exists yet, creates the bootstrap admin.
type initCmd struct{}

func (*initCmd) Name() string             { return "init" }
func (*initCmd) Synopsis() string         { return "create the database schema and bootstrap admin" }
func (*initCmd) Usage() string            { return "init\n" }
func (*initCmd) SetFlags(f *flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, settings, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	exists, err := service.AdminExists(ctx, "")
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Database ready at %s\n", settings.DBPath)
	if !exists {
		fmt.Println("No admin accounts exist yet; create one with create-admin.")
	}
	return subcommands.ExitSuccess
}

// importCmd runs the one-time legacy flat-file import.
type importCmd struct {
	adminFile    string
	customerFile string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import the legacy flat-file databases" }
func (*importCmd) Usage() string {
	return `import [-admins <file>] [-customers <file>]

  Reads the delimiter-separated legacy record files and funnels every record
  through the normal creation operations. Failing records are logged and
  skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.adminFile, "admins", "database/Admin/adminDatabase.txt", "legacy admin file")
	f.StringVar(&c.customerFile, "customers", "database/Customer/customerDatabase.txt", "legacy customer file")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	runner := migrate.NewRunner(service, logger.NewDefaultLogger(logger.InfoLevel))
	admins := runner.Admins(ctx, c.adminFile)
	customers := runner.Customers(ctx, c.customerFile)
	fmt.Printf("Migration complete: %d admins, %d customers imported.\n", admins, customers)
	return subcommands.ExitSuccess
}

type createAdminCmd struct {
	id       string
	password string
}

func (*createAdminCmd) Name() string     { return "create-admin" }
func (*createAdminCmd) Synopsis() string { return "create an admin account" }
func (*createAdminCmd) Usage() string    { return "create-admin -id <id> -password <password>\n" }

func (c *createAdminCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "admin identifier")
	f.StringVar(&c.password, "password", "", "admin password (min 6 characters)")
}

func (c *createAdminCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.CreateAdmin(ctx, c.id, c.password); err != nil {
		return fail(err)
	}
	fmt.Printf("Admin %q created.\n", c.id)
	return subcommands.ExitSuccess
}

// deleteAdminCmd removes an admin after re-authenticating the caller, whose
// own identity stays undeletable.
type deleteAdminCmd struct {
	id       string
	as       string
	password string
}

func (*deleteAdminCmd) Name() string     { return "delete-admin" }
func (*deleteAdminCmd) Synopsis() string { return "delete an admin account" }
func (*deleteAdminCmd) Usage() string {
	return "delete-admin -id <id> -as <caller id> -password <caller password>\n"
}

func (c *deleteAdminCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "admin identifier to delete")
	f.StringVar(&c.as, "as", "", "identifier of the admin performing the deletion")
	f.StringVar(&c.password, "password", "", "password of the admin performing the deletion")
}

func (c *deleteAdminCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.RequireAdminAuth(ctx, c.as, c.password); err != nil {
		return fail(err)
	}
	if err := service.DeleteAdmin(ctx, c.id, c.as); err != nil {
		return fail(err)
	}
	fmt.Printf("Admin %q deleted.\n", c.id)
	return subcommands.ExitSuccess
}

type adminLoginCmd struct {
	id       string
	password string
}

func (*adminLoginCmd) Name() string     { return "admin-login" }
func (*adminLoginCmd) Synopsis() string { return "verify admin credentials" }
func (*adminLoginCmd) Usage() string    { return "admin-login -id <id> -password <password>\n" }

func (c *adminLoginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "admin identifier")
	f.StringVar(&c.password, "password", "", "admin password")
}

func (c *adminLoginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.RequireAdminAuth(ctx, c.id, c.password); err != nil {
		return fail(err)
	}
	fmt.Printf("Welcome, %s.\n", c.id)
	return subcommands.ExitSuccess
}

type openAccountCmd struct {
	input dto.CreateCustomerInput
}

func (*openAccountCmd) Name() string     { return "open-account" }
func (*openAccountCmd) Synopsis() string { return "open a customer account" }
func (*openAccountCmd) Usage() string {
	return `open-account -number <acct> -name <name> -type <Savings|Current> -dob <DD/MM/YYYY>
             -mobile <digits> -gender <Male|Female> -nationality <text>
             -kyc <document> -pin <4 digits> -balance <amount>
`
}

func (c *openAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input.AccountNumber, "number", "", "account number (numeric, caller-supplied)")
	f.StringVar(&c.input.Name, "name", "", "customer name")
	f.StringVar(&c.input.AccountType, "type", "", "account type: Savings or Current")
	f.StringVar(&c.input.DateOfBirth, "dob", "", "date of birth, DD/MM/YYYY")
	f.StringVar(&c.input.Mobile, "mobile", "", "mobile number, 10 or 11 digits")
	f.StringVar(&c.input.Gender, "gender", "", "gender: Male or Female")
	f.StringVar(&c.input.Nationality, "nationality", "", "nationality")
	f.StringVar(&c.input.KYCDocument, "kyc", "", "KYC document reference")
	f.StringVar(&c.input.PIN, "pin", "", "4-digit PIN")
	f.StringVar(&c.input.InitialBalance, "balance", "", "initial balance (whole number)")
}

func (c *openAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.CreateCustomer(ctx, c.input); err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s opened.\n", c.input.AccountNumber)
	return subcommands.ExitSuccess
}

// closeAccountCmd deletes a customer account and, by cascade, its entire
// transaction history.
type closeAccountCmd struct {
	number string
}

func (*closeAccountCmd) Name() string     { return "close-account" }
func (*closeAccountCmd) Synopsis() string { return "delete a customer account and its history" }
func (*closeAccountCmd) Usage() string    { return "close-account -number <acct>\n" }

func (c *closeAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
}

func (c *closeAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.DeleteCustomer(ctx, c.number); err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s closed.\n", c.number)
	return subcommands.ExitSuccess
}

// loginCmd authenticates a customer by account number, mobile number, or
// name. Unknown identifiers and wrong PINs produce the same failure.
type loginCmd struct {
	identifier string
	pin        string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "customer login by account number, mobile, or name" }
func (*loginCmd) Usage() string    { return "login -id <identifier> -pin <4 digits>\n" }

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.identifier, "id", "", "account number, mobile number, or name")
	f.StringVar(&c.pin, "pin", "", "4-digit PIN")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	accountNumber, ok, err := service.AuthenticateCustomerByIdentifier(ctx, c.identifier, c.pin)
	if err != nil {
		return fail(err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: invalid credentials")
		return subcommands.ExitFailure
	}
	fmt.Printf("Logged in to account %s.\n", accountNumber)
	return subcommands.ExitSuccess
}

// changePINCmd re-verifies the current PIN before setting the new one.
type changePINCmd struct {
	number string
	pin    string
	newPIN string
}

func (*changePINCmd) Name() string     { return "change-pin" }
func (*changePINCmd) Synopsis() string { return "change an account's PIN" }
func (*changePINCmd) Usage() string    { return "change-pin -number <acct> -pin <current> -new <new>\n" }

func (c *changePINCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
	f.StringVar(&c.pin, "pin", "", "current 4-digit PIN")
	f.StringVar(&c.newPIN, "new", "", "new 4-digit PIN")
}

func (c *changePINCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.RequireCustomerAuth(ctx, c.number, c.pin); err != nil {
		return fail(err)
	}
	if err := service.ChangePIN(ctx, c.number, c.newPIN); err != nil {
		return fail(err)
	}
	fmt.Println("PIN changed.")
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	number string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the full profile of an account" }
func (*summaryCmd) Usage() string    { return "summary -number <acct>\n" }

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	summary, err := service.GetCustomerSummary(ctx, c.number)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account:      %s\n", summary.AccountNumber)
	fmt.Printf("Name:         %s\n", summary.Name)
	fmt.Printf("Type:         %s\n", summary.AccountType)
	fmt.Printf("Balance:      %s\n", formatAmount(summary.Balance))
	fmt.Printf("Opened:       %s\n", summary.CreatedAt)
	fmt.Printf("Born:         %s\n", summary.DateOfBirth)
	fmt.Printf("Mobile:       %s\n", summary.Mobile)
	fmt.Printf("Gender:       %s\n", summary.Gender)
	fmt.Printf("Nationality:  %s\n", summary.Nationality)
	fmt.Printf("KYC document: %s\n", summary.KYCDocument)
	return subcommands.ExitSuccess
}

type depositCmd struct {
	number string
	amount string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit into an account" }
func (*depositCmd) Usage() string    { return "deposit -number <acct> -amount <whole number>\n" }

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
	f.StringVar(&c.amount, "amount", "", "amount to deposit")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	balance, err := service.Deposit(ctx, c.number, c.amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("New balance: %s\n", formatAmount(balance))
	return subcommands.ExitSuccess
}

type withdrawCmd struct {
	number string
	amount string
	pin    string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw from an account" }
func (*withdrawCmd) Usage() string {
	return "withdraw -number <acct> -pin <4 digits> -amount <whole number>\n"
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
	f.StringVar(&c.pin, "pin", "", "account PIN")
	f.StringVar(&c.amount, "amount", "", "amount to withdraw")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	if err := service.RequireCustomerAuth(ctx, c.number, c.pin); err != nil {
		return fail(err)
	}
	balance, err := service.Withdraw(ctx, c.number, c.amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("New balance: %s\n", formatAmount(balance))
	return subcommands.ExitSuccess
}

type balanceCmd struct {
	number string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show an account balance" }
func (*balanceCmd) Usage() string    { return "balance -number <acct>\n" }

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	balance, err := service.GetBalance(ctx, c.number)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Balance: %s\n", formatAmount(balance))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	number string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list an account's transactions" }
func (*historyCmd) Usage() string    { return "history -number <acct>\n" }

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "account number")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, _, err := newService(ctx)
	if err != nil {
		return fail(err)
	}
	txs, err := service.TransactionHistory(ctx, c.number)
	if err != nil {
		return fail(err)
	}
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return subcommands.ExitSuccess
	}
	for _, tx := range txs {
		fmt.Printf("%s  %-8s  %12s  balance %s\n",
			tx.CreatedAt, tx.TxType, formatAmount(tx.Amount), formatAmount(tx.BalanceAfter))
	}
	return subcommands.ExitSuccess
}
