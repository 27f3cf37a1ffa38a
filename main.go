package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"

	apperr "bankdesk/errors"

	"bankdesk/config"
	"bankdesk/security"
	"bankdesk/services"
	"bankdesk/services/logger"
	"bankdesk/storage"
)

// newService wires the full stack: env config, SQLite store, argon2 hasher,
// and the business service. The schema is migrated and the bootstrap admin
// created (when configured and none exists) on every start, matching the
// desk application's startup behavior.
func newService(ctx context.Context) (*services.BankService, config.Settings, error) {
	config.LoadEnv()
	settings := config.Load()
	config.ConnectDB(settings)

	service := services.NewBankService(services.BankServiceOptions{
		Store:    storage.NewStorage(config.DB),
		Hasher:   security.NewHasher(settings.Argon2),
		Logger:   logger.NewDefaultLogger(logger.InfoLevel),
		Settings: settings,
	})
	if err := service.Bootstrap(ctx); err != nil {
		return nil, settings, err
	}
	return service, settings, nil
}

// formatAmount renders a whole-unit balance for the operator.
func formatAmount(amount int64) string {
	return money.New(amount*100, money.INR).Display()
}

// fail reports err on stderr. Taxonomy errors are operator mistakes and
// render as-is; anything else is an internal failure.
func fail(err error) subcommands.ExitStatus {
	if apperr.IsAppError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Internal error: %v\n", err)
	}
	return subcommands.ExitFailure
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&initCmd{}, "setup")
	commander.Register(&importCmd{}, "setup")

	commander.Register(&createAdminCmd{}, "admin")
	commander.Register(&deleteAdminCmd{}, "admin")
	commander.Register(&adminLoginCmd{}, "admin")

	commander.Register(&openAccountCmd{}, "accounts")
	commander.Register(&closeAccountCmd{}, "accounts")
	commander.Register(&loginCmd{}, "accounts")
	commander.Register(&changePINCmd{}, "accounts")
	commander.Register(&summaryCmd{}, "accounts")

	commander.Register(&depositCmd{}, "money")
	commander.Register(&withdrawCmd{}, "money")
	commander.Register(&balanceCmd{}, "money")
	commander.Register(&historyCmd{}, "money")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
