// Package migrate imports the legacy flat-file databases (one record per
// block of lines, blocks separated by a "*" sentinel line). Every record goes
// through the normal service creation operations, so the live validation and
// business rules apply to imported data too. Bad records are logged and
// skipped; the batch never aborts.
package migrate

import (
	"bufio"
	"context"
	"os"
	"strings"

	"bankdesk/dto"
	"bankdesk/services"
	"bankdesk/services/logger"
)

// The legacy customer file carries a created-at column between balance and
// name; it is ignored on import because creation dates are re-stamped.
const customerRecordFields = 11

type Runner struct {
	service *services.BankService
	logger  logger.Logger
}

func NewRunner(service *services.BankService, log logger.Logger) *Runner {
	return &Runner{service: service, logger: log}
}

// ParseRecords splits lines into records on the "*" sentinel. Blank lines and
// surrounding whitespace are dropped; a trailing record without a sentinel
// still counts.
func ParseRecords(lines []string) [][]string {
	var records [][]string
	var current []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "*" {
			if len(current) > 0 {
				records = append(records, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		records = append(records, current)
	}
	return records
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// Admins imports the legacy admin file: each record is (admin id, password).
// Returns the number of admins imported.
func (r *Runner) Admins(ctx context.Context, path string) int {
	lines, err := readLines(path)
	if err != nil {
		r.logger.Info("no admin file at %s: %v", path, err)
		return 0
	}

	imported := 0
	for _, record := range ParseRecords(lines) {
		if len(record) < 2 {
			r.logger.Error("skipped short admin record %v", record)
			continue
		}
		adminID, password := record[0], record[1]
		if err := r.service.CreateAdmin(ctx, adminID, password); err != nil {
			r.logger.Error("skipped admin %s: %v", adminID, err)
			continue
		}
		r.logger.Info("imported admin %s", adminID)
		imported++
	}
	return imported
}

// Customers imports the legacy customer file. Record layout: account number,
// PIN, balance, legacy created-at (ignored), name, account type, date of
// birth, mobile, gender, nationality, KYC document. Returns the number of
// customers imported.
func (r *Runner) Customers(ctx context.Context, path string) int {
	lines, err := readLines(path)
	if err != nil {
		r.logger.Info("no customer file at %s: %v", path, err)
		return 0
	}

	imported := 0
	for _, record := range ParseRecords(lines) {
		if len(record) < customerRecordFields {
			r.logger.Error("skipped short customer record %v", record)
			continue
		}
		input := dto.CreateCustomerInput{
			AccountNumber:  record[0],
			PIN:            record[1],
			InitialBalance: record[2],
			Name:           record[4],
			AccountType:    record[5],
			DateOfBirth:    record[6],
			Mobile:         record[7],
			Gender:         record[8],
			Nationality:    record[9],
			KYCDocument:    record[10],
		}
		if err := r.service.CreateCustomer(ctx, input); err != nil {
			r.logger.Error("skipped customer %s: %v", input.AccountNumber, err)
			continue
		}
		r.logger.Info("imported customer %s", input.AccountNumber)
		imported++
	}
	return imported
}
