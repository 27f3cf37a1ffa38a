// Package validator normalizes and constrains raw operator input. Every
// function is pure: it either returns the normalized value or a
// VALIDATION_ERROR naming the field and the violated constraint.
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"

	"bankdesk/config"
	"bankdesk/dto"
	"bankdesk/errors"
)

var validate = playground.New()

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

// RequireNonEmpty trims value and fails when nothing remains.
func RequireNonEmpty(value, fieldName string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.NewAppError(errors.ErrCodeValidation, fieldName+" cannot be empty", nil)
	}
	return value, nil
}

// AccountNumber requires a non-empty all-digit string.
func AccountNumber(accountNumber string) (string, error) {
	accountNumber, err := RequireNonEmpty(accountNumber, "Account number")
	if err != nil {
		return "", err
	}
	if !digitsRegex.MatchString(accountNumber) {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Account number must be numeric", nil)
	}
	return accountNumber, nil
}

// AdminID requires a non-empty identifier; no further charset restriction.
func AdminID(adminID string) (string, error) {
	return RequireNonEmpty(adminID, "Admin ID")
}

// Password requires at least 6 characters.
func Password(password, fieldName string) (string, error) {
	password, err := RequireNonEmpty(password, fieldName)
	if err != nil {
		return "", err
	}
	if len(password) < 6 {
		return "", errors.NewAppError(errors.ErrCodeValidation, fieldName+" must be at least 6 characters", nil)
	}
	return password, nil
}

// PIN requires exactly 4 digits.
func PIN(pin string) (string, error) {
	pin, err := RequireNonEmpty(pin, "PIN")
	if err != nil {
		return "", err
	}
	if len(pin) != 4 || !digitsRegex.MatchString(pin) {
		return "", errors.NewAppError(errors.ErrCodeValidation, "PIN must be exactly 4 digits", nil)
	}
	return pin, nil
}

// AccountType accepts exactly Savings or Current.
func AccountType(accountType string) (string, error) {
	accountType, err := RequireNonEmpty(accountType, "Account type")
	if err != nil {
		return "", err
	}
	if accountType != "Savings" && accountType != "Current" {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Account type must be Savings or Current", nil)
	}
	return accountType, nil
}

// Gender accepts exactly Male or Female.
func Gender(gender string) (string, error) {
	gender, err := RequireNonEmpty(gender, "Gender")
	if err != nil {
		return "", err
	}
	if gender != "Male" && gender != "Female" {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Gender must be Male or Female", nil)
	}
	return gender, nil
}

// Mobile requires 10 or 11 digits.
func Mobile(mobile string) (string, error) {
	mobile, err := RequireNonEmpty(mobile, "Mobile number")
	if err != nil {
		return "", err
	}
	if !digitsRegex.MatchString(mobile) || (len(mobile) != 10 && len(mobile) != 11) {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Mobile number must be 10 or 11 digits", nil)
	}
	return mobile, nil
}

// ParseDate parses value strictly as DD/MM/YYYY.
func ParseDate(value, fieldName string) (time.Time, string, error) {
	value, err := RequireNonEmpty(value, fieldName)
	if err != nil {
		return time.Time{}, "", err
	}
	parsed, perr := time.Parse(config.DateFormat, value)
	if perr != nil {
		return time.Time{}, "", errors.NewAppError(errors.ErrCodeValidation,
			fmt.Sprintf("%s must match format DD/MM/YYYY", fieldName), perr)
	}
	return parsed, value, nil
}

// DateOfBirth parses a DD/MM/YYYY date and additionally rejects dates in the
// future or before 1900.
func DateOfBirth(value string) (string, error) {
	parsed, raw, err := ParseDate(value, "Date of birth")
	if err != nil {
		return "", err
	}
	if parsed.After(time.Now()) {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Date of birth cannot be in the future", nil)
	}
	if parsed.Year() < 1900 {
		return "", errors.NewAppError(errors.ErrCodeValidation, "Date of birth must be after 1900", nil)
	}
	return raw, nil
}

// Amount requires a non-negative whole number: digits only, no sign, no
// decimal point.
func Amount(amount string) (int64, error) {
	amount, err := RequireNonEmpty(amount, "Amount")
	if err != nil {
		return 0, err
	}
	if !digitsRegex.MatchString(amount) {
		return 0, errors.NewAppError(errors.ErrCodeValidation, "Amount must be a positive whole number", nil)
	}
	value, perr := strconv.ParseInt(amount, 10, 64)
	if perr != nil {
		return 0, errors.NewAppError(errors.ErrCodeValidation, "Amount is out of range", perr)
	}
	return value, nil
}

// CreateCustomer checks the required-field shape of the account-opening input
// before the per-field rules run in the service layer.
func CreateCustomer(input dto.CreateCustomerInput) error {
	if err := validate.Struct(input); err != nil {
		if fieldErrs, ok := err.(playground.ValidationErrors); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return errors.NewAppError(errors.ErrCodeValidation,
				fmt.Sprintf("%s failed on the %s rule", first.Field(), first.Tag()), err)
		}
		return errors.NewAppError(errors.ErrCodeValidation, "invalid customer input", err)
	}
	return nil
}
