package validator

import (
	"testing"

	"bankdesk/dto"
	"bankdesk/errors"
)

func wantValidationError(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}
}

func TestRequireNonEmpty(t *testing.T) {
	got, err := RequireNonEmpty("  hello  ", "Field")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("got %q want %q", got, "hello")
	}

	if _, err := RequireNonEmpty("   ", "Field"); err == nil {
		t.Fatal("whitespace-only input accepted")
	} else {
		wantValidationError(t, err)
	}
}

func TestAccountNumber(t *testing.T) {
	if got, err := AccountNumber(" 12345 "); err != nil || got != "12345" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	for _, bad := range []string{"", "12a45", "12 45", "-123"} {
		if _, err := AccountNumber(bad); err == nil {
			t.Fatalf("account number %q accepted", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	if _, err := Password("secret", "Password"); err != nil {
		t.Fatal(err)
	}
	if _, err := Password("short", "Password"); err == nil {
		t.Fatal("5-char password accepted")
	} else {
		wantValidationError(t, err)
	}
}

func TestPIN(t *testing.T) {
	if got, err := PIN("1234"); err != nil || got != "1234" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	for _, bad := range []string{"123", "12345", "12a4", ""} {
		if _, err := PIN(bad); err == nil {
			t.Fatalf("PIN %q accepted", bad)
		}
	}
}

func TestAccountType(t *testing.T) {
	for _, good := range []string{"Savings", "Current"} {
		if got, err := AccountType(good); err != nil || got != good {
			t.Fatalf("got (%q, %v)", got, err)
		}
	}
	for _, bad := range []string{"savings", "Checking", ""} {
		if _, err := AccountType(bad); err == nil {
			t.Fatalf("account type %q accepted", bad)
		}
	}
}

func TestGender(t *testing.T) {
	for _, bad := range []string{"male", "Other", ""} {
		if _, err := Gender(bad); err == nil {
			t.Fatalf("gender %q accepted", bad)
		}
	}
	if got, err := Gender("Female"); err != nil || got != "Female" {
		t.Fatalf("got (%q, %v)", got, err)
	}
}

func TestMobile(t *testing.T) {
	if got, err := Mobile("1234567890"); err != nil || got != "1234567890" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	if got, err := Mobile("12345678901"); err != nil || got != "12345678901" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	for _, bad := range []string{"123456789", "123456789012", "12345abcde"} {
		if _, err := Mobile(bad); err == nil {
			t.Fatalf("mobile %q accepted", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	parsed, raw, err := ParseDate("01/01/2000", "Date of birth")
	if err != nil {
		t.Fatal(err)
	}
	if raw != "01/01/2000" || parsed.Year() != 2000 {
		t.Fatalf("got (%v, %q)", parsed, raw)
	}

	for _, bad := range []string{"2000-01-01", "1/1/2000", "32/01/2000", "abc"} {
		if _, _, err := ParseDate(bad, "Date of birth"); err == nil {
			t.Fatalf("date %q accepted", bad)
		}
	}
}

func TestDateOfBirth(t *testing.T) {
	if got, err := DateOfBirth("01/01/2000"); err != nil || got != "01/01/2000" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	if _, err := DateOfBirth("01/01/2999"); err == nil {
		t.Fatal("future date of birth accepted")
	}
	if _, err := DateOfBirth("01/01/1899"); err == nil {
		t.Fatal("pre-1900 date of birth accepted")
	}
}

func TestAmount(t *testing.T) {
	if got, err := Amount("2500"); err != nil || got != 2500 {
		t.Fatalf("got (%d, %v)", got, err)
	}
	for _, bad := range []string{"", "-5", "+5", "12.50", "abc"} {
		if _, err := Amount(bad); err == nil {
			t.Fatalf("amount %q accepted", bad)
		}
	}
}

func TestCreateCustomerRequiredFields(t *testing.T) {
	input := dto.CreateCustomerInput{
		AccountNumber:  "12345",
		Name:           "Test User",
		AccountType:    "Savings",
		DateOfBirth:    "01/01/2000",
		Mobile:         "1234567890",
		Gender:         "Male",
		Nationality:    "Testland",
		KYCDocument:    "Passport",
		PIN:            "1234",
		InitialBalance: "10000",
	}
	if err := CreateCustomer(input); err != nil {
		t.Fatal(err)
	}

	input.Mobile = ""
	if err := CreateCustomer(input); err == nil {
		t.Fatal("missing mobile accepted")
	} else {
		wantValidationError(t, err)
	}
}
