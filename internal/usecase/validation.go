package usecase

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
)

// MaxLoginLength bounds usernames in bytes.
const MaxLoginLength = 64

// ValidateLogin trims raw and checks it can be stored as a credential key.
// Commas and colons are reserved by the csv ledger and the token format.
func ValidateLogin(raw string) (string, error) {
	login := strings.TrimSpace(raw)
	if login == "" {
		return "", fmt.Errorf("%w: login is required", domainErrors.ErrInvalidInput)
	}
	if len(login) > MaxLoginLength {
		return "", fmt.Errorf("%w: login exceeds %d bytes", domainErrors.ErrInvalidInput, MaxLoginLength)
	}
	for _, r := range login {
		if r == ',' || r == ':' || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: login contains forbidden character %q", domainErrors.ErrInvalidInput, r)
		}
	}
	return login, nil
}

type submission struct {
	productName string
	condition   model.Condition
	daysUsed    int
	pickupDate  string
	pickupTime  string
}

// validateSubmission normalizes raw form input or reports the first invalid field.
func validateSubmission(in model.SubmitReturn) (submission, error) {
	var s submission

	s.productName = strings.TrimSpace(in.ProductName)
	if s.productName == "" {
		return s, fmt.Errorf("%w: product name is required", domainErrors.ErrInvalidInput)
	}

	condition, ok := model.ParseCondition(in.Condition)
	if !ok {
		return s, fmt.Errorf("%w: unknown condition %q", domainErrors.ErrInvalidInput, in.Condition)
	}
	s.condition = condition

	if in.DaysUsed == nil {
		return s, fmt.Errorf("%w: days used is required", domainErrors.ErrInvalidInput)
	}
	if *in.DaysUsed < 0 {
		return s, fmt.Errorf("%w: days used must not be negative", domainErrors.ErrInvalidInput)
	}
	s.daysUsed = *in.DaysUsed

	var err error
	if s.pickupDate, err = strictLayout(in.PickupDate, model.PickupDateLayout); err != nil {
		return s, fmt.Errorf("%w: pickup date must be YYYY-MM-DD", domainErrors.ErrInvalidInput)
	}
	if s.pickupTime, err = strictLayout(in.PickupTime, model.PickupTimeLayout); err != nil {
		return s, fmt.Errorf("%w: pickup time must be HH:MM", domainErrors.ErrInvalidInput)
	}

	return s, nil
}

// strictLayout accepts value only in the canonical zero-padded form of layout.
func strictLayout(value, layout string) (string, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", err
	}
	if t.Format(layout) != value {
		return "", fmt.Errorf("%q is not in %s form", value, layout)
	}
	return value, nil
}
