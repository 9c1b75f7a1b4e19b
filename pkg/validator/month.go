package validator

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrEmptyMonth indicates the month label is empty
	ErrEmptyMonth = errors.New("month cannot be empty")

	// ErrInvalidMonthFormat indicates the month label is not in YYYY-MM form
	ErrInvalidMonthFormat = errors.New("month must be in YYYY-MM format")
)

// monthRegex matches a four digit year and a two digit month 01-12
var monthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// monthLayout is the accepted textual form of a month label
const monthLayout = "2006-01"

// MonthValidator handles month label validation and normalization
type MonthValidator struct{}

// NewMonthValidator creates a new month validator instance
func NewMonthValidator() *MonthValidator {
	return &MonthValidator{}
}

// Validate validates a YYYY-MM month label and returns the first-of-month
// date stamp used as the storage key for that month.
func (v *MonthValidator) Validate(label string) (time.Time, error) {
	if label == "" {
		return time.Time{}, ErrEmptyMonth
	}

	if !monthRegex.MatchString(label) {
		return time.Time{}, ErrInvalidMonthFormat
	}

	month, err := time.Parse(monthLayout, label)
	if err != nil {
		return time.Time{}, ErrInvalidMonthFormat
	}

	return month, nil
}

// Normalize returns the first-of-month date string (YYYY-MM-01) for a label
func (v *MonthValidator) Normalize(label string) (string, error) {
	month, err := v.Validate(label)
	if err != nil {
		return "", err
	}
	return month.Format("2006-01-02"), nil
}

// Format renders a month stamp back to its YYYY-MM label
func (v *MonthValidator) Format(month time.Time) string {
	return month.Format(monthLayout)
}

// IsValid is a convenience method that returns true if the label is valid
func (v *MonthValidator) IsValid(label string) bool {
	_, err := v.Validate(label)
	return err == nil
}

// MustValidate validates and panics if invalid (use for testing only)
func (v *MonthValidator) MustValidate(label string) time.Time {
	month, err := v.Validate(label)
	if err != nil {
		panic(fmt.Sprintf("invalid month label %s: %v", label, err))
	}
	return month
}
