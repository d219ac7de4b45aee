// Package forms turns submitted requests into validated values. Each form
// keeps the raw submitted strings so a page can be re-rendered with the
// user's input and the field errors next to it.
package forms

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// NonFieldErrors is the Errors key for problems not tied to one input.
const NonFieldErrors = "__all__"

const DateTimeLocalLayout = "2006-01-02T15:04"

// Errors maps a field name to its first validation message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Any() bool {
	return len(e) > 0
}

func required(errs Errors, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, "This field is required.")
		return false
	}
	return true
}

func maxLength(errs Errors, field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, n))
	}
}

func validEmail(errs Errors, field, value string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		errs.Add(field, "Enter a valid email address.")
	}
}

// tryParseDate accepts the datetime-local format browsers submit plus the
// usual RFC layouts. Values without a zone are read as UTC.
func tryParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DateTimeLocalLayout,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123,
		time.RFC1123Z,
		time.RFC822,
		time.RFC822Z,
		time.RFC850,
		"2006-01-02 15:04:05-07:00",
		"2006-01-02",
	}

	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range formats {
		date, err := time.Parse(layout, dateStr)
		if err == nil {
			return date.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
