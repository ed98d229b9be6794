package core

// validation.go provides field-level validation for canonical records.
//
// Validation happens after a row has been mapped and placed in the folder
// tree. A failing record is excluded from the accepted set and reported
// with its raw row; the import carries on with the next row.

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Canonical field name
	Value   string // The invalid value (may be truncated)
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// maxEchoedValue bounds how much of an invalid value is kept on the error.
const maxEchoedValue = 64

// checkLength rejects values longer than max runes.
func checkLength(field CanonicalField, value string, max int) error {
	n := utf8.RuneCountInString(value)
	if n <= max {
		return nil
	}
	echo := value
	if len(echo) > maxEchoedValue {
		echo = string([]rune(echo)[:maxEchoedValue/4]) + "…"
	}
	return ValidationError{
		Field:   string(field),
		Value:   echo,
		Message: "value too long (" + strconv.Itoa(n) + " > " + strconv.Itoa(max) + " characters)",
	}
}
