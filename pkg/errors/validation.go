package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxPrinterNameLength is the CUPS limit for queue names.
const maxPrinterNameLength = 127

// ValidatePrinterName validates a print queue name before it is handed to
// the spooler. The name is not checked against the live printer list.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No leading dash (lpr would read the name as an option)
//   - No whitespace, slash or '#' (CUPS rejects them in queue names)
//   - Maximum length of 127 bytes
func ValidatePrinterName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPrinter, "printer name cannot be empty")
	}

	if len(name) > maxPrinterNameLength {
		return New(ErrCodeInvalidPrinter, "printer name too long (max %d characters)", maxPrinterNameLength)
	}

	if strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidPrinter, "printer name cannot start with '-': %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPrinter, "printer name contains invalid control characters")
		}
		if unicode.IsSpace(r) || r == '/' || r == '#' {
			return New(ErrCodeInvalidPrinter, "printer name contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateDimension checks that a physical page dimension in millimeters is
// a positive finite number. what names the dimension in the message.
func ValidateDimension(what string, mm float64) error {
	if math.IsNaN(mm) || math.IsInf(mm, 0) {
		return New(ErrCodeInvalidDimensions, "%s must be a finite number, got %v", what, mm)
	}
	if mm <= 0 {
		return New(ErrCodeInvalidDimensions, "%s must be greater than 0mm, got %v", what, mm)
	}
	return nil
}
