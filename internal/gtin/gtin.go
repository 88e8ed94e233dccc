// Package gtin validates EAN/GTIN product identifiers.
package gtin

import (
	"github.com/rotisserie/eris"
)

// Validation errors. All of them are input errors reported per identifier;
// none abort a batch.
var (
	ErrNotDigits = eris.New("gtin: identifier must be digits only")
	ErrLength    = eris.New("gtin: identifier must be 8, 12, 13 or 14 digits")
	ErrChecksum  = eris.New("gtin: check digit mismatch (possible typo)")
)

// validLengths covers EAN-8, UPC-A, EAN-13 and GTIN-14.
var validLengths = map[int]bool{8: true, 12: true, 13: true, 14: true}

// Validate checks that ean is a well-formed GTIN: digits only, supported
// length, and a matching check digit.
func Validate(ean string) error {
	if len(ean) == 0 {
		return ErrNotDigits
	}
	for _, r := range ean {
		if r < '0' || r > '9' {
			return ErrNotDigits
		}
	}
	if !validLengths[len(ean)] {
		return ErrLength
	}
	if CheckDigit(ean[:len(ean)-1]) != int(ean[len(ean)-1]-'0') {
		return ErrChecksum
	}
	return nil
}

// CheckDigit computes the GTIN check digit for a digit string without its
// trailing check digit. Weights alternate 3, 1 from the rightmost data digit.
func CheckDigit(data string) int {
	sum := 0
	weight := 3
	for i := len(data) - 1; i >= 0; i-- {
		sum += int(data[i]-'0') * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	return (10 - sum%10) % 10
}
