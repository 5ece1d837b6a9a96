// Package phone canonicalizes sender and patient numbers to the local
// national form stored on visits ("08022112211").
package phone

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var ErrUnparseable = errors.New("phone number could not be parsed")

// Canonicalize converts an international or local number into its national
// digit-only form for region. Numbers that cannot be parsed are returned with
// their non-digits stripped alongside ErrUnparseable.
func Canonicalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return digits(raw), ErrUnparseable
	}
	return digits(phonenumbers.Format(num, phonenumbers.NATIONAL)), nil
}

// IsMobile reports whether local is a valid mobile number for region.
func IsMobile(local, region string) bool {
	if local == "" {
		return false
	}
	num, err := phonenumbers.Parse(local, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return false
	}
	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	default:
		return false
	}
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
