package domain

import (
	"strings"

	dErrors "vaultgate/pkg/domain-errors"
)

// Address identifies a principal: an owner, a depositor, or a transfer
// recipient. The canonical form is 0x followed by 40 lower-case hex digits.
//
// Usage: construct via ParseAddress at trust boundaries to enforce the
// format; direct casting bypasses validation.
type Address string

// ZeroAddress is the null principal. It is never a valid owner or recipient.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

const addressHexLen = 40

// ParseAddress constructs an Address from external input, normalizing to
// lower case so comparisons are case-insensitive.
//
// Errors: returns CodeValidation when the value is empty or malformed.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "address cannot be empty")
	}
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		return "", dErrors.New(dErrors.CodeValidation, "address must start with 0x")
	}
	hex := s[2:]
	if len(hex) != addressHexLen {
		return "", dErrors.Newf(dErrors.CodeValidation, "address must have %d hex digits", addressHexLen)
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", dErrors.New(dErrors.CodeValidation, "address contains non-hex characters")
		}
	}
	return Address(s), nil
}

// IsZero reports whether the address is the null principal or unset.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// String returns the canonical string form.
func (a Address) String() string {
	return string(a)
}
