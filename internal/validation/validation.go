// Package validation collects per-field violations before any write is
// attempted; a non-empty map aborts the operation with no partial state.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_be_non_negative"
	}
}

// Rate parses an optional percentage field. Empty means unset (nil). A
// malformed or negative value records a violation.
func Rate(field, value string, v Violations) *decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	r, err := decimal.NewFromString(value)
	if err != nil {
		v[field] = "invalid_number"
		return nil
	}
	if r.IsNegative() {
		v[field] = "must_be_non_negative"
		return nil
	}
	return &r
}
