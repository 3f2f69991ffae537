package common

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money accepts a JSON number or a string with thousands separators
// ("5,000,000"). Anything unparsable becomes zero.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps an existing decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// UnmarshalJSON never fails; bad input decodes to zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		m.Decimal = decimal.Zero
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			m.Decimal = decimal.Zero
			return nil
		}
		m.Decimal = ParseMoney(raw)
		return nil
	}
	m.Decimal = ParseMoney(string(trimmed))
	return nil
}

// ParseMoney strips thousands separators and whitespace before parsing.
func ParseMoney(raw string) decimal.Decimal {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}
