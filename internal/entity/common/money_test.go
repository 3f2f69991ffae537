package common

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "number", in: `5000000`, want: "5000000"},
		{name: "fraction", in: `1250.5`, want: "1250.5"},
		{name: "grouped string", in: `"5,000,000"`, want: "5000000"},
		{name: "spaced string", in: `" 200 000 "`, want: "200000"},
		{name: "garbage", in: `"abc"`, want: "0"},
		{name: "null", in: `null`, want: "0"},
		{name: "empty string", in: `""`, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Amount Money `json:"amount"`
			}
			if err := json.Unmarshal([]byte(`{"amount":`+tt.in+`}`), &payload); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := decimal.RequireFromString(tt.want)
			if !payload.Amount.Equal(want) {
				t.Errorf("expected %s, got %s", want, payload.Amount.String())
			}
		})
	}
}

func TestMoneyMissingFieldIsZero(t *testing.T) {
	var payload struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payload.Amount.IsZero() {
		t.Errorf("expected zero, got %s", payload.Amount.String())
	}
}
