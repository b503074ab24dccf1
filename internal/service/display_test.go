package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"abcdef@gmail.com", "abc***@gm...l.com"},
		{"ab@x.io", "ab***@x.io"},
		{"not-an-email", "not-an-email"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.email); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestToDisplayCurrency(t *testing.T) {
	rate := decimal.RequireFromString("1500")

	usd := ToDisplayCurrency(decimal.RequireFromString("2"), "USD", rate)
	if !usd.Equal(decimal.RequireFromString("3000")) {
		t.Errorf("USD conversion = %s, want 3000", usd)
	}

	ngn := ToDisplayCurrency(decimal.RequireFromString("2"), "NGN", rate)
	if !ngn.Equal(decimal.RequireFromString("2")) {
		t.Errorf("NGN amount must display as-is, got %s", ngn)
	}
}
