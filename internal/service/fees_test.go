package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeFee(t *testing.T) {
	tests := []struct {
		amount  string
		pct     string
		wantFee string
		wantNet string
	}{
		{"100", "5", "5", "95"},
		{"100", "0", "0", "100"},
		{"250.50", "2", "5.01", "245.49"},
		{"0.01", "1", "0", "0.01"},
		{"1000", "12.5", "125", "875"},
	}

	for _, tt := range tests {
		fee, net := ComputeFee(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.pct))
		if !fee.Equal(decimal.RequireFromString(tt.wantFee)) {
			t.Errorf("ComputeFee(%s, %s%%) fee = %s, want %s", tt.amount, tt.pct, fee, tt.wantFee)
		}
		if !net.Equal(decimal.RequireFromString(tt.wantNet)) {
			t.Errorf("ComputeFee(%s, %s%%) net = %s, want %s", tt.amount, tt.pct, net, tt.wantNet)
		}
	}
}

func TestComputeFeeConserves(t *testing.T) {
	amounts := []string{"1", "99.99", "12345.67", "0.03"}
	pcts := []string{"0", "1", "2.5", "33.33", "100"}

	for _, a := range amounts {
		for _, p := range pcts {
			amount := decimal.RequireFromString(a)
			fee, net := ComputeFee(amount, decimal.RequireFromString(p))
			if !fee.Add(net).Equal(amount) {
				t.Errorf("fee %s + net %s != amount %s (pct %s)", fee, net, amount, p)
			}
			if fee.IsNegative() || net.IsNegative() {
				t.Errorf("negative split for amount %s pct %s", a, p)
			}
		}
	}
}
