package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaskEmail masks an email address for transaction tables.
// "abcdef@gmail.com" becomes "abc***@gm...l.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	if len(local) > 3 {
		local = local[:3]
	}
	local += "***"

	dot := strings.LastIndex(domain, ".")
	if dot > 0 {
		main, tld := domain[:dot], domain[dot+1:]
		if len(main) > 3 {
			main = main[:2] + "..." + main[len(main)-1:]
		}
		domain = main + "." + tld
	} else if len(domain) > 4 {
		domain = domain[:2] + "..." + domain[len(domain)-2:]
	}

	return local + "@" + domain
}

// ToDisplayCurrency converts an amount to the display currency using
// the fixed rate multiplier. Non-USD currencies display as-is.
func ToDisplayCurrency(amount decimal.Decimal, currency string, rate decimal.Decimal) decimal.Decimal {
	if strings.EqualFold(currency, "USD") {
		return amount.Mul(rate)
	}
	return amount
}
