package models

import (
	"fmt"
	"strings"
)

// currencyExponents lists minor-unit exponents that differ from the usual
// two decimal places.
var currencyExponents = map[string]int{
	"IDR": 0,
	"JPY": 0,
	"KRW": 0,
}

// CurrencyExponent returns the number of minor-unit decimal places for an
// ISO currency code.
func CurrencyExponent(currency string) int {
	if exp, ok := currencyExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// FormatMinor renders an amount of minor units as a decimal string, e.g.
// 12995 USD -> "129.95", 50000 IDR -> "50000".
func FormatMinor(amount int64, currency string) string {
	exp := CurrencyExponent(currency)
	if exp == 0 {
		return fmt.Sprintf("%d", amount)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	div := int64(1)
	for i := 0; i < exp; i++ {
		div *= 10
	}
	return fmt.Sprintf("%s%d.%0*d", sign, amount/div, exp, amount%div)
}

// MoneyAmount pairs minor units with their display form, labeled by
// currency. Consolidated totals across providers are lists of these;
// currencies are never implicitly converted or collapsed.
type MoneyAmount struct {
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted"`
	Currency  string `json:"currency"`
}

// NewMoneyAmount builds a labeled amount.
func NewMoneyAmount(amount int64, currency string) MoneyAmount {
	return MoneyAmount{
		Amount:    amount,
		Formatted: FormatMinor(amount, currency),
		Currency:  strings.ToUpper(currency),
	}
}
