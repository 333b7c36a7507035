package core

import "strings"

// Currency is a display currency code. It never affects stored amounts.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"

	DefaultCurrency = RUB
)

var currencyLabels = map[Currency]string{
	USD: "долл.",
	EUR: "евро",
	RUB: "руб.",
}

// Currencies lists the supported codes in display order.
func Currencies() []Currency {
	return []Currency{RUB, USD, EUR}
}

func (c Currency) Valid() bool {
	_, ok := currencyLabels[c]
	return ok
}

// Label returns the display label; unknown codes fall back to the default.
func (c Currency) Label() string {
	if l, ok := currencyLabels[c]; ok {
		return l
	}
	return currencyLabels[DefaultCurrency]
}

// CurrencyFromLabel maps a display label back to its code, falling back to
// the default for unknown labels.
func CurrencyFromLabel(label string) Currency {
	label = strings.TrimSpace(label)
	for code, l := range currencyLabels {
		if l == label {
			return code
		}
	}
	return DefaultCurrency
}

// NormalizeCurrency accepts either a code or a label. Anything it does not
// recognise becomes the default currency.
func NormalizeCurrency(s string) Currency {
	code := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if code.Valid() {
		return code
	}
	return CurrencyFromLabel(s)
}
