package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts follow the Indian grouping used by the backend's reports.
var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatMoney renders an amount with two decimals and locale grouping.
func FormatMoney(v any) string {
	return printer.Sprint(number.Decimal(toFloat(v), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatNumber renders a count or quantity with locale grouping.
func FormatNumber(v any) string {
	return printer.Sprint(number.Decimal(toFloat(v), number.MaxFractionDigits(2)))
}

// FormatPercent renders a rate already expressed in percent, e.g. 9.5 -> "9.50%".
func FormatPercent(v any) string {
	return printer.Sprint(number.Decimal(toFloat(v), number.MinFractionDigits(2), number.MaxFractionDigits(2))) + "%"
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
