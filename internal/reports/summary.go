package reports

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

// CardFormat selects how a summary value is printed.
type CardFormat string

const (
	FormatMoney   CardFormat = "money"
	FormatCount   CardFormat = "count"
	FormatPercent CardFormat = "percent"
)

// Card is one summary tile above a report table.
type Card struct {
	Label  string
	Value  decimal.Decimal
	Format CardFormat
}

// Display formats the card value for its format.
func (c Card) Display() string {
	switch c.Format {
	case FormatMoney:
		return view.FormatMoney(c.Value)
	case FormatPercent:
		return view.FormatPercent(c.Value)
	}
	return view.FormatNumber(c.Value)
}

// Amount reads the first numeric value among keys as a decimal.
func Amount(row apiclient.Record, keys ...string) decimal.Decimal {
	for _, key := range keys {
		v, ok := row.Get(key)
		if !ok || v == nil {
			continue
		}
		s := strings.ReplaceAll(strings.TrimSpace(apiclient.FormatValue(v)), ",", "")
		if s == "" {
			continue
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Sum totals a numeric column.
func Sum(rows []apiclient.Record, keys ...string) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(Amount(row, keys...))
	}
	return total
}

// Average is Sum divided by the row count, zero for no rows.
func Average(rows []apiclient.Record, keys ...string) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}
	return Sum(rows, keys...).DivRound(decimal.NewFromInt(int64(len(rows))), 2)
}

// Count counts rows matching pred.
func Count(rows []apiclient.Record, pred func(apiclient.Record) bool) int64 {
	var n int64
	for _, row := range rows {
		if pred == nil || pred(row) {
			n++
		}
	}
	return n
}

// Distinct counts distinct non-empty values of a column.
func Distinct(rows []apiclient.Record, keys ...string) int64 {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if v := strings.TrimSpace(row.String(keys...)); v != "" {
			seen[v] = struct{}{}
		}
	}
	return int64(len(seen))
}

// FieldEquals matches rows whose field equals one of values, ignoring case.
func FieldEquals(keys []string, values ...string) func(apiclient.Record) bool {
	return func(row apiclient.Record) bool {
		v := strings.TrimSpace(row.String(keys...))
		for _, want := range values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	}
}

// CountCard builds a count tile.
func CountCard(label string, n int64) Card {
	return Card{Label: label, Value: decimal.NewFromInt(n), Format: FormatCount}
}

// MoneyCard builds an amount tile.
func MoneyCard(label string, v decimal.Decimal) Card {
	return Card{Label: label, Value: v, Format: FormatMoney}
}
