package records

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"contalink/internal/metadata"
)

// Totals sums the currency and number columns of a page. Missing and null
// values count as zero; values that are not numeric are skipped.
func Totals(d *metadata.TableDescriptor, rows []Record) map[string]decimal.Decimal {
	cols := d.FieldsWithFormat(metadata.FormatCurrency, metadata.FormatNumber)
	out := make(map[string]decimal.Decimal, len(cols))
	for _, c := range cols {
		sum := decimal.Zero
		for _, row := range rows {
			if v, ok := toDecimal(row[c]); ok {
				sum = sum.Add(v)
			}
		}
		out[c] = sum
	}
	return out
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case driver.Valuer:
		// pgtype.Numeric and friends report their value as a string.
		raw, err := n.Value()
		if err != nil || raw == nil {
			return decimal.Zero, false
		}
		if _, again := raw.(driver.Valuer); again {
			return decimal.Zero, false
		}
		return toDecimal(raw)
	case fmt.Stringer:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	}
	return decimal.Zero, false
}
