// Package aggregate folds comparable price rows into one averaged answer.
package aggregate

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

// ErrMixedCurrency is returned when comparable rows disagree on currency.
// Cross-currency averaging is rejected outright rather than silently
// averaging incompatible units.
var ErrMixedCurrency = eris.New("aggregate: comparable rows carry mixed currencies")

// Summary is the aggregation result. AverageRSV is present iff
// SampleCount > 0.
type Summary struct {
	AverageRSV  *float64
	SampleCount int
	Currency    *string
}

// Aggregate filters rows to comparable ones and computes the arithmetic
// mean of their RSV values, rounded half-up to two decimal places. Rounding
// happens here and nowhere else.
func Aggregate(rows []model.PriceRow) (Summary, error) {
	var (
		sum      decimal.Decimal
		count    int
		currency string
	)

	for _, row := range rows {
		if row.Flag != model.FlagComparable || row.RSV == nil {
			continue
		}
		if row.Currency != "" {
			if currency == "" {
				currency = row.Currency
			} else if row.Currency != currency {
				return Summary{}, ErrMixedCurrency
			}
		}
		sum = sum.Add(decimal.NewFromFloat(*row.RSV))
		count++
	}

	if count == 0 {
		return Summary{}, nil
	}

	avg, _ := sum.Div(decimal.NewFromInt(int64(count))).Round(2).Float64()
	out := Summary{AverageRSV: &avg, SampleCount: count}
	if currency != "" {
		out.Currency = &currency
	}
	return out, nil
}
