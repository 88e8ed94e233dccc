package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

func comparableRow(currency string, rsv float64) model.PriceRow {
	return model.PriceRow{
		Currency:   currency,
		RSV:        &rsv,
		Flag:       model.FlagComparable,
		Comparable: true,
	}
}

func TestAggregate_SingleRow(t *testing.T) {
	summary, err := Aggregate([]model.PriceRow{comparableRow("EUR", 2.68)})

	require.NoError(t, err)
	require.NotNil(t, summary.AverageRSV)
	assert.Equal(t, 2.68, *summary.AverageRSV)
	assert.Equal(t, 1, summary.SampleCount)
	require.NotNil(t, summary.Currency)
	assert.Equal(t, "EUR", *summary.Currency)
}

func TestAggregate_MeanRoundedHalfUp(t *testing.T) {
	summary, err := Aggregate([]model.PriceRow{
		comparableRow("EUR", 2.00),
		comparableRow("EUR", 2.01),
	})

	require.NoError(t, err)
	require.NotNil(t, summary.AverageRSV)
	// 4.01 / 2 = 2.005, half-up to 2.01.
	assert.Equal(t, 2.01, *summary.AverageRSV)
	assert.Equal(t, 2, summary.SampleCount)
}

func TestAggregate_SkipsNonComparableRows(t *testing.T) {
	promo := 1.99
	summary, err := Aggregate([]model.PriceRow{
		comparableRow("EUR", 3.00),
		{Currency: "EUR", PromoPrice: &promo, Flag: model.FlagPromoOnly},
		{Currency: "EUR", Flag: model.FlagNoData},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SampleCount)
	require.NotNil(t, summary.AverageRSV)
	assert.Equal(t, 3.00, *summary.AverageRSV)
}

func TestAggregate_SkipsComparableWithoutRSV(t *testing.T) {
	summary, err := Aggregate([]model.PriceRow{
		{Currency: "EUR", Flag: model.FlagComparable},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.SampleCount)
	assert.Nil(t, summary.AverageRSV)
}

func TestAggregate_EmptyInput(t *testing.T) {
	summary, err := Aggregate(nil)

	require.NoError(t, err)
	assert.Nil(t, summary.AverageRSV)
	assert.Equal(t, 0, summary.SampleCount)
	assert.Nil(t, summary.Currency)
}

func TestAggregate_MixedCurrencies(t *testing.T) {
	_, err := Aggregate([]model.PriceRow{
		comparableRow("EUR", 2.00),
		comparableRow("GBP", 2.00),
	})

	assert.ErrorIs(t, err, ErrMixedCurrency)
}

func TestAggregate_AveragePresentIffSamples(t *testing.T) {
	withRows, err := Aggregate([]model.PriceRow{comparableRow("EUR", 1.11), comparableRow("EUR", 2.22)})
	require.NoError(t, err)
	assert.NotNil(t, withRows.AverageRSV)
	assert.Positive(t, withRows.SampleCount)

	empty, err := Aggregate([]model.PriceRow{})
	require.NoError(t, err)
	assert.Nil(t, empty.AverageRSV)
	assert.Zero(t, empty.SampleCount)
}
