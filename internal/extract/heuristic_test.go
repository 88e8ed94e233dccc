package extract

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

func heuristicRequest(market, text string) Request {
	return Request{
		Market: market,
		EAN:    "4006381333931",
		Vendor: "Kaufland",
		URL:    "https://www.kaufland.de/product/123",
		Text:   text,
	}
}

func TestHeuristic_Extract_MarkerAfterAmount(t *testing.T) {
	h := NewHeuristic()
	text := "Stabilo Boss Textmarker gelb\n2,68 €\nIn den Warenkorb"

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	require.NotNil(t, outcome.Row)
	require.NotNil(t, outcome.Row.RSV)
	assert.Equal(t, 2.68, *outcome.Row.RSV)
	assert.Equal(t, "EUR", outcome.Row.Currency)
	assert.Equal(t, model.FlagComparable, outcome.Row.Flag)
	assert.True(t, outcome.Row.Comparable)
	assert.Equal(t, "incl. VAT (rate not stated)", outcome.Row.VATInfo)
	assert.Equal(t, "2,68 €", outcome.Row.Evidence)
	assert.Equal(t, "Kaufland", outcome.Row.Vendor)
	assert.Equal(t, "https://www.kaufland.de/product/123", outcome.Row.SourceURL)
}

func TestHeuristic_Extract_MarkerBeforeAmount(t *testing.T) {
	h := NewHeuristic()
	text := "Highlighter yellow\n£2.50\nAdd to basket"

	outcome := h.Extract(context.Background(), heuristicRequest("UK", text))

	require.NotNil(t, outcome.Row)
	require.NotNil(t, outcome.Row.RSV)
	assert.Equal(t, 2.50, *outcome.Row.RSV)
	assert.Equal(t, "GBP", outcome.Row.Currency)
}

func TestHeuristic_Extract_ShortestLineWins(t *testing.T) {
	h := NewHeuristic()
	text := strings.Join([]string{
		"Kunden kauften auch das Premiumset für nur 19,99 € im Angebot",
		"2,68 €",
		"Versand ab 4,95 € pro Bestellung frei Haus",
	}, "\n")

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	require.NotNil(t, outcome.Row)
	require.NotNil(t, outcome.Row.RSV)
	assert.Equal(t, 2.68, *outcome.Row.RSV)
}

func TestHeuristic_Extract_RejectsPerUnitLines(t *testing.T) {
	h := NewHeuristic()
	text := "Grundpreis 26,80 € /kg"

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	assert.Nil(t, outcome.Row)
	assert.Equal(t, ReasonNoPrice, outcome.Reason)
	assert.False(t, outcome.Transient)
}

func TestHeuristic_Extract_RejectsPer100gLines(t *testing.T) {
	h := NewHeuristic()
	text := "1,49 € /100 g"

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	assert.Nil(t, outcome.Row)
}

func TestHeuristic_Extract_RejectsLongLines(t *testing.T) {
	h := NewHeuristic()
	long := strings.Repeat("Lorem ipsum dolor ", 10) + "2,68 €"
	require.Greater(t, utf8.RuneCountInString(long), 120)

	outcome := h.Extract(context.Background(), heuristicRequest("DE", long))

	assert.Nil(t, outcome.Row)
	assert.Equal(t, ReasonNoPrice, outcome.Reason)
}

func TestHeuristic_Extract_NoMarkerNoPrice(t *testing.T) {
	h := NewHeuristic()
	text := "Produktbeschreibung\nTechnische Daten\nBewertungen"

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	assert.Nil(t, outcome.Row)
	assert.Equal(t, ReasonNoPrice, outcome.Reason)
}

func TestHeuristic_Extract_AmountWithoutDecimalsIgnored(t *testing.T) {
	h := NewHeuristic()
	text := "Gutschein über 5 €"

	outcome := h.Extract(context.Background(), heuristicRequest("DE", text))

	assert.Nil(t, outcome.Row)
}

func TestHeuristic_Extract_UnsupportedMarket(t *testing.T) {
	h := NewHeuristic()

	outcome := h.Extract(context.Background(), heuristicRequest("US", "2.68 $"))

	assert.Nil(t, outcome.Row)
	assert.Equal(t, ReasonNoPrice, outcome.Reason)
}

func TestHeuristic_Extract_EvidenceTruncated(t *testing.T) {
	h := NewHeuristic()
	line := "2,68 € " + strings.Repeat("x", 110)
	require.LessOrEqual(t, utf8.RuneCountInString(line), 120)

	outcome := h.Extract(context.Background(), heuristicRequest("DE", line))

	require.NotNil(t, outcome.Row)
	assert.Equal(t, 90, utf8.RuneCountInString(outcome.Row.Evidence))
}

func TestHeuristic_Name(t *testing.T) {
	assert.Equal(t, "heuristic", NewHeuristic().Name())
}
