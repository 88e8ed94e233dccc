package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shelfdata/pricescan-cli/internal/market"
	"github.com/shelfdata/pricescan-cli/internal/model"
)

// ReasonNoPrice is the discard reason when no price can be extracted with
// confidence.
const ReasonNoPrice = "Visible consumer price not confidently extractable (discarded)"

const (
	// maxPriceLineLen bounds a line considered "price-widget context" rather
	// than body prose.
	maxPriceLineLen = 120
	// evidenceLen bounds the audit snippet kept on a row.
	evidenceLen = 90
)

// perUnitPattern matches unit-price annotations like "/kg" or "/100 g";
// those lines carry unit prices, not the shelf price.
var perUnitPattern = regexp.MustCompile(`(?i)/\s?(kg|100\s*g|g|l|ml)`)

// Heuristic extracts the shelf price from rendered page text without any
// external dependency. The design assumption: the main price widget renders
// as an isolated, minimal-length line, so among candidate lines the shortest
// one wins.
type Heuristic struct {
	mu       sync.Mutex
	patterns map[string][2]*regexp.Regexp
}

// NewHeuristic creates the heuristic strategy.
func NewHeuristic() *Heuristic {
	return &Heuristic{patterns: make(map[string][2]*regexp.Regexp)}
}

func (h *Heuristic) Name() string { return "heuristic" }

// markerPatterns returns the amount regexps for a currency marker, with the
// marker following ("2,68 €") or preceding ("£2.68") the amount.
func (h *Heuristic) markerPatterns(marker string) [2]*regexp.Regexp {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.patterns[marker]; ok {
		return p
	}
	quoted := regexp.QuoteMeta(marker)
	p := [2]*regexp.Regexp{
		regexp.MustCompile(`(\d{1,3}[.,]\d{2})\s*` + quoted),
		regexp.MustCompile(quoted + `\s*(\d{1,3}[.,]\d{2})`),
	}
	h.patterns[marker] = p
	return p
}

// Extract scans price-widget lines for a marker-adjacent amount.
func (h *Heuristic) Extract(_ context.Context, req Request) Outcome {
	marker := market.Marker(req.Market)
	if marker == "" {
		return Rejected(ReasonNoPrice)
	}
	patterns := h.markerPatterns(marker)

	type candidate struct {
		value float64
		line  string
	}
	var candidates []candidate

	for _, raw := range strings.Split(req.Text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !strings.Contains(line, marker) {
			continue
		}
		if utf8.RuneCountInString(line) > maxPriceLineLen {
			continue
		}
		if perUnitPattern.MatchString(line) {
			continue
		}

		var amount string
		for _, re := range patterns {
			if m := re.FindStringSubmatch(line); m != nil {
				amount = m[1]
				break
			}
		}
		if amount == "" {
			continue
		}

		value, err := strconv.ParseFloat(strings.Replace(amount, ",", ".", 1), 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{value: value, line: line})
	}

	if len(candidates) == 0 {
		return Rejected(ReasonNoPrice)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if utf8.RuneCountInString(c.line) < utf8.RuneCountInString(best.line) {
			best = c
		}
	}

	currency, err := market.Currency(req.Market)
	if err != nil {
		return Rejected(ReasonNoPrice)
	}

	rsv := best.value
	return Outcome{Row: &model.PriceRow{
		Vendor:     req.Vendor,
		Market:     req.Market,
		Currency:   currency,
		RSV:        &rsv,
		VATInfo:    "incl. VAT (rate not stated)",
		Flag:       model.FlagComparable,
		SourceURL:  req.URL,
		Evidence:   truncateRunes(best.line, evidenceLen),
		Comparable: true,
	}}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
