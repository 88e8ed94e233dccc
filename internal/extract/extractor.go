// Package extract turns verified page text into price rows. Two strategies
// implement the same contract: a pure line-heuristic extractor and an
// LLM-assisted extractor. Both obey the "never guess" invariant: an
// ambiguous price is a rejection, not a fabricated value.
package extract

import (
	"context"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

// Request carries everything an extractor needs for one page.
type Request struct {
	Market string
	EAN    string
	Vendor string
	URL    string
	Text   string // visible page text, line-structured
}

// Outcome is either an extracted row (Row != nil) or a rejection with a
// human-readable reason. Transient marks infrastructure failures whose
// results must not be cached.
type Outcome struct {
	Row       *model.PriceRow
	Reason    string
	Transient bool
}

// Rejected builds a rejection outcome.
func Rejected(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Extractor is the pluggable price-extraction strategy. The orchestrator is
// written against this interface only.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, req Request) Outcome
}
