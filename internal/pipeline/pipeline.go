// Package pipeline orchestrates the per-identifier price scan: cache read,
// discovery, fetch, identity gate, extraction, classification, aggregation
// and the best-effort cache write. Every candidate URL is accounted for as
// exactly one row or one discard.
package pipeline

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shelfdata/pricescan-cli/internal/aggregate"
	"github.com/shelfdata/pricescan-cli/internal/cache"
	"github.com/shelfdata/pricescan-cli/internal/config"
	"github.com/shelfdata/pricescan-cli/internal/extract"
	"github.com/shelfdata/pricescan-cli/internal/fetch"
	"github.com/shelfdata/pricescan-cli/internal/gtin"
	"github.com/shelfdata/pricescan-cli/internal/market"
	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/internal/page"
	"github.com/shelfdata/pricescan-cli/pkg/eansearch"
	"github.com/shelfdata/pricescan-cli/pkg/serp"
)

// Discard reasons shared with tests. Extraction and classification reasons
// live next to their strategies in the extract package.
const (
	ReasonEANNotVerifiable = "EAN not explicitly verifiable on page/source"
	ReasonRowCapReached    = "Result cap reached (not fetched)"
)

// MaxBatchSize bounds one scrape request.
const MaxBatchSize = 10

// goldenMinHits is the DE widening threshold: fewer golden-list hits than
// this triggers the extended-domain search.
const goldenMinHits = 5

// Pipeline composes the collaborators of one price scan.
type Pipeline struct {
	cfg       *config.Config
	serp      serp.Client
	fetcher   fetch.Fetcher
	extractor extract.Extractor
	enrich    eansearch.Client // optional, may be nil
	results   *cache.ResultCache
}

// New creates a Pipeline. enrich may be nil; results may wrap a nil store.
func New(cfg *config.Config, serpClient serp.Client, fetcher fetch.Fetcher, extractor extract.Extractor, enrich eansearch.Client, results *cache.ResultCache) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		serp:      serpClient,
		fetcher:   fetcher,
		extractor: extractor,
		enrich:    enrich,
		results:   results,
	}
}

// RunBatch resolves 1-10 identifiers for one market. Each identifier
// resolves independently; the response always carries exactly one result
// per requested identifier, in input order.
func (p *Pipeline) RunBatch(ctx context.Context, marketCode string, eans []string) ([]model.Result, error) {
	if len(eans) == 0 || len(eans) > MaxBatchSize {
		return nil, eris.Errorf("pipeline: provide 1-%d EANs", MaxBatchSize)
	}

	if !market.Supported(marketCode) {
		// Market problems are input errors: reported per identifier, the
		// batch itself still resolves.
		results := make([]model.Result, len(eans))
		for i, ean := range eans {
			results[i] = errorResult(ean, eris.Errorf("unsupported market %q", marketCode))
		}
		return results, nil
	}

	results := make([]model.Result, len(eans))
	g, gCtx := errgroup.WithContext(ctx)
	limit := p.cfg.Batch.MaxConcurrentEANs
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, ean := range eans {
		g.Go(func() error {
			results[i] = p.Run(gCtx, marketCode, ean)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// Run resolves one identifier in one market.
func (p *Pipeline) Run(ctx context.Context, marketCode, ean string) model.Result {
	logger := zap.L().With(
		zap.String("run_id", uuid.New().String()),
		zap.String("market", marketCode),
		zap.String("ean", ean),
	)

	if err := gtin.Validate(ean); err != nil {
		logger.Debug("pipeline: identifier rejected", zap.Error(err))
		return errorResult(ean, err)
	}

	if cached, ok := p.results.Get(ctx, marketCode, ean); ok {
		logger.Debug("pipeline: cache hit")
		return *cached
	}

	master := p.masterData(ctx, ean)
	urls := p.discover(ctx, marketCode, ean)
	rows, discards := p.scrapeURLs(ctx, marketCode, ean, urls, &master)

	summary, err := aggregate.Aggregate(rows)
	if err != nil {
		// Mixed currencies: rows are still reported, the average is not.
		logger.Warn("pipeline: aggregation rejected", zap.Error(err))
		summary = aggregate.Summary{}
	}

	result := model.Result{
		EAN:         ean,
		Market:      marketCode,
		Master:      master,
		Rows:        rows,
		AverageRSV:  summary.AverageRSV,
		SampleCount: summary.SampleCount,
		Currency:    summary.Currency,
		Discards:    discards,
	}

	p.results.Set(ctx, &result)

	logger.Info("pipeline: run complete",
		zap.Int("candidates", len(urls)),
		zap.Int("rows", len(rows)),
		zap.Int("discards", len(discards)),
		zap.Int("sample_count", summary.SampleCount),
	)
	return result
}

// discover collects candidate URLs from the golden domain list, widening
// within the same market where configured. Failures degrade to an empty
// candidate list, never an error.
func (p *Pipeline) discover(ctx context.Context, marketCode, ean string) []string {
	urls, err := p.serp.Discover(ctx, marketCode, ean, market.GoldenDomains(marketCode), 8)
	if err != nil {
		zap.L().Warn("pipeline: golden discovery failed",
			zap.String("ean", ean),
			zap.Error(err),
		)
	}

	if extended := market.ExtendedDomains(marketCode); len(extended) > 0 && len(urls) < goldenMinHits {
		more, err := p.serp.Discover(ctx, marketCode, ean, extended, 8)
		if err != nil {
			zap.L().Warn("pipeline: extended discovery failed",
				zap.String("ean", ean),
				zap.Error(err),
			)
		}
		urls = append(urls, more...)
	}

	seen := make(map[string]bool, len(urls))
	deduped := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		deduped = append(deduped, u)
	}

	maxURLs := p.cfg.Extract.MaxURLsPerEAN
	if maxURLs > 0 && len(deduped) > maxURLs {
		deduped = deduped[:maxURLs]
	}
	return deduped
}

// scrapeURLs processes candidates in discovery order. Every candidate
// yields exactly one row or one discard; past the row cap the remaining
// candidates are recorded as cap discards instead of being fetched.
func (p *Pipeline) scrapeURLs(ctx context.Context, marketCode, ean string, urls []string, master *model.MasterRecord) ([]model.PriceRow, []model.Discard) {
	rows := []model.PriceRow{}
	discards := []model.Discard{}

	maxRows := p.cfg.Extract.MaxRowsPerEAN
	if maxRows <= 0 {
		maxRows = 6
	}

	for _, candidate := range urls {
		if len(rows) >= maxRows {
			discards = append(discards, model.Discard{URL: candidate, Reason: ReasonRowCapReached})
			continue
		}

		pg, err := p.fetcher.Fetch(ctx, candidate)
		if err != nil {
			discards = append(discards, model.Discard{
				URL:       candidate,
				Reason:    "Fetch/extract error: " + err.Error(),
				Transient: true,
			})
			continue
		}

		finalURL := pg.FinalURL
		if finalURL == "" {
			finalURL = candidate
		}

		if !page.Present(ean, pg.HTML, pg.VisibleText) {
			discards = append(discards, model.Discard{URL: finalURL, Reason: ReasonEANNotVerifiable})
			continue
		}

		outcome := p.extractor.Extract(ctx, extract.Request{
			Market: marketCode,
			EAN:    ean,
			Vendor: vendorFromURL(finalURL),
			URL:    finalURL,
			Text:   pg.VisibleText,
		})
		if outcome.Row == nil {
			discards = append(discards, model.Discard{
				URL:       finalURL,
				Reason:    outcome.Reason,
				Transient: outcome.Transient,
			})
			continue
		}

		if extract.ForbiddenContext(outcome.Row.Evidence) {
			discards = append(discards, model.Discard{URL: finalURL, Reason: extract.ReasonPromoContext})
			continue
		}

		if master.ProductName == nil {
			if name := guessProductName(pg.VisibleText); name != "" {
				master.ProductName = &name
			}
		}
		row := *outcome.Row
		if row.PackFormat == nil {
			row.PackFormat = master.Grammage
		}
		rows = append(rows, row)
	}

	return rows, discards
}

// masterData builds the best-effort master record, optionally enriched via
// the identifier-lookup collaborator. Enrichment failures are never errors.
func (p *Pipeline) masterData(ctx context.Context, ean string) model.MasterRecord {
	master := model.MasterRecord{UnitType: "Single Unit"}

	if p.enrich == nil {
		return master
	}
	product, err := p.enrich.Lookup(ctx, ean)
	if err != nil {
		zap.L().Warn("pipeline: enrichment lookup failed",
			zap.String("ean", ean),
			zap.Error(err),
		)
		return master
	}
	if product != nil && product.Name != "" {
		name := product.Name
		master.ProductName = &name
	}
	return master
}

func errorResult(ean string, err error) model.Result {
	return model.Result{
		EAN:      ean,
		Error:    err.Error(),
		Rows:     []model.PriceRow{},
		Discards: []model.Discard{},
	}
}

// vendorFromURL derives a readable vendor name from the final URL host:
// "www.kaufland.de" becomes "Kaufland".
func vendorFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	base, _, _ := strings.Cut(host, ".")
	if base == "" {
		return "Unknown"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// guessProductName conservatively picks a title-ish line near the top of
// the page text: the first line of 10 to 80 characters.
func guessProductName(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		n := utf8.RuneCountInString(line)
		if n >= 10 && n <= 80 {
			return line
		}
	}
	return ""
}
