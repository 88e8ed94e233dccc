package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shelfdata/pricescan-cli/internal/cache"
	"github.com/shelfdata/pricescan-cli/internal/extract"
	"github.com/shelfdata/pricescan-cli/internal/fetch"
	"github.com/shelfdata/pricescan-cli/internal/pipeline"
	"github.com/shelfdata/pricescan-cli/internal/store"
	anthropicpkg "github.com/shelfdata/pricescan-cli/pkg/anthropic"
	"github.com/shelfdata/pricescan-cli/pkg/eansearch"
	"github.com/shelfdata/pricescan-cli/pkg/render"
	"github.com/shelfdata/pricescan-cli/pkg/serp"
)

// pipelineEnv holds the initialized store, clients, and the pipeline needed
// by the scan/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured cache backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, all API clients, and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	serpClient := serp.NewClient(cfg.Serp.Key, serp.WithBaseURL(cfg.Serp.BaseURL))

	// Fetch chain: rendered pages primary, plain HTTP fallback.
	renderClient := render.NewClient(cfg.Render.BaseURL,
		render.WithLocale(cfg.Render.Locale),
		render.WithWaitMillis(cfg.Render.WaitMillis),
	)
	fetcher := fetch.NewChain(
		fetch.NewRenderAdapter(renderClient),
		fetch.NewPlainFetcher(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second),
	)

	var extractor extract.Extractor
	switch cfg.Extract.Strategy {
	case "assisted":
		anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
		extractor = extract.NewAssisted(anthropicClient, cfg.Anthropic.Model)
		zap.L().Info("assisted extraction enabled", zap.String("model", cfg.Anthropic.Model))
	default:
		extractor = extract.NewHeuristic()
	}

	// Barcode lookup enrichment (optional).
	var enrich eansearch.Client
	if cfg.EANSearch.Key != "" {
		enrich = eansearch.NewClient(cfg.EANSearch.Key, eansearch.WithBaseURL(cfg.EANSearch.BaseURL))
		zap.L().Info("barcode lookup enrichment enabled")
	} else {
		zap.L().Debug("PRICESCAN_EANSEARCH_KEY not set, enrichment disabled")
	}

	p := pipeline.New(cfg, serpClient, fetcher, extractor, enrich, cache.New(st))

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
	}, nil
}
