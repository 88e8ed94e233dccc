package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/pricescan-cli/internal/cache"
	"github.com/shelfdata/pricescan-cli/internal/config"
	"github.com/shelfdata/pricescan-cli/internal/extract"
	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/internal/pipeline"
)

type emptySerp struct{}

func (emptySerp) Discover(_ context.Context, _, _ string, _ []string, _ int) ([]string, error) {
	return nil, nil
}

type noFetcher struct{}

func (noFetcher) Name() string           { return "none" }
func (noFetcher) Supports(_ string) bool { return true }
func (noFetcher) Fetch(_ context.Context, _ string) (*model.FetchedPage, error) {
	panic("no fetch expected without discovered urls")
}

func testHandler() http.HandlerFunc {
	cfg := &config.Config{
		Extract: config.ExtractConfig{Strategy: "heuristic", MaxRowsPerEAN: 6, MaxURLsPerEAN: 15},
		Batch:   config.BatchConfig{MaxConcurrentEANs: 2},
	}
	p := pipeline.New(cfg, emptySerp{}, noFetcher{}, extract.NewHeuristic(), nil, cache.New(nil))
	return scrapeHandler(p)
}

func postScrape(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testHandler()(rec, req)
	return rec
}

func TestScrapeHandler_InvalidBody(t *testing.T) {
	rec := postScrape(t, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScrapeHandler_MissingMarket(t *testing.T) {
	rec := postScrape(t, `{"eans":["4006381333931"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "market is required")
}

func TestScrapeHandler_BatchSizeViolations(t *testing.T) {
	rec := postScrape(t, `{"market":"DE","eans":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	eans := make([]string, pipeline.MaxBatchSize+1)
	for i := range eans {
		eans[i] = "4006381333931"
	}
	raw, err := json.Marshal(model.BatchRequest{Market: "DE", EANs: eans})
	require.NoError(t, err)
	rec = postScrape(t, string(raw))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScrapeHandler_OneResultPerIdentifierInOrder(t *testing.T) {
	rec := postScrape(t, `{"market":"DE","eans":["123","4006381333931"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "DE", resp.Market)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "123", resp.Results[0].EAN)
	assert.NotEmpty(t, resp.Results[0].Error)
	assert.Equal(t, "4006381333931", resp.Results[1].EAN)
	assert.Empty(t, resp.Results[1].Error)
	assert.NotNil(t, resp.Results[1].Rows)
	assert.NotNil(t, resp.Results[1].Discards)
}

func TestScrapeHandler_UnsupportedMarketPerIdentifier(t *testing.T) {
	rec := postScrape(t, `{"market":"XX","eans":["4006381333931"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Error, "unsupported market")
}
