package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

// mockStore implements store.Store in memory with injectable failures.
type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) Prune(_ context.Context, _ time.Duration) (int, error) { return 0, nil }
func (m *mockStore) Migrate(_ context.Context) error                       { return nil }
func (m *mockStore) Close() error                                          { return nil }

func completeResult() *model.Result {
	avg := 2.68
	cur := "EUR"
	return &model.Result{
		EAN:         "4006381333931",
		Market:      "DE",
		Rows:        []model.PriceRow{{Vendor: "Rewe", Currency: "EUR", RSV: &avg, Flag: model.FlagComparable}},
		AverageRSV:  &avg,
		SampleCount: 1,
		Currency:    &cur,
		Discards:    []model.Discard{},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "scrape:v2:DE:4006381333931", Key("DE", "4006381333931"))
}

func TestResultCache_SetThenGet(t *testing.T) {
	st := newMockStore()
	c := New(st)

	c.Set(context.Background(), completeResult())
	got, ok := c.Get(context.Background(), "DE", "4006381333931")

	require.True(t, ok)
	assert.True(t, got.Cached)
	assert.Equal(t, "4006381333931", got.EAN)
	require.NotNil(t, got.AverageRSV)
	assert.Equal(t, 2.68, *got.AverageRSV)
}

func TestResultCache_StoredPayloadNotMarkedCached(t *testing.T) {
	st := newMockStore()
	c := New(st)

	c.Set(context.Background(), completeResult())

	raw := st.data[Key("DE", "4006381333931")]
	require.NotEmpty(t, raw)
	var stored model.Result
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.False(t, stored.Cached)
}

func TestResultCache_Get_Miss(t *testing.T) {
	c := New(newMockStore())

	got, ok := c.Get(context.Background(), "DE", "4006381333931")

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResultCache_Get_StoreFailureIsMiss(t *testing.T) {
	st := newMockStore()
	st.getErr = errors.New("connection refused")
	c := New(st)

	_, ok := c.Get(context.Background(), "DE", "4006381333931")

	assert.False(t, ok)
}

func TestResultCache_Get_CorruptEntryIsMiss(t *testing.T) {
	st := newMockStore()
	st.data[Key("DE", "4006381333931")] = []byte("{not json")
	c := New(st)

	_, ok := c.Get(context.Background(), "DE", "4006381333931")

	assert.False(t, ok)
}

func TestResultCache_Set_WriteFailureIsSilent(t *testing.T) {
	st := newMockStore()
	st.setErr = errors.New("disk full")
	c := New(st)

	c.Set(context.Background(), completeResult())

	assert.Equal(t, 1, st.sets)
}

func TestResultCache_Set_SkipsErrorResults(t *testing.T) {
	st := newMockStore()
	c := New(st)

	c.Set(context.Background(), &model.Result{EAN: "123", Error: "gtin: identifier must be 8, 12, 13 or 14 digits"})

	assert.Zero(t, st.sets)
}

func TestResultCache_Set_SkipsTransientlyDegradedResults(t *testing.T) {
	st := newMockStore()
	c := New(st)
	result := completeResult()
	result.Discards = append(result.Discards, model.Discard{
		URL:       "https://www.rewe.de/p/1",
		Reason:    "Fetch/extract error: timeout",
		Transient: true,
	})

	c.Set(context.Background(), result)

	assert.Zero(t, st.sets)
}

func TestResultCache_Set_SkipsAlreadyCached(t *testing.T) {
	st := newMockStore()
	c := New(st)
	result := completeResult()
	result.Cached = true

	c.Set(context.Background(), result)

	assert.Zero(t, st.sets)
}

func TestResultCache_NilStoreDisablesCaching(t *testing.T) {
	c := New(nil)

	c.Set(context.Background(), completeResult())
	_, ok := c.Get(context.Background(), "DE", "4006381333931")

	assert.False(t, ok)
}

func TestCacheable(t *testing.T) {
	assert.True(t, Cacheable(completeResult()))

	withPermanentDiscard := completeResult()
	withPermanentDiscard.Discards = append(withPermanentDiscard.Discards, model.Discard{
		URL:    "https://www.edeka.de/p/1",
		Reason: "EAN not explicitly verifiable on page/source",
	})
	assert.True(t, Cacheable(withPermanentDiscard))
}
