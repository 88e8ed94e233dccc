package eansearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ParsesProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "barcode-lookup", q.Get("op"))
		assert.Equal(t, "4006381333931", q.Get("barcode"))
		assert.Equal(t, "test-token", q.Get("token"))
		w.Write([]byte(`[{"name":"Stabilo Boss Original gelb","categoryName":"Office","issuingCountry":"DE"}]`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-token", WithBaseURL(srv.URL))
	product, err := c.Lookup(context.Background(), "4006381333931")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Stabilo Boss Original gelb", product.Name)
	assert.Equal(t, "DE", product.IssuingCountry)
}

func TestLookup_UnknownIdentifierReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-token", WithBaseURL(srv.URL))
	product, err := c.Lookup(context.Background(), "0000000000000")

	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestLookup_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("bad-token", WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "4006381333931")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
