package crossref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refgraph/config"
	"refgraph/providers"
)

const worksFixture = `{
  "status": "ok",
  "message": {
    "title": ["A Study"],
    "container-title": ["Nature"],
    "volume": "12",
    "issue": "3",
    "page": "45-67",
    "DOI": "10.1234/example",
    "author": [
      {
        "given": "Jane",
        "family": "Doe",
        "ORCID": "https://orcid.org/0000-0002-1825-0097",
        "affiliation": [{"name": "ETH Zurich"}]
      },
      {"given": "John", "family": "Smith"}
    ],
    "published": {"date-parts": [[2020, 3]]}
  }
}`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		CrossrefBaseURL:        server.URL,
		RegistryTimeoutSeconds: 5,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestLookupMapsWork(t *testing.T) {
	var requestedPath string
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(worksFixture))
	})

	work, err := fetcher.Lookup(context.Background(), "10.1234/example")
	require.NoError(t, err)
	assert.Equal(t, "/works/10.1234%2Fexample", requestedPath)

	assert.Equal(t, "A Study", work.Title)
	assert.Equal(t, "Nature", work.ContainerTitle)
	assert.Equal(t, "12", work.Volume)
	assert.Equal(t, "3", work.Issue)
	assert.Equal(t, "45-67", work.Pages)
	assert.Equal(t, []int{2020, 3}, work.DateParts)

	require.Len(t, work.Contributors, 2)
	assert.Equal(t, "Jane", work.Contributors[0].Given)
	assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", work.Contributors[0].ORCID)
	assert.Equal(t, []string{"ETH Zurich"}, work.Contributors[0].Affiliations)
	assert.Empty(t, work.Contributors[1].Affiliations)
}

func TestLookupUsesIssuedDateFallback(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"title": ["X"], "issued": {"date-parts": [[2019]]}}}`))
	})

	work, err := fetcher.Lookup(context.Background(), "10.1234/example")
	require.NoError(t, err)
	assert.Equal(t, []int{2019}, work.DateParts)
}

func TestLookupNotFound(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Resource not found.", http.StatusNotFound)
	})

	_, err := fetcher.Lookup(context.Background(), "10.1234/missing")
	assert.ErrorIs(t, err, providers.ErrWorkNotFound)
}

func TestLookupServerError(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := fetcher.Lookup(context.Background(), "10.1234/example")
	assert.ErrorIs(t, err, providers.ErrRegistry)
}

func TestLookupMalformedPayload(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": `))
	})

	_, err := fetcher.Lookup(context.Background(), "10.1234/example")
	assert.ErrorIs(t, err, providers.ErrRegistry)
}

func TestLookupMissingTitle(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"DOI": "10.1234/example"}}`))
	})

	_, err := fetcher.Lookup(context.Background(), "10.1234/example")
	assert.ErrorIs(t, err, providers.ErrWorkNotFound)
}

func TestLookupSendsMailto(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(worksFixture))
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		CrossrefBaseURL:        server.URL,
		CrossrefMailto:         "ops@example.org",
		RegistryTimeoutSeconds: 5,
	}
	fetcher := NewFetcher(cfg, zap.NewNop())

	_, err := fetcher.Lookup(context.Background(), "10.1234/example")
	require.NoError(t, err)
	assert.Equal(t, "mailto=ops%40example.org", query)
}
