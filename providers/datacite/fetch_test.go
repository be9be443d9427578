package datacite

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

const doiFixture = `{
  "data": {
    "attributes": {
      "doi": "10.5061/dryad.example",
      "titles": [{"title": "A Dataset"}],
      "creators": [
        {
          "givenName": "Jane",
          "familyName": "Doe",
          "nameIdentifiers": [
            {"nameIdentifier": "https://orcid.org/0000-0002-1825-0097", "nameIdentifierScheme": "ORCID"}
          ],
          "affiliation": ["ETH Zurich"]
        },
        {
          "givenName": "John",
          "familyName": "Smith",
          "nameIdentifiers": [
            {"nameIdentifier": "grid.5801.c", "nameIdentifierScheme": "GRID"}
          ]
        }
      ],
      "publicationYear": 2020,
      "container": {
        "title": "Scientific Data",
        "volume": "7",
        "issue": "1",
        "firstPage": "100",
        "lastPage": "110"
      }
    }
  }
}`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		DataCiteBaseURL:        server.URL,
		RegistryTimeoutSeconds: 5,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestLookupMapsWork(t *testing.T) {
	var requestedPath, acceptHeader string
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.EscapedPath()
		acceptHeader = r.Header.Get("Accept")
		w.Write([]byte(doiFixture))
	})

	work, err := fetcher.Lookup(context.Background(), "10.5061/dryad.example")
	require.NoError(t, err)
	assert.Equal(t, "/dois/10.5061%2Fdryad.example", requestedPath)
	assert.Equal(t, "application/vnd.api+json", acceptHeader)

	assert.Equal(t, "A Dataset", work.Title)
	assert.Equal(t, "10.5061/dryad.example", work.DOI)
	assert.Equal(t, "Scientific Data", work.ContainerTitle)
	assert.Equal(t, "7", work.Volume)
	assert.Equal(t, "1", work.Issue)
	assert.Equal(t, "100-110", work.Pages)
	assert.Equal(t, []int{2020}, work.DateParts)

	require.Len(t, work.Contributors, 2)
	assert.Equal(t, "Jane", work.Contributors[0].Given)
	assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", work.Contributors[0].ORCID)
	assert.Equal(t, []string{"ETH Zurich"}, work.Contributors[0].Affiliations)
	// GRID ist keine ORCID: der Identifier darf nicht übernommen werden.
	assert.Empty(t, work.Contributors[1].ORCID)
}

func TestLookupFirstPageOnly(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"attributes": {"titles": [{"title": "X"}], "container": {"firstPage": "42"}}}}`))
	})

	work, err := fetcher.Lookup(context.Background(), "10.5061/x")
	require.NoError(t, err)
	assert.Equal(t, "42", work.Pages)
}

func TestLookupMissingYear(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"attributes": {"titles": [{"title": "X"}]}}}`))
	})

	work, err := fetcher.Lookup(context.Background(), "10.5061/x")
	require.NoError(t, err)
	assert.Nil(t, work.DateParts)
}

func TestLookupNotFound(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"status":"404"}]}`, http.StatusNotFound)
	})

	_, err := fetcher.Lookup(context.Background(), "10.5061/missing")
	assert.ErrorIs(t, err, providers.ErrWorkNotFound)
}

func TestLookupServerError(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := fetcher.Lookup(context.Background(), "10.5061/x")
	assert.ErrorIs(t, err, providers.ErrRegistry)
}

func TestLookupMalformedPayload(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": `))
	})

	_, err := fetcher.Lookup(context.Background(), "10.5061/x")
	assert.ErrorIs(t, err, providers.ErrRegistry)
}

func TestLookupMissingTitle(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"attributes": {"doi": "10.5061/x"}}}`))
	})

	_, err := fetcher.Lookup(context.Background(), "10.5061/x")
	assert.ErrorIs(t, err, providers.ErrWorkNotFound)
}
