package datacite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"refgraph/config"
	"refgraph/providers"
	"time"

	"go.uber.org/zap"
)

// Fetcher implementiert das Registry-Interface für die DataCite REST API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher erstellt einen neuen DataCite-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.RegistryTimeoutSeconds) * time.Second},
	}
}

// Name gibt den Namen der Registry zurück.
func (f *Fetcher) Name() string {
	return "datacite"
}

// Lookup holt die Metadaten für eine normalisierte DOI von DataCite.
func (f *Fetcher) Lookup(ctx context.Context, doi string) (*providers.Work, error) {
	log := f.Logger.With(zap.String("doi", doi))

	lookupURL := fmt.Sprintf("%s/dois/%s", f.Config.DataCiteBaseURL, url.PathEscape(doi))
	log.Debug("Rufe DataCite API auf", zap.String("url", lookupURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrRegistry, err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("DataCite-Anfrage fehlgeschlagen", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", providers.ErrRegistry, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", providers.ErrWorkNotFound, doi)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn("DataCite hat nicht-200-Status zurückgegeben", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", providers.ErrRegistry, resp.StatusCode)
	}

	var dr doiResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		log.Warn("Fehler beim Parsen der DataCite-Antwort", zap.Error(err))
		return nil, fmt.Errorf("%w: malformed payload: %v", providers.ErrRegistry, err)
	}

	work := mapAttributesToWork(&dr.Data.Attributes)
	if work.Title == "" {
		return nil, fmt.Errorf("%w: %s has no title", providers.ErrWorkNotFound, doi)
	}

	log.Info("DataCite-Lookup abgeschlossen",
		zap.String("title", work.Title),
		zap.Int("contributors", len(work.Contributors)))
	return work, nil
}
