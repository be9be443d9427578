package crossref

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

// Fetcher implementiert das Registry-Interface für die Crossref REST API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher erstellt einen neuen Crossref-Fetcher mit begrenztem Timeout.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.RegistryTimeoutSeconds) * time.Second},
	}
}

// Name gibt den Namen der Registry zurück.
func (f *Fetcher) Name() string {
	return "crossref"
}

// Lookup holt die Metadaten für eine normalisierte DOI von Crossref.
func (f *Fetcher) Lookup(ctx context.Context, doi string) (*providers.Work, error) {
	log := f.Logger.With(zap.String("doi", doi))

	lookupURL := fmt.Sprintf("%s/works/%s", f.Config.CrossrefBaseURL, url.PathEscape(doi))
	if f.Config.CrossrefMailto != "" {
		// Polite-Pool: Crossref priorisiert Requests mit mailto-Parameter.
		lookupURL += "?mailto=" + url.QueryEscape(f.Config.CrossrefMailto)
	}
	log.Debug("Rufe Crossref API auf", zap.String("url", lookupURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrRegistry, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("Crossref-Anfrage fehlgeschlagen", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", providers.ErrRegistry, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", providers.ErrWorkNotFound, doi)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn("Crossref hat nicht-200-Status zurückgegeben", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", providers.ErrRegistry, resp.StatusCode)
	}

	var wr worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		log.Warn("Fehler beim Parsen der Crossref-Antwort", zap.Error(err))
		return nil, fmt.Errorf("%w: malformed payload: %v", providers.ErrRegistry, err)
	}

	work := mapMessageToWork(&wr.Message)
	if work.Title == "" {
		// Antwort ohne Titel wird wie eine unbekannte DOI behandelt.
		return nil, fmt.Errorf("%w: %s has no title", providers.ErrWorkNotFound, doi)
	}

	log.Info("Crossref-Lookup abgeschlossen",
		zap.String("title", work.Title),
		zap.Int("contributors", len(work.Contributors)))
	return work, nil
}
