package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"refgraph/graph"
	"refgraph/storage"
)

// ExportService schreibt Bibliographie-Snapshots einer Entität nach S3.
type ExportService struct {
	Graph        *graph.Graph
	Bibliography *BibliographyService
	Store        *storage.Store
	Logger       *zap.Logger
}

// NewExportService erstellt einen neuen Export-Service.
func NewExportService(g *graph.Graph, biblio *BibliographyService, store *storage.Store, logger *zap.Logger) *ExportService {
	return &ExportService{
		Graph:        g,
		Bibliography: biblio,
		Store:        store,
		Logger:       logger,
	}
}

// snapshot ist das serialisierte Export-Format.
type snapshot struct {
	EntityType  string     `json:"entity_type"`
	EntityID    uint       `json:"entity_id"`
	EntityTitle string     `json:"entity_title"`
	GeneratedAt time.Time  `json:"generated_at"`
	Entries     []BibEntry `json:"entries"`
	BibTeX      string     `json:"bibtex"`
}

// ExportBibliography rendert die Bibliographie der Entität und lädt sie als
// JSON-Snapshot nach S3 hoch. Gibt den S3-Link zurück.
func (e *ExportService) ExportBibliography(ctx context.Context, typeTag string, id uint) (string, error) {
	entity, err := e.Graph.ResolveEndpoint(typeTag, id)
	if err != nil {
		return "", err
	}

	entries, err := e.Bibliography.Entries(typeTag, id)
	if err != nil {
		return "", err
	}

	var bibtex strings.Builder
	for _, entry := range entries {
		if entry.BibTeX != "" {
			bibtex.WriteString(entry.BibTeX)
			bibtex.WriteString("\n")
		}
	}

	snap := snapshot{
		EntityType:  typeTag,
		EntityID:    id,
		EntityTitle: entity.DisplayTitle(),
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
		BibTeX:      bibtex.String(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("bibliographies/%s-%d-%s.json", typeTag, id, snap.GeneratedAt.Format("2006-01-02T15-04-05Z"))
	link, err := e.Store.Upload(ctx, key, data, "application/json")
	if err != nil {
		return "", err
	}

	e.Logger.Info("Bibliographie-Snapshot exportiert",
		zap.String("entity_type", typeTag),
		zap.Uint("entity_id", id),
		zap.Int("entries", len(entries)),
		zap.String("s3_link", link))
	return link, nil
}
