package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"refgraph/config"
	"refgraph/models"
	"refgraph/providers"
)

// RefreshService füllt nachträglich Metadaten-Lücken importierter Artikel.
// Registries liefern nicht selten Teil-Daten; ein späterer Lookup derselben
// DOI ist oft vollständiger.
type RefreshService struct {
	Config   *config.Config
	DB       *gorm.DB
	Registry providers.Registry
	Logger   *zap.Logger
}

// NewRefreshService erstellt eine neue Instanz des RefreshService.
func NewRefreshService(cfg *config.Config, db *gorm.DB, registry providers.Registry, logger *zap.Logger) *RefreshService {
	return &RefreshService{Config: cfg, DB: db, Registry: registry, Logger: logger}
}

// RunOnce verarbeitet einen Batch unvollständiger Artikel und gibt die Anzahl
// der aktualisierten Zeilen zurück. Nur leere Felder werden gefüllt, manuelle
// Korrekturen bleiben unangetastet.
func (r *RefreshService) RunOnce(ctx context.Context) (int, error) {
	var articles []models.Article
	err := r.DB.
		Where("source = ?", r.Registry.Name()).
		Where("doi IS NOT NULL").
		Where("journal = '' OR publish_date IS NULL").
		Limit(r.Config.RefreshBatchSize).
		Find(&articles).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range articles {
		article := &articles[i]
		log := r.Logger.With(zap.Uint("article_id", article.ID), zap.String("doi", *article.DOI))

		work, err := r.Registry.Lookup(ctx, *article.DOI)
		if err != nil {
			if errors.Is(err, providers.ErrRegistry) {
				// Registry gerade nicht erreichbar; Rest des Batches abbrechen.
				log.Warn("Registry nicht erreichbar, Refresh-Lauf wird beendet", zap.Error(err))
				return updated, err
			}
			log.Warn("Refresh-Lookup fehlgeschlagen, Artikel wird übersprungen", zap.Error(err))
			continue
		}

		changes := map[string]interface{}{}
		if article.Journal == "" && work.ContainerTitle != "" {
			changes["journal"] = TruncateField(work.ContainerTitle, 200)
		}
		if article.Volume == "" && work.Volume != "" {
			changes["volume"] = TruncateField(work.Volume, 50)
		}
		if article.Issue == "" && work.Issue != "" {
			changes["issue"] = TruncateField(work.Issue, 50)
		}
		if article.Pages == "" && work.Pages != "" {
			changes["pages"] = TruncateField(work.Pages, 50)
		}
		if article.PublishDate == nil {
			if d := DateFromParts(work.DateParts); d != nil {
				changes["publish_date"] = d
			}
		}
		if len(changes) == 0 {
			continue
		}

		if err := r.DB.Model(article).Updates(changes).Error; err != nil {
			log.Error("Refresh-Update fehlgeschlagen", zap.Error(err))
			continue
		}
		log.Info("Artikel-Metadaten nachgefüllt", zap.Int("fields", len(changes)))
		updated++
	}

	return updated, nil
}
