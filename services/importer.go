package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"refgraph/config"
	"refgraph/graph"
	"refgraph/models"
	"refgraph/providers"
)

// Fehlercodes im strukturierten Import-Ergebnis.
const (
	CodeInvalidDOI    = "invalid_doi"
	CodeUnknownType   = "unknown_type"
	CodeNotFound      = "not_found"
	CodeRegistryError = "registry_error"
	CodeInternal      = "internal"
)

// ImportService wandelt externe DOIs in lokale Entitäten um und verknüpft sie
// über den Referenz-Graphen mit der zitierenden Entität.
type ImportService struct {
	Config   *config.Config
	DB       *gorm.DB
	Graph    *graph.Graph
	Registry providers.Registry
	Logger   *zap.Logger
}

// NewImportService erstellt eine neue Instanz des ImportService.
func NewImportService(cfg *config.Config, db *gorm.DB, g *graph.Graph, registry providers.Registry, logger *zap.Logger) *ImportService {
	return &ImportService{
		Config:   cfg,
		DB:       db,
		Graph:    g,
		Registry: registry,
		Logger:   logger,
	}
}

// EntityInfo sind die öffentlichen Felder der aufgelösten bzw. erzeugten Entität.
type EntityInfo struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Authors     string `json:"authors,omitempty"`
	DOI         string `json:"doi,omitempty"`
	CitationKey string `json:"citation_key,omitempty"`
}

// ImportResult ist das strukturierte Ergebnis eines Import-Aufrufs.
// Fehler verlassen den Importer nie als Exception, sondern immer als Result.
type ImportResult struct {
	Success       bool        `json:"success"`
	Duplicate     bool        `json:"duplicate"`
	CreatedEntity bool        `json:"created_new_entity"`
	Entity        *EntityInfo `json:"entity,omitempty"`
	ReferenceID   uint        `json:"reference_id,omitempty"`
	ErrorCode     string      `json:"error_code,omitempty"`
	Error         string      `json:"error,omitempty"`
}

func failure(code, msg string) *ImportResult {
	return &ImportResult{Success: false, ErrorCode: code, Error: msg}
}

// ImportAndLink ist der Einstiegspunkt des Importers: DOI normalisieren, lokal
// nachschlagen, bei Bedarf aus der Registry holen und persistieren, dann die
// Referenzkante von der zitierenden Entität anlegen.
//
// PERSIST_ENTITY bis EDGE_CREATE laufen in einer Transaktion; schlägt die
// Kante fehl, werden Entität und Autoren gemeinsam zurückgerollt.
func (s *ImportService) ImportAndLink(ctx context.Context, citingType string, citingID uint, doi, status string) *ImportResult {
	log := s.Logger.With(
		zap.String("citing_type", citingType),
		zap.Uint("citing_id", citingID),
		zap.String("doi", doi))

	// Die zitierende Seite muss existieren, bevor irgendetwas passiert.
	if _, err := s.Graph.ResolveEndpoint(citingType, citingID); err != nil {
		switch {
		case errors.Is(err, graph.ErrUnknownType):
			return failure(CodeUnknownType, err.Error())
		case errors.Is(err, graph.ErrNotFound):
			return failure(CodeNotFound, err.Error())
		default:
			log.Error("Auflösung der zitierenden Entität fehlgeschlagen", zap.Error(err))
			return failure(CodeInternal, "failed to resolve citing entity")
		}
	}

	norm, err := NormalizeDOI(doi)
	if err != nil {
		return failure(CodeInvalidDOI, err.Error())
	}
	log = log.With(zap.String("doi_normalized", norm))

	// LOOKUP: existiert bereits ein Artikel mit dieser DOI?
	var article models.Article
	err = s.DB.Where("doi = ?", norm).First(&article).Error
	switch {
	case err == nil:
		log.Info("DOI bereits lokal vorhanden, überspringe Registry-Fetch.",
			zap.Uint("article_id", article.ID))
		return s.linkExisting(citingType, citingID, &article)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("DOI-Lookup fehlgeschlagen", zap.Error(err))
		return failure(CodeInternal, "database error during DOI lookup")
	}

	// FETCH
	work, err := s.Registry.Lookup(ctx, norm)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrWorkNotFound):
			return failure(CodeNotFound, err.Error())
		case errors.Is(err, providers.ErrRegistry):
			log.Warn("Registry nicht erreichbar oder Antwort unbrauchbar", zap.Error(err))
			return failure(CodeRegistryError, err.Error())
		default:
			log.Error("Unerwarteter Registry-Fehler", zap.Error(err))
			return failure(CodeRegistryError, "unexpected registry failure")
		}
	}

	// MAP + PERSIST + EDGE in einer Transaktion.
	article = s.buildArticle(work, norm, status)
	var edge *models.Reference
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&article).Error; err != nil {
			return err
		}
		key := CitationKey(graph.TypeArticle, article.ID, norm)
		if err := tx.Model(&article).Update("citation_key", key).Error; err != nil {
			return err
		}
		article.CitationKey = &key

		if err := s.persistAuthors(tx, article.ID, work); err != nil {
			return err
		}

		created, err := s.Graph.WithTx(tx).AddEdge(citingType, citingID, graph.TypeArticle, article.ID)
		if err != nil {
			return err
		}
		edge = created
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// Race: ein paralleler Import derselben DOI hat gewonnen. Der
			// Unique-Index auf articles.doi garantiert genau eine Zeile;
			// wir verlinken die vorhandene.
			log.Info("Konkurrierender Import erkannt, verwende vorhandenen Artikel.")
			var winner models.Article
			if err := s.DB.Where("doi = ?", norm).First(&winner).Error; err != nil {
				log.Error("Vorhandener Artikel nach Unique-Konflikt nicht auffindbar", zap.Error(err))
				return failure(CodeInternal, "import race could not be resolved")
			}
			return s.linkExisting(citingType, citingID, &winner)
		}
		log.Error("Import-Transaktion zurückgerollt", zap.Error(txErr))
		return failure(CodeInternal, "import transaction failed")
	}

	log.Info("Import abgeschlossen",
		zap.Uint("article_id", article.ID),
		zap.Uint("reference_id", edge.ID))
	return &ImportResult{
		Success:       true,
		CreatedEntity: true,
		Entity:        s.entityInfo(&article),
		ReferenceID:   edge.ID,
	}
}

// linkExisting legt (falls nötig) die Kante zu einem bereits vorhandenen Artikel an.
// Eine bereits existierende Kante ist ein erwarteter, nicht-fataler Zustand.
func (s *ImportService) linkExisting(citingType string, citingID uint, article *models.Article) *ImportResult {
	result := &ImportResult{
		Success:       true,
		CreatedEntity: false,
		Entity:        s.entityInfo(article),
	}

	edge, err := s.Graph.AddEdge(citingType, citingID, graph.TypeArticle, article.ID)
	if err != nil {
		if errors.Is(err, graph.ErrDuplicateEdge) {
			result.Duplicate = true
			if edge != nil {
				result.ReferenceID = edge.ID
			}
			return result
		}
		s.Logger.Error("Kante zu vorhandenem Artikel fehlgeschlagen",
			zap.Uint("article_id", article.ID), zap.Error(err))
		return failure(CodeInternal, "failed to create reference edge")
	}

	result.ReferenceID = edge.ID
	return result
}

// buildArticle ist die totale Mapping-Funktion Registry-Work -> Artikel.
// Jedes Feld hat einen expliziten Fallback und wird auf sein Spalten-Limit gekürzt.
func (s *ImportService) buildArticle(work *providers.Work, norm, status string) models.Article {
	title := TruncateField(work.Title, 500)
	if title == "" {
		title = "(untitled work)"
	}
	if status == "" {
		// Importierte Werke existieren extern bereits.
		status = "published"
	}
	doi := norm
	return models.Article{
		Title:       title,
		Status:      status,
		Journal:     TruncateField(work.ContainerTitle, 200),
		Volume:      TruncateField(work.Volume, 50),
		Issue:       TruncateField(work.Issue, 50),
		Pages:       TruncateField(work.Pages, 50),
		PublishDate: DateFromParts(work.DateParts),
		DOI:         &doi,
		Source:      s.Registry.Name(),
	}
}

// persistAuthors legt für jeden brauchbaren Registry-Autor einen Author
// (get-or-create über die Identität) und eine Authorship-Zeile an.
// Der erste Autor gilt als Corresponding Author; die Registry markiert das
// nicht zuverlässig, die Heuristik ist eine bekannte Näherung.
func (s *ImportService) persistAuthors(tx *gorm.DB, articleID uint, work *providers.Work) error {
	order := 0
	for _, c := range work.Contributors {
		if c.Given == "" && c.Family == "" {
			continue
		}
		order++

		author := models.Author{
			FirstName: TruncateField(c.Given, 100),
			LastName:  TruncateField(c.Family, 100),
		}
		attrs := models.Author{
			ORCID: TruncateField(ORCIDSuffix(c.ORCID), 19),
		}
		if len(c.Affiliations) > 0 {
			attrs.Affiliation = TruncateField(c.Affiliations[0], 200)
		}
		if err := tx.Where(models.Author{
			FirstName: author.FirstName,
			LastName:  author.LastName,
			Email:     "",
		}).Attrs(attrs).FirstOrCreate(&author).Error; err != nil {
			return err
		}

		authorship := models.ArticleAuthorship{
			ArticleID:       articleID,
			AuthorID:        author.ID,
			AuthorshipOrder: order,
			IsCorresponding: order == 1,
		}
		if len(c.Affiliations) > 0 {
			authorship.Affiliation = TruncateField(c.Affiliations[0], 200)
		}
		if err := tx.Create(&authorship).Error; err != nil {
			return err
		}
	}
	return nil
}

// entityInfo baut die öffentliche Sicht auf einen Artikel inklusive Autoren-String.
func (s *ImportService) entityInfo(article *models.Article) *EntityInfo {
	info := &EntityInfo{
		ID:    article.ID,
		Type:  graph.TypeArticle,
		Title: article.Title,
	}
	if article.DOI != nil {
		info.DOI = *article.DOI
	}
	if article.CitationKey != nil {
		info.CitationKey = *article.CitationKey
	}

	authors, err := s.ArticleAuthors(article.ID)
	if err != nil {
		s.Logger.Warn("Autoren für Artikel nicht ladbar",
			zap.Uint("article_id", article.ID), zap.Error(err))
	} else {
		info.Authors = AuthorDisplay(authors)
	}
	return info
}

// ArticleAuthors lädt die Autoren eines Artikels in Zitationsreihenfolge.
func (s *ImportService) ArticleAuthors(articleID uint) ([]models.Author, error) {
	var authors []models.Author
	err := s.DB.
		Joins("JOIN article_authorships ON article_authorships.author_id = authors.id").
		Where("article_authorships.article_id = ?", articleID).
		Order("article_authorships.authorship_order asc").
		Find(&authors).Error
	return authors, err
}

// DateFromParts baut aus der date-parts-Struktur der Registry ein Datum.
// [2021] -> 2021-01-01, [2021,6] -> 2021-06-01, [2021,6,15] -> 2021-06-15.
// Fehlendes oder unbrauchbares Jahr ergibt nil statt eines geratenen Datums.
func DateFromParts(parts []int) *time.Time {
	if len(parts) == 0 || parts[0] <= 0 {
		return nil
	}
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] >= 1 && parts[2] <= 31 {
		day = parts[2]
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
