package services

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"refgraph/graph"
	"refgraph/models"
)

// BibEntry is one rendered entry in an entity's bibliography.
type BibEntry struct {
	ReferenceID uint   `json:"reference_id"`
	CitedType   string `json:"cited_type"`
	CitedID     uint   `json:"cited_id"`
	CitationKey string `json:"citation_key,omitempty"`
	DOI         string `json:"doi,omitempty"`
	Title       string `json:"title"`
	Formatted   string `json:"formatted"`
	BibTeX      string `json:"bibtex,omitempty"`
}

// BibliographyService renders the works cited by an entity as formatted references.
type BibliographyService struct {
	DB     *gorm.DB
	Graph  *graph.Graph
	Logger *zap.Logger
}

// NewBibliographyService creates a new bibliography renderer.
func NewBibliographyService(db *gorm.DB, g *graph.Graph, logger *zap.Logger) *BibliographyService {
	return &BibliographyService{DB: db, Graph: g, Logger: logger}
}

// Entries returns the bibliography of the given entity in citation (insertion) order.
// Edges whose cited endpoint no longer resolves are skipped with a warning.
func (b *BibliographyService) Entries(typeTag string, id uint) ([]BibEntry, error) {
	edges, err := b.Graph.EdgesCiting(typeTag, id)
	if err != nil {
		return nil, err
	}

	entries := make([]BibEntry, 0, len(edges))
	for _, edge := range edges {
		cited, err := b.Graph.ResolveEndpoint(edge.CitedType, edge.CitedID)
		if err != nil {
			b.Logger.Warn("Skipping edge with unresolvable cited endpoint",
				zap.Uint("reference_id", edge.ID),
				zap.String("cited_type", edge.CitedType),
				zap.Uint("cited_id", edge.CitedID),
				zap.Error(err))
			continue
		}

		entry := BibEntry{
			ReferenceID: edge.ID,
			CitedType:   edge.CitedType,
			CitedID:     edge.CitedID,
			CitationKey: cited.EntityCitationKey(),
			DOI:         cited.EntityDOI(),
			Title:       cited.DisplayTitle(),
		}

		if article, ok := cited.(*models.Article); ok {
			authors, err := b.articleAuthors(article.ID)
			if err != nil {
				b.Logger.Warn("Could not load authors for bibliography entry",
					zap.Uint("article_id", article.ID), zap.Error(err))
			}
			entry.Formatted = FormatArticleReference(article, authors)
			entry.BibTeX = ArticleBibTeX(article, authors)
		} else {
			entry.Formatted = formatGenericReference(cited)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (b *BibliographyService) articleAuthors(articleID uint) ([]models.Author, error) {
	var authors []models.Author
	err := b.DB.
		Joins("JOIN article_authorships ON article_authorships.author_id = authors.id").
		Where("article_authorships.article_id = ?", articleID).
		Order("article_authorships.authorship_order asc").
		Find(&authors).Error
	return authors, err
}

// FormatArticleReference renders an article as an APA-like reference line:
// "Doe, J., Smith, A. (2020). Title. Journal, 12(3), 45-67, https://doi.org/10.x/y"
func FormatArticleReference(article *models.Article, authors []models.Author) string {
	var sb strings.Builder

	if names := formatAuthorList(authors); names != "" {
		sb.WriteString(names)
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf("(%s). ", yearOrND(article.PublishDate)))
	sb.WriteString(article.Title)
	sb.WriteString(".")

	if article.Journal != "" {
		sb.WriteString(" " + article.Journal)
		if article.Volume != "" {
			sb.WriteString(", " + article.Volume)
			if article.Issue != "" {
				sb.WriteString("(" + article.Issue + ")")
			}
		}
		if article.Pages != "" {
			sb.WriteString(", " + article.Pages)
		}
	}
	if article.DOI != nil && *article.DOI != "" {
		sb.WriteString(", https://doi.org/" + *article.DOI)
	}
	return sb.String()
}

// ArticleBibTeX renders an article as a BibTeX @article entry.
func ArticleBibTeX(article *models.Article, authors []models.Author) string {
	key := "article"
	if article.CitationKey != nil && *article.CitationKey != "" {
		key = *article.CitationKey
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@article{%s,\n", key))
	if len(authors) > 0 {
		names := make([]string, 0, len(authors))
		for i := range authors {
			names = append(names, fmt.Sprintf("%s, %s", authors[i].LastName, authors[i].FirstName))
		}
		sb.WriteString(fmt.Sprintf("  author = {%s},\n", strings.Join(names, " and ")))
	}
	sb.WriteString(fmt.Sprintf("  title = {%s},\n", article.Title))
	if article.Journal != "" {
		sb.WriteString(fmt.Sprintf("  journal = {%s},\n", article.Journal))
	}
	if article.PublishDate != nil {
		sb.WriteString(fmt.Sprintf("  year = {%d},\n", article.PublishDate.Year()))
	}
	if article.Volume != "" {
		sb.WriteString(fmt.Sprintf("  volume = {%s},\n", article.Volume))
	}
	if article.Issue != "" {
		sb.WriteString(fmt.Sprintf("  number = {%s},\n", article.Issue))
	}
	if article.Pages != "" {
		sb.WriteString(fmt.Sprintf("  pages = {%s},\n", article.Pages))
	}
	if article.DOI != nil && *article.DOI != "" {
		sb.WriteString(fmt.Sprintf("  doi = {%s},\n", *article.DOI))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// formatGenericReference is the fallback for cited entities that are not articles.
func formatGenericReference(cited models.Citable) string {
	line := cited.DisplayTitle() + "."
	if doi := cited.EntityDOI(); doi != "" {
		line += " https://doi.org/" + doi
	}
	return line
}

// formatAuthorList renders "Last, F., Last, F." with abbreviated first names.
func formatAuthorList(authors []models.Author) string {
	if len(authors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		if a.FirstName == "" {
			parts = append(parts, a.LastName)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s, %s.", a.LastName, a.FirstName[:1]))
	}
	return strings.Join(parts, ", ")
}

func yearOrND(t *time.Time) string {
	if t == nil {
		return "n.d."
	}
	return fmt.Sprintf("%d", t.Year())
}
