package models

import (
	"time"

	"gorm.io/datatypes"
)

// Article repräsentiert einen wissenschaftlichen Artikel (zitierbar und zitierend).
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `json:"title" gorm:"size:500;not null"`
	Subtitle string `json:"subtitle,omitempty" gorm:"size:300"`

	// draft, submitted, under_review, accepted, published, rejected
	Status string `json:"status" gorm:"size:20;index;default:'draft'"`

	// Publikationsdaten
	Journal     string     `json:"journal,omitempty" gorm:"size:200"`
	Volume      string     `json:"volume,omitempty" gorm:"size:50"`
	Issue       string     `json:"issue,omitempty" gorm:"size:50"`
	Pages       string     `json:"pages,omitempty" gorm:"size:50"`
	PublishDate *time.Time `json:"publish_date,omitempty"`

	// DOI wird immer normalisiert (lowercase, kanonische 10.x/y-Form) gespeichert.
	// Der Unique-Index garantiert Idempotenz bei konkurrierenden Imports.
	DOI         *string `json:"doi,omitempty" gorm:"column:doi;size:512;uniqueIndex"`
	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`

	// Herkunft: "manual" oder der Name der Registry (z.B. "crossref").
	Source string `json:"source,omitempty" gorm:"size:32;index"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "articles"
}

// ArticleAuthorship verknüpft einen Artikel mit einem Autor (mit Reihenfolge und Rolle).
type ArticleAuthorship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ArticleID uint `json:"article_id" gorm:"not null;uniqueIndex:idx_article_authorships_pair"`
	AuthorID  uint `json:"author_id" gorm:"not null;uniqueIndex:idx_article_authorships_pair"`

	// 1-basierte Anzeige- bzw. Zitationsreihenfolge.
	AuthorshipOrder int  `json:"authorship_order" gorm:"not null;default:0"`
	IsCorresponding bool `json:"is_corresponding" gorm:"default:false"`

	// Affiliation für dieses konkrete Werk (kann von Author.Affiliation abweichen).
	Affiliation string `json:"affiliation,omitempty" gorm:"size:200"`
}

// TableName gibt explizit den Tabellennamen an.
func (ArticleAuthorship) TableName() string {
	return "article_authorships"
}
