package models

import "time"

// Thesis repräsentiert eine Abschlussarbeit (Master, PhD etc.).
type Thesis struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title      string `json:"title" gorm:"size:500;not null"`
	University string `json:"university,omitempty" gorm:"size:200"`
	Department string `json:"department,omitempty" gorm:"size:200"`

	// bachelor, master, phd
	Degree string `json:"degree,omitempty" gorm:"size:20;index"`

	Status      string     `json:"status" gorm:"size:20;index;default:'draft'"`
	DefenseDate *time.Time `json:"defense_date,omitempty"`

	DOI         *string `json:"doi,omitempty" gorm:"column:doi;size:512;uniqueIndex"`
	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (Thesis) TableName() string {
	return "theses"
}

// ThesisAuthorship verknüpft eine Abschlussarbeit mit einem Autor.
type ThesisAuthorship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ThesisID uint `json:"thesis_id" gorm:"not null;uniqueIndex:idx_thesis_authorships_pair"`
	AuthorID uint `json:"author_id" gorm:"not null;uniqueIndex:idx_thesis_authorships_pair"`

	AuthorshipOrder int  `json:"authorship_order" gorm:"not null;default:0"`
	IsCorresponding bool `json:"is_corresponding" gorm:"default:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (ThesisAuthorship) TableName() string {
	return "thesis_authorships"
}
