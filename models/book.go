package models

import "time"

// Book repräsentiert ein Buch.
type Book struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title     string `json:"title" gorm:"size:500;not null"`
	Publisher string `json:"publisher,omitempty" gorm:"size:200"`
	ISBN      string `json:"isbn,omitempty" gorm:"column:isbn;size:20"`
	Edition   string `json:"edition,omitempty" gorm:"size:50"`

	Status      string     `json:"status" gorm:"size:20;index;default:'draft'"`
	PublishDate *time.Time `json:"publish_date,omitempty"`

	DOI         *string `json:"doi,omitempty" gorm:"column:doi;size:512;uniqueIndex"`
	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (Book) TableName() string {
	return "books"
}

// BookAuthorship verknüpft ein Buch mit einem Autor.
type BookAuthorship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	BookID   uint `json:"book_id" gorm:"not null;uniqueIndex:idx_book_authorships_pair"`
	AuthorID uint `json:"author_id" gorm:"not null;uniqueIndex:idx_book_authorships_pair"`

	AuthorshipOrder int  `json:"authorship_order" gorm:"not null;default:0"`
	IsCorresponding bool `json:"is_corresponding" gorm:"default:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (BookAuthorship) TableName() string {
	return "book_authorships"
}

// TranslatedBook repräsentiert die Übersetzung eines Buchs.
type TranslatedBook struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title            string `json:"title" gorm:"size:500;not null"`
	OriginalTitle    string `json:"original_title,omitempty" gorm:"size:500"`
	OriginalLanguage string `json:"original_language,omitempty" gorm:"size:50"`
	TargetLanguage   string `json:"target_language,omitempty" gorm:"size:50"`
	Publisher        string `json:"publisher,omitempty" gorm:"size:200"`

	Status      string     `json:"status" gorm:"size:20;index;default:'draft'"`
	PublishDate *time.Time `json:"publish_date,omitempty"`

	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (TranslatedBook) TableName() string {
	return "translated_books"
}

// TranslationAuthorship verknüpft eine Übersetzung mit einem Übersetzer/Autor.
type TranslationAuthorship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	TranslatedBookID uint `json:"translated_book_id" gorm:"not null;uniqueIndex:idx_translation_authorships_pair"`
	AuthorID         uint `json:"author_id" gorm:"not null;uniqueIndex:idx_translation_authorships_pair"`

	AuthorshipOrder int  `json:"authorship_order" gorm:"not null;default:0"`
	IsCorresponding bool `json:"is_corresponding" gorm:"default:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (TranslationAuthorship) TableName() string {
	return "translation_authorships"
}
