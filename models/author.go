package models

import (
	"fmt"
	"time"
)

// Author repräsentiert eine Autorin oder einen Autor, unabhängig von einzelnen Werken.
// Identität: (first_name, last_name, email) muss eindeutig sein.
type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstName string `json:"first_name" gorm:"size:100;not null;uniqueIndex:idx_authors_identity"`
	LastName  string `json:"last_name" gorm:"size:100;not null;uniqueIndex:idx_authors_identity"`
	Email     string `json:"email,omitempty" gorm:"size:254;not null;default:'';uniqueIndex:idx_authors_identity"`

	// Best-effort-Felder, werden aus Registry-Daten gefüllt, falls vorhanden.
	ORCID       string `json:"orcid,omitempty" gorm:"column:orcid;size:19"`
	Affiliation string `json:"affiliation,omitempty" gorm:"size:200"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors"
}

// FullName gibt den Anzeigenamen zurück.
func (a *Author) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}
