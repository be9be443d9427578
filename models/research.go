package models

import "time"

// ResearchProject repräsentiert ein laufendes oder abgeschlossenes Forschungsprojekt.
type ResearchProject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title" gorm:"size:500;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	// planned, active, completed, cancelled
	Status string `json:"status" gorm:"size:20;index;default:'planned'"`

	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	FundingSource string     `json:"funding_source,omitempty" gorm:"size:200"`

	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (ResearchProject) TableName() string {
	return "research_projects"
}

// ResearchProposal repräsentiert einen Forschungsantrag.
type ResearchProposal struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `json:"title" gorm:"size:500;not null"`
	Abstract string `json:"abstract,omitempty" gorm:"type:text"`

	// draft, submitted, accepted, rejected
	Status string `json:"status" gorm:"size:20;index;default:'draft'"`

	FundingAgency string     `json:"funding_agency,omitempty" gorm:"size:200"`
	SubmittedDate *time.Time `json:"submitted_date,omitempty"`

	CitationKey *string `json:"citation_key,omitempty" gorm:"size:64;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (ResearchProposal) TableName() string {
	return "research_proposals"
}
