package models

import "time"

// Reference modelliert eine gerichtete Zitationskante: citing zitiert cited.
// Beide Seiten werden als (type, id)-Paar gespeichert, weil die Endpunkte in
// sechs verschiedenen Tabellen liegen und kein gemeinsamer Foreign Key möglich ist.
type Reference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CitingType string `json:"citing_type" gorm:"size:32;not null;uniqueIndex:idx_reference_edges_unique;index:idx_reference_edges_citing"`
	CitingID   uint   `json:"citing_id" gorm:"not null;uniqueIndex:idx_reference_edges_unique;index:idx_reference_edges_citing"`

	CitedType string `json:"cited_type" gorm:"size:32;not null;uniqueIndex:idx_reference_edges_unique;index:idx_reference_edges_cited"`
	CitedID   uint   `json:"cited_id" gorm:"not null;uniqueIndex:idx_reference_edges_unique;index:idx_reference_edges_cited"`
}

// TableName weicht bewusst von "references" ab, da das ein reserviertes SQL-Wort ist.
func (Reference) TableName() string {
	return "reference_edges"
}
