package graph

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"refgraph/models"
)

// Fehler des Referenz-Graphen.
var (
	// ErrUnknownType: der Type-Tag ist keiner der bekannten Entitätstypen.
	ErrUnknownType = errors.New("unknown entity type")
	// ErrNotFound: der Endpunkt existiert nicht unter dem angegebenen Typ.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateEdge: eine Kante mit identischem (citing, cited)-Paar existiert bereits.
	ErrDuplicateEdge = errors.New("reference edge already exists")
)

// Bekannte Type-Tags. Die Reihenfolge ist nur für Anzeigen relevant.
const (
	TypeArticle          = "article"
	TypeBook             = "book"
	TypeTranslatedBook   = "translatedbook"
	TypeThesis           = "thesis"
	TypeResearchProject  = "researchproject"
	TypeResearchProposal = "researchproposal"
)

// resolvers ist die Dispatch-Tabelle: Type-Tag -> Lookup in der richtigen Tabelle.
// Bewusst kein Vererbungsmodell; jede Variante hat ihre eigene Lookup-Funktion.
var resolvers = map[string]func(db *gorm.DB, id uint) (models.Citable, error){
	TypeArticle: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.Article
		return &e, db.First(&e, id).Error
	},
	TypeBook: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.Book
		return &e, db.First(&e, id).Error
	},
	TypeTranslatedBook: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.TranslatedBook
		return &e, db.First(&e, id).Error
	},
	TypeThesis: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.Thesis
		return &e, db.First(&e, id).Error
	},
	TypeResearchProject: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.ResearchProject
		return &e, db.First(&e, id).Error
	},
	TypeResearchProposal: func(db *gorm.DB, id uint) (models.Citable, error) {
		var e models.ResearchProposal
		return &e, db.First(&e, id).Error
	},
}

// KnownType prüft, ob der Tag ein registrierter Entitätstyp ist.
func KnownType(typeTag string) bool {
	_, ok := resolvers[typeTag]
	return ok
}

// Graph speichert und liest gerichtete Zitationskanten zwischen heterogenen Entitäten.
type Graph struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewGraph erstellt einen neuen Referenz-Graphen auf der gegebenen Datenbank.
func NewGraph(db *gorm.DB, logger *zap.Logger) *Graph {
	return &Graph{DB: db, Logger: logger}
}

// WithTx gibt eine Kopie des Graphen zurück, die innerhalb der Transaktion arbeitet.
func (g *Graph) WithTx(tx *gorm.DB) *Graph {
	return &Graph{DB: tx, Logger: g.Logger}
}

// ResolveEndpoint löst ein (type, id)-Paar in die konkrete Entität auf.
func (g *Graph) ResolveEndpoint(typeTag string, id uint) (models.Citable, error) {
	resolve, ok := resolvers[typeTag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeTag)
	}
	entity, err := resolve(g.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s #%d", ErrNotFound, typeTag, id)
		}
		return nil, err
	}
	return entity, nil
}

// AddEdge validiert beide Endpunkte und legt die Kante an.
// Die Duplikatsprüfung läuft als Lookup vor dem Insert; der Unique-Index auf
// der Tabelle fängt zusätzlich Races zwischen konkurrierenden Requests ab.
func (g *Graph) AddEdge(citingType string, citingID uint, citedType string, citedID uint) (*models.Reference, error) {
	if _, err := g.ResolveEndpoint(citingType, citingID); err != nil {
		return nil, err
	}
	if _, err := g.ResolveEndpoint(citedType, citedID); err != nil {
		return nil, err
	}

	var existing models.Reference
	err := g.DB.Where("citing_type = ? AND citing_id = ? AND cited_type = ? AND cited_id = ?",
		citingType, citingID, citedType, citedID).First(&existing).Error
	if err == nil {
		return &existing, ErrDuplicateEdge
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	edge := models.Reference{
		CitingType: citingType,
		CitingID:   citingID,
		CitedType:  citedType,
		CitedID:    citedID,
	}
	if err := g.DB.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEdge
		}
		return nil, err
	}

	g.Logger.Debug("Referenzkante angelegt",
		zap.String("citing_type", citingType), zap.Uint("citing_id", citingID),
		zap.String("cited_type", citedType), zap.Uint("cited_id", citedID))
	return &edge, nil
}

// EdgesCiting gibt alle Kanten zurück, in denen die Entität die zitierende Seite ist
// ("was zitiert X"), in Einfüge-Reihenfolge.
func (g *Graph) EdgesCiting(typeTag string, id uint) ([]models.Reference, error) {
	if !KnownType(typeTag) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeTag)
	}
	var edges []models.Reference
	err := g.DB.Where("citing_type = ? AND citing_id = ?", typeTag, id).
		Order("id asc").Find(&edges).Error
	return edges, err
}

// EdgesCitedBy gibt alle Kanten zurück, in denen die Entität die zitierte Seite ist
// ("wer zitiert X"), in Einfüge-Reihenfolge.
func (g *Graph) EdgesCitedBy(typeTag string, id uint) ([]models.Reference, error) {
	if !KnownType(typeTag) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeTag)
	}
	var edges []models.Reference
	err := g.DB.Where("cited_type = ? AND cited_id = ?", typeTag, id).
		Order("id asc").Find(&edges).Error
	return edges, err
}
