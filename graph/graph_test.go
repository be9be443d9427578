package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"refgraph/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Eine einzige Verbindung, sonst sieht der Pool verschiedene In-Memory-DBs.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Author{},
		&models.Article{}, &models.ArticleAuthorship{},
		&models.Book{}, &models.BookAuthorship{},
		&models.TranslatedBook{}, &models.TranslationAuthorship{},
		&models.Thesis{}, &models.ThesisAuthorship{},
		&models.ResearchProject{}, &models.ResearchProposal{},
		&models.Reference{},
	))
	return db
}

func newTestGraph(t *testing.T) (*Graph, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewGraph(db, zap.NewNop()), db
}

func TestResolveEndpoint(t *testing.T) {
	g, db := newTestGraph(t)

	project := models.ResearchProject{Title: "Citation Networks", Status: "active"}
	require.NoError(t, db.Create(&project).Error)

	entity, err := g.ResolveEndpoint(TypeResearchProject, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, entity.EntityID())
	assert.Equal(t, TypeResearchProject, entity.TypeTag())
	assert.Equal(t, "Citation Networks", entity.DisplayTitle())
}

func TestResolveEndpointUnknownType(t *testing.T) {
	g, _ := newTestGraph(t)

	_, err := g.ResolveEndpoint("journal", 1)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestResolveEndpointNotFound(t *testing.T) {
	g, _ := newTestGraph(t)

	_, err := g.ResolveEndpoint(TypeArticle, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddEdgeAcrossTypes(t *testing.T) {
	g, db := newTestGraph(t)

	thesis := models.Thesis{Title: "On Graphs", University: "ETH"}
	book := models.Book{Title: "Graph Theory"}
	require.NoError(t, db.Create(&thesis).Error)
	require.NoError(t, db.Create(&book).Error)

	edge, err := g.AddEdge(TypeThesis, thesis.ID, TypeBook, book.ID)
	require.NoError(t, err)
	assert.NotZero(t, edge.ID)
	assert.Equal(t, TypeThesis, edge.CitingType)
	assert.Equal(t, TypeBook, edge.CitedType)
}

func TestAddEdgeDuplicate(t *testing.T) {
	g, db := newTestGraph(t)

	citing := models.ResearchProject{Title: "P", Status: "active"}
	cited := models.Article{Title: "A"}
	require.NoError(t, db.Create(&citing).Error)
	require.NoError(t, db.Create(&cited).Error)

	first, err := g.AddEdge(TypeResearchProject, citing.ID, TypeArticle, cited.ID)
	require.NoError(t, err)

	second, err := g.AddEdge(TypeResearchProject, citing.ID, TypeArticle, cited.ID)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Reference{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddEdgeValidatesEndpoints(t *testing.T) {
	g, db := newTestGraph(t)

	article := models.Article{Title: "A"}
	require.NoError(t, db.Create(&article).Error)

	_, err := g.AddEdge(TypeArticle, article.ID, TypeBook, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.AddEdge("nonsense", 1, TypeArticle, article.ID)
	assert.ErrorIs(t, err, ErrUnknownType)

	var count int64
	require.NoError(t, db.Model(&models.Reference{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEdgeDirection(t *testing.T) {
	g, db := newTestGraph(t)

	project := models.ResearchProject{Title: "P", Status: "active"}
	a1 := models.Article{Title: "First"}
	a2 := models.Article{Title: "Second"}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&a1).Error)
	require.NoError(t, db.Create(&a2).Error)

	_, err := g.AddEdge(TypeResearchProject, project.ID, TypeArticle, a1.ID)
	require.NoError(t, err)
	_, err = g.AddEdge(TypeResearchProject, project.ID, TypeArticle, a2.ID)
	require.NoError(t, err)
	// Gegenrichtung ist eine eigene Kante, kein Duplikat.
	_, err = g.AddEdge(TypeArticle, a1.ID, TypeResearchProject, project.ID)
	require.NoError(t, err)

	citing, err := g.EdgesCiting(TypeResearchProject, project.ID)
	require.NoError(t, err)
	require.Len(t, citing, 2)
	assert.Equal(t, a1.ID, citing[0].CitedID)
	assert.Equal(t, a2.ID, citing[1].CitedID)

	citedBy, err := g.EdgesCitedBy(TypeResearchProject, project.ID)
	require.NoError(t, err)
	require.Len(t, citedBy, 1)
	assert.Equal(t, TypeArticle, citedBy[0].CitingType)
	assert.Equal(t, a1.ID, citedBy[0].CitingID)

	empty, err := g.EdgesCiting(TypeArticle, a2.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
