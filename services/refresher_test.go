package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refgraph/config"
	"refgraph/models"
	"refgraph/providers"
)

func TestRefreshFillsOnlyEmptyFields(t *testing.T) {
	db := newTestDB(t)
	registry := &fakeRegistry{works: map[string]*providers.Work{
		"10.1234/example": {
			Title:          "A Study",
			ContainerTitle: "Nature",
			Volume:         "99",
			Pages:          "1-10",
			DateParts:      []int{2020, 3},
		},
	}}
	refresher := NewRefreshService(&config.Config{RefreshBatchSize: 25}, db, registry, zap.NewNop())

	article := models.Article{
		Title:  "A Study",
		DOI:    strPtr("10.1234/example"),
		Source: "crossref",
		Volume: "12", // manuell korrigiert, darf nicht überschrieben werden
	}
	require.NoError(t, db.Create(&article).Error)

	updated, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var got models.Article
	require.NoError(t, db.First(&got, article.ID).Error)
	assert.Equal(t, "Nature", got.Journal)
	assert.Equal(t, "12", got.Volume)
	assert.Equal(t, "1-10", got.Pages)
	require.NotNil(t, got.PublishDate)
	assert.Equal(t, 2020, got.PublishDate.Year())
}

func TestRefreshSkipsCompleteAndForeignArticles(t *testing.T) {
	db := newTestDB(t)
	registry := &fakeRegistry{works: map[string]*providers.Work{}}
	refresher := NewRefreshService(&config.Config{RefreshBatchSize: 25}, db, registry, zap.NewNop())

	publishDate := DateFromParts([]int{2019, 1, 1})
	complete := models.Article{Title: "C", DOI: strPtr("10.1/c"), Source: "crossref", Journal: "J", PublishDate: publishDate}
	manual := models.Article{Title: "M", Source: "manual"}
	require.NoError(t, db.Create(&complete).Error)
	require.NoError(t, db.Create(&manual).Error)

	updated, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Zero(t, registry.calls)
}

func TestRefreshAbortsWhenRegistryUnavailable(t *testing.T) {
	db := newTestDB(t)
	registry := &fakeRegistry{err: providers.ErrRegistry}
	refresher := NewRefreshService(&config.Config{RefreshBatchSize: 25}, db, registry, zap.NewNop())

	a := models.Article{Title: "A", DOI: strPtr("10.1/a"), Source: "crossref"}
	b := models.Article{Title: "B", DOI: strPtr("10.1/b"), Source: "crossref"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	updated, err := refresher.RunOnce(context.Background())
	assert.ErrorIs(t, err, providers.ErrRegistry)
	assert.Zero(t, updated)
	assert.Equal(t, 1, registry.calls, "run must stop after the first registry failure")
}
