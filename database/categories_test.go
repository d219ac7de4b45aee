package database

import (
	"testing"

	"blogicum/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPublishedCategory(t *testing.T) {
	db := newTestDB(t)
	createCategory(t, db, "Open Air", true)
	createCategory(t, db, "Secret", false)

	got, err := GetPublishedCategory(db, "open-air")
	require.NoError(t, err)
	assert.Equal(t, "Open Air", got.Title)

	_, err = GetPublishedCategory(db, "secret")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = GetPublishedCategory(db, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	hidden := false
	seed := config.SeedConfig{
		Categories: []config.SeedCategory{
			{Title: "Travel", Description: "Trips"},
			{Title: "Drafts", Slug: "drafts-only", Published: &hidden},
		},
		Locations: []config.SeedLocation{
			{Name: "Moscow"},
			{Name: "Closed Island", Published: &hidden},
		},
	}

	require.NoError(t, Seed(db, seed))
	require.NoError(t, Seed(db, seed))

	categories, err := ListCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "drafts-only", categories[0].Slug)
	assert.False(t, categories[0].IsPublished)
	assert.Equal(t, "travel", categories[1].Slug)
	assert.True(t, categories[1].IsPublished)

	locations, err := ListLocations(db)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Closed Island", locations[0].Name)
	assert.False(t, locations[0].IsPublished)
	assert.True(t, locations[1].IsPublished)
}
