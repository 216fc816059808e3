package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid/internal/model"
)

func TestSaveDeduplicatesByImage(t *testing.T) {
	ctx := context.Background()
	store, db := newMemoryStore()
	images, _ := newLocalStore(t)
	plants := NewPlantService(store, &fakeInference{reply: pothosReply}, images)
	collection := NewCollectionService(store)

	photo := testPNG(t, 50, 50, 9)
	first, err := plants.Identify(ctx, AnalyzeInput{Image: photo, MIMEType: "image/png"})
	require.NoError(t, err)
	second, err := plants.Identify(ctx, AnalyzeInput{Image: photo, MIMEType: "image/png"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, *first.ImageURL, *second.ImageURL)

	res, err := collection.Save(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.SavedPlant)
	assert.Equal(t, first.ID, res.SavedPlant.PlantIdentificationID)
	assert.Equal(t, "Pothos", res.SavedPlant.CommonName)

	res, err = collection.Save(ctx, 1, second.ID)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Nil(t, res.SavedPlant)
	assert.Equal(t, 1, db.Count("saved_plants"))

	res, err = collection.Save(ctx, 2, first.ID)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, db.Count("saved_plants"))
}

func TestSaveWithoutImageFallsBackToIdentification(t *testing.T) {
	ctx := context.Background()
	store, db := newMemoryStore()
	collection := NewCollectionService(store)

	ident := &model.PlantIdentification{CommonName: "Fern", ScientificName: "Nephrolepis", Confidence: 50}
	require.NoError(t, store.Identifications.Create(ctx, ident))
	other := &model.PlantIdentification{CommonName: "Ivy", ScientificName: "Hedera", Confidence: 50}
	require.NoError(t, store.Identifications.Create(ctx, other))

	res, err := collection.Save(ctx, 1, ident.ID)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	res, err = collection.Save(ctx, 1, ident.ID)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	res, err = collection.Save(ctx, 1, other.ID)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, db.Count("saved_plants"))
}

func TestSaveMissingIdentification(t *testing.T) {
	store, _ := newMemoryStore()
	_, err := NewCollectionService(store).Save(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrIdentificationNotFound)
}

func TestRemoveIsScopedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store, db := newMemoryStore()
	collection := NewCollectionService(store)

	ident := &model.PlantIdentification{CommonName: "Fern", ScientificName: "Nephrolepis"}
	require.NoError(t, store.Identifications.Create(ctx, ident))
	_, err := collection.Save(ctx, 2, ident.ID)
	require.NoError(t, err)

	require.NoError(t, collection.Remove(ctx, 1, ident.ID))
	assert.Equal(t, 1, db.Count("saved_plants"))

	require.NoError(t, collection.Remove(ctx, 2, ident.ID))
	assert.Zero(t, db.Count("saved_plants"))

	require.NoError(t, collection.Remove(ctx, 2, ident.ID))

	list, err := collection.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}
