package repository_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plantid/internal/model"
	"plantid/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func newGormStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "plantid.db")), &gorm.Config{
		TranslateError: true,
		NowFunc:        repository.NowFunc,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewGormStore(db)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestGormUsers(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)

	missing, err := store.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	alice := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h1"}
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NotZero(t, alice.ID)
	require.NoError(t, store.Users.Create(ctx, &model.User{Username: "bob", Email: "b@x.com", PasswordHash: "h2"}))

	err = store.Users.Create(ctx, &model.User{Username: "alice", Email: "new@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	err = store.Users.Create(ctx, &model.User{Username: "alicia", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	updated, err := store.Users.Update(ctx, alice.ID, repository.UserUpdate{FirstName: ptr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Equal(t, "h1", updated.PasswordHash)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)
	assert.Nil(t, updated.LastName)

	_, err = store.Users.Update(ctx, alice.ID, repository.UserUpdate{Username: ptr("bob")})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	byEmail, err := store.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, alice.ID, byEmail.ID)

	gone, err := store.Users.Update(ctx, 999, repository.UserUpdate{FirstName: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGormIdentificationCreateMatchesLaterRead(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)

	ident := &model.PlantIdentification{
		UserID:         ptr(uint(7)),
		CommonName:     "Pothos",
		ScientificName: "Epipremnum aureum",
		Confidence:     92,
		CareTips:       datatypes.JSONSlice[string]{"bright indirect light", "let soil dry"},
		ImageURL:       ptr("/uploads/abc.jpg"),
	}
	require.NoError(t, store.Identifications.Create(ctx, ident))
	require.NotZero(t, ident.ID)
	assert.True(t, ident.CreatedAt.Equal(ident.CreatedAt.Truncate(time.Millisecond)))

	got, err := store.Identifications.GetByID(ctx, ident.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, mustJSON(t, ident), mustJSON(t, got))
	assert.Nil(t, got.Family)

	missing, err := store.Identifications.GetByID(ctx, ident.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormIdentificationListScopedNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)

	for i, owner := range []*uint{ptr(uint(1)), nil, ptr(uint(2)), ptr(uint(1))} {
		require.NoError(t, store.Identifications.Create(ctx, &model.PlantIdentification{
			UserID:         owner,
			CommonName:     string(rune('A' + i)),
			ScientificName: "x",
			Confidence:     50,
		}))
	}

	list, err := store.Identifications.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "D", list[0].CommonName)
	assert.Equal(t, "A", list[1].CommonName)
}

func TestGormDiagnosisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)

	diagnosis := &model.PlantDisease{
		PlantName:   "Tomato",
		DiseaseName: "Early blight",
		DiseaseType: model.DiseaseTypeDisease,
		Severity:    model.SeveritySevere,
		Confidence:  81,
		Symptoms:    datatypes.JSONSlice[string]{"brown rings"},
	}
	require.NoError(t, store.Diagnoses.Create(ctx, diagnosis))

	got, err := store.Diagnoses.GetByID(ctx, diagnosis.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, mustJSON(t, diagnosis), mustJSON(t, got))
	assert.Nil(t, got.UserID)

	list, err := store.Diagnoses.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormSavedPlantsUniqueAndScopedDelete(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)

	ident := &model.PlantIdentification{CommonName: "Pothos", ScientificName: "Epipremnum aureum", Confidence: 90, ImageURL: ptr("/uploads/p.jpg")}
	require.NoError(t, store.Identifications.Create(ctx, ident))

	first := model.NewSavedPlantFrom(1, ident)
	require.NoError(t, store.SavedPlants.Create(ctx, first))
	assert.False(t, first.SavedAt.IsZero())

	err := store.SavedPlants.Create(ctx, model.NewSavedPlantFrom(1, ident))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	// the same image in another user's collection is fine
	require.NoError(t, store.SavedPlants.Create(ctx, model.NewSavedPlantFrom(2, ident)))

	found, err := store.SavedPlants.GetByUserIDAndImageURL(ctx, 1, "/uploads/p.jpg")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	none, err := store.SavedPlants.GetByUserIDAndIdentificationID(ctx, 3, ident.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	n, err := store.SavedPlants.DeleteByUserIDAndIdentificationID(ctx, 3, ident.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.SavedPlants.DeleteByUserIDAndIdentificationID(ctx, 1, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mine, err := store.SavedPlants.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)
	theirs, err := store.SavedPlants.ListByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestGormContactMessages(t *testing.T) {
	store := newGormStore(t)

	msg := &model.ContactMessage{Name: "Ann", Email: "ann@x.com", Subject: "Hi", Message: "Hello"}
	require.NoError(t, store.ContactMessages.Create(context.Background(), msg))
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestNowFuncMillisecondUTC(t *testing.T) {
	now := repository.NowFunc()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Millisecond))
}
