package lullabies

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/lullabies/internal/database"
	"github.com/mrlokans/lullabies/internal/database/favourites"
	"github.com/mrlokans/lullabies/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *database.Database) {
	t.Helper()
	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "test_lullabies.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB, db.Tracker), db
}

func seed(t *testing.T, repo *Repository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.InsertAll(ctx, []entities.Lullaby{
		{DocumentID: "l1", InternalID: 1, Name: "Twinkle", AudioPath: "l1.mp3"},
		{DocumentID: "l2", InternalID: 2, Name: "Hush"},
		{DocumentID: "l3", InternalID: 3, Name: "Rock-a-bye"},
	}))
	require.NoError(t, repo.InsertTranslations(ctx, []entities.LullabyTranslation{
		{LullabyDocumentID: "l1", LanguageCode: "fr", Name: "Scintille"},
		{LullabyDocumentID: "l2", LanguageCode: "fr", Name: ""},
		{LullabyDocumentID: "l2", LanguageCode: "de", Name: "Still"},
	}))
}

func TestRepository_GetByDocumentID(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	l, err := repo.GetByDocumentID(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "Twinkle", l.Name)

	missing, err := repo.GetByDocumentID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_InsertAllReplacesRemoteColumns(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.MarkDownloaded(ctx, "l1", "/x/l1.mp3"))
	require.NoError(t, repo.InsertAll(ctx, []entities.Lullaby{
		{DocumentID: "l1", InternalID: 1, Name: "Twinkle Twinkle", AudioPath: "l1-v2.mp3"},
	}))

	l, err := repo.GetByDocumentID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Twinkle Twinkle", l.Name)
	assert.Equal(t, "l1-v2.mp3", l.AudioPath)
	assert.True(t, l.IsDownloaded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepository_InsertTranslationsReplacesName(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.InsertTranslations(ctx, []entities.LullabyTranslation{
		{LullabyDocumentID: "l1", LanguageCode: "fr", Name: "Brille"},
	}))

	translations, err := repo.GetTranslations(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, translations, 1)
	assert.Equal(t, "Brille", translations[0].Name)
}

func TestRepository_GetLocalized_FallsBackToSourceName(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)

	rows, err := repo.GetLocalized(context.Background(), "fr")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Scintille", rows[0].LocalizedName)
	assert.Equal(t, "Hush", rows[1].LocalizedName, "empty translation falls back")
	assert.Equal(t, "Rock-a-bye", rows[2].LocalizedName, "missing translation falls back")

	rows, err = repo.GetLocalized(context.Background(), "ja")
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, row.Name, row.LocalizedName)
	}
}

func TestRepository_GetLocalizedByDocumentID(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	row, err := repo.GetLocalizedByDocumentID(ctx, "l2", "de")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Still", row.LocalizedName)

	missing, err := repo.GetLocalizedByDocumentID(ctx, "nope", "de")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_GetLocalizedFavourites_MostRecentFirst(t *testing.T) {
	repo, db := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	favs := favourites.NewRepository(db.DB, db.Tracker).WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	for _, id := range []string{"l2", "l1", "l3"} {
		_, err := favs.Toggle(ctx, id, entities.ItemTypeLullaby)
		require.NoError(t, err)
	}
	_, err := favs.Toggle(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)

	rows, err := repo.GetLocalizedFavourites(ctx, "fr")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "l3", rows[0].DocumentID)
	assert.Equal(t, "l2", rows[1].DocumentID)
}

func TestRepository_MarkDownloaded(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.MarkDownloaded(ctx, "l1", "/x/y.mp3"))
	require.NoError(t, repo.MarkDownloaded(ctx, "l1", "/x/y.mp3"))

	l, err := repo.GetByDocumentID(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, l.IsDownloaded)
	require.NotNil(t, l.LocalAudioPath)
	assert.Equal(t, "/x/y.mp3", *l.LocalAudioPath)

	downloaded, err := repo.GetLocalizedDownloaded(ctx, "en")
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, "l1", downloaded[0].DocumentID)

	assert.ErrorIs(t, repo.MarkDownloaded(ctx, "missing", "/x"), entities.ErrNotFound)
}

func TestRepository_DeleteRemovesTranslations(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "l2"))

	translations, err := repo.GetTranslations(ctx, "l2")
	require.NoError(t, err)
	assert.Empty(t, translations)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_DeleteAll(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.DeleteAll(ctx))
	require.NoError(t, repo.DeleteAllTranslations(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	translations, err := repo.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Zero(t, translations)
}

func TestRepository_DeleteRemovesFavouriteMetadata(t *testing.T) {
	repo, db := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()
	favs := favourites.NewRepository(db.DB, db.Tracker)

	_, err := favs.Toggle(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)
	_, err = favs.Toggle(ctx, "l2", entities.ItemTypeLullaby)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "l1"))

	has, err := favs.HasMetadata(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)
	assert.False(t, has)

	count, err := favs.GetFavouriteCount(ctx, entities.ItemTypeLullaby)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A re-synced l1 comes back unfavourited with no metadata left behind.
	require.NoError(t, repo.InsertAll(ctx, []entities.Lullaby{{DocumentID: "l1", InternalID: 1, Name: "Twinkle"}}))
	l1, err := repo.GetByDocumentID(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, l1.IsFavourite)
	has, err = favs.HasMetadata(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRepository_DeleteAllRemovesOnlyLullabyFavouriteMetadata(t *testing.T) {
	repo, db := setupTestDB(t)
	seed(t, repo)
	ctx := context.Background()
	favs := favourites.NewRepository(db.DB, db.Tracker)

	_, err := favs.Toggle(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Story{DocumentID: "s1", InternalID: 1, Name: "The Moon"}).Error)
	_, err = favs.Toggle(ctx, "s1", entities.ItemTypeStory)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(ctx))

	count, err := favs.GetFavouriteCount(ctx, entities.ItemTypeLullaby)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = favs.GetFavouriteCount(ctx, entities.ItemTypeStory)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ObserveLocalized_ReemitsOnTranslationChange(t *testing.T) {
	repo, _ := setupTestDB(t)
	seed(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.ObserveLocalized(ctx, "de")
	first := <-stream
	require.Len(t, first, 3)
	assert.Equal(t, "Twinkle", first[0].LocalizedName)

	require.NoError(t, repo.InsertTranslations(ctx, []entities.LullabyTranslation{
		{LullabyDocumentID: "l1", LanguageCode: "de", Name: "Funkel"},
	}))

	select {
	case rows := <-stream:
		assert.Equal(t, "Funkel", rows[0].LocalizedName)
	case <-time.After(2 * time.Second):
		t.Fatal("no emission after translation insert")
	}
}
