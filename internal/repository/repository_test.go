package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/lullabies/internal/database"
	"github.com/mrlokans/lullabies/internal/database/favourites"
	"github.com/mrlokans/lullabies/internal/database/lullabies"
	"github.com/mrlokans/lullabies/internal/database/stories"
	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/domain"
	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/language"
	"github.com/mrlokans/lullabies/internal/remote"
)

var errNetwork = errors.New("network unreachable")

type fakeLullabySource struct {
	lullabyCalls     atomic.Int32
	translationCalls atomic.Int32

	lullabies    func(ctx context.Context) ([]remote.Lullaby, error)
	translations func(ctx context.Context) ([]remote.LullabyTranslation, error)
}

func (f *fakeLullabySource) FetchLullabies(ctx context.Context) ([]remote.Lullaby, error) {
	f.lullabyCalls.Add(1)
	return f.lullabies(ctx)
}

func (f *fakeLullabySource) FetchLullabyTranslations(ctx context.Context) ([]remote.LullabyTranslation, error) {
	f.translationCalls.Add(1)
	return f.translations(ctx)
}

type fakeStorySource struct {
	calls atomic.Int32

	stories      func(ctx context.Context) ([]remote.Story, error)
	names        func(ctx context.Context) ([]remote.StoryNameTranslation, error)
	descriptions func(ctx context.Context) ([]remote.StoryDescriptionTranslation, error)
	audio        func(ctx context.Context) ([]remote.StoryAudioLanguage, error)
}

func (f *fakeStorySource) FetchStories(ctx context.Context) ([]remote.Story, error) {
	f.calls.Add(1)
	return f.stories(ctx)
}

func (f *fakeStorySource) FetchStoryNameTranslations(ctx context.Context) ([]remote.StoryNameTranslation, error) {
	return f.names(ctx)
}

func (f *fakeStorySource) FetchStoryDescriptionTranslations(ctx context.Context) ([]remote.StoryDescriptionTranslation, error) {
	return f.descriptions(ctx)
}

func (f *fakeStorySource) FetchStoryAudioLanguages(ctx context.Context) ([]remote.StoryAudioLanguage, error) {
	return f.audio(ctx)
}

func threeLullabies() []remote.Lullaby {
	return []remote.Lullaby{
		{DocumentID: "l1", ID: 1, Name: "Twinkle"},
		{DocumentID: "l2", ID: 2, Name: "Hush Little Baby"},
		{DocumentID: "l3", ID: 3, Name: "Rock-a-bye"},
	}
}

func twoFrenchTranslations() []remote.LullabyTranslation {
	return []remote.LullabyTranslation{
		{LullabyID: 1, LanguageCode: "fr", Name: "Scintille"},
		{LullabyID: 2, LanguageCode: "fr", Name: "Chut petit bébé"},
	}
}

func newLullabySource() *fakeLullabySource {
	return &fakeLullabySource{
		lullabies: func(context.Context) ([]remote.Lullaby, error) { return threeLullabies(), nil },
		translations: func(context.Context) ([]remote.LullabyTranslation, error) {
			return twoFrenchTranslations(), nil
		},
	}
}

type fixture struct {
	db         *database.Database
	lullabies  *lullabies.Repository
	stories    *stories.Repository
	favourites *favourites.Repository
	syncState  *syncrepo.Repository
	signal     *language.Signal
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "test.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	signal, err := language.NewSignal(context.Background(), nil, "en")
	require.NoError(t, err)

	return &fixture{
		db:         db,
		lullabies:  lullabies.NewRepository(db.DB, db.Tracker),
		stories:    stories.NewRepository(db.DB, db.Tracker),
		favourites: favourites.NewRepository(db.DB, db.Tracker),
		syncState:  syncrepo.NewRepository(db.DB),
		signal:     signal,
	}
}

func (f *fixture) lullabyRepo(source LullabySource) *LullabyRepository {
	return NewLullabyRepository(source, f.lullabies, f.syncState, f.signal, NewStalenessPolicy(DefaultStaleThreshold))
}

func (f *fixture) storyRepo(source StorySource) *StoryRepository {
	return NewStoryRepository(source, f.stories, f.syncState, f.signal, NewStalenessPolicy(DefaultStaleThreshold))
}

// waitFor reads ch until a value satisfies ok.
func waitFor[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	var last T
	for {
		select {
		case v, open := <-ch:
			require.True(t, open, "stream closed")
			last = v
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("condition not met, last value: %+v", last)
			return last
		}
	}
}

func names(ls []domain.Lullaby) map[string]string {
	out := make(map[string]string, len(ls))
	for _, l := range ls {
		out[l.DocumentID] = l.Name
	}
	return out
}

func TestStalenessPolicy_NeedsSync(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	policy := StalenessPolicy{Threshold: 24 * time.Hour, Now: func() time.Time { return now }}
	recent := now.Add(-time.Hour)
	old := now.Add(-25 * time.Hour)
	edge := now.Add(-24 * time.Hour)

	tests := []struct {
		name  string
		last  *time.Time
		count int64
		want  bool
	}{
		{"never synced", nil, 10, true},
		{"empty cache", &recent, 0, true},
		{"stale", &old, 10, true},
		{"exactly at threshold", &edge, 10, false},
		{"fresh and warm", &recent, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.NeedsSync(tt.last, tt.count))
		})
	}
}

func TestNewStalenessPolicy_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultStaleThreshold, NewStalenessPolicy(0).Threshold)
}

func TestLullabyRepository_SyncFromEmptyCache(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.signal.Set(ctx, "fr")
	require.NoError(t, err)

	repo := f.lullabyRepo(newLullabySource())
	got := waitFor(t, repo.Sync(ctx), func(ls []domain.Lullaby) bool { return len(ls) == 3 })

	assert.Equal(t, map[string]string{
		"l1": "Scintille",
		"l2": "Chut petit bébé",
		"l3": "Rock-a-bye",
	}, names(got))

	assert.Eventually(t, func() bool {
		last, err := f.syncState.LastSyncedAt(ctx, entities.SyncTypeLullabies)
		return err == nil && last != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLullabyRepository_WarmCacheSkipsRemote(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	source := newLullabySource()
	repo := f.lullabyRepo(source)

	ran, err := repo.RefreshIfStale(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = repo.RefreshIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, int32(1), source.lullabyCalls.Load())
}

func TestLullabyRepository_StaleCacheRefreshes(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	source := newLullabySource()

	now := time.Now()
	policy := StalenessPolicy{Threshold: time.Hour, Now: func() time.Time { return now }}
	repo := NewLullabyRepository(source, f.lullabies, f.syncState, f.signal, policy)

	_, err := repo.RefreshIfStale(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	ran, err := repo.RefreshIfStale(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(2), source.lullabyCalls.Load())
}

func TestLullabyRepository_PrimaryFailureWritesNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	translationCancelled := make(chan struct{})
	source := &fakeLullabySource{
		lullabies: func(context.Context) ([]remote.Lullaby, error) { return nil, errNetwork },
		translations: func(ctx context.Context) ([]remote.LullabyTranslation, error) {
			<-ctx.Done()
			close(translationCancelled)
			return nil, ctx.Err()
		},
	}

	err := f.lullabyRepo(source).Refresh(ctx)
	require.ErrorIs(t, err, errNetwork)

	select {
	case <-translationCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("translation fetch was not cancelled")
	}

	count, err := f.lullabies.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	total, err := f.lullabies.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	last, err := f.syncState.LastSyncedAt(ctx, entities.SyncTypeLullabies)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestLullabyRepository_TranslationFailureKeepsPrimaries(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := newLullabySource()
	source.translations = func(context.Context) ([]remote.LullabyTranslation, error) { return nil, errNetwork }

	err := f.lullabyRepo(source).Refresh(ctx)
	require.ErrorIs(t, err, errNetwork)

	total, err := f.lullabies.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	last, err := f.syncState.LastSyncedAt(ctx, entities.SyncTypeLullabies)
	require.NoError(t, err)
	assert.Nil(t, last, "a partial pass must not count as synced")
}

func TestLullabyRepository_SkipsUnmappedTranslations(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := newLullabySource()
	source.translations = func(context.Context) ([]remote.LullabyTranslation, error) {
		return append(twoFrenchTranslations(), remote.LullabyTranslation{LullabyID: 99, LanguageCode: "fr", Name: "Orphan"}), nil
	}

	require.NoError(t, f.lullabyRepo(source).Refresh(ctx))

	count, err := f.lullabies.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	progress, err := f.syncState.GetSyncProgress(ctx, entities.SyncTypeLullabies)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Skipped)
}

func TestLullabyRepository_SkipsTranslationsOfUnstoredParents(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := newLullabySource()
	source.lullabies = func(context.Context) ([]remote.Lullaby, error) {
		return []remote.Lullaby{
			{DocumentID: "l1", ID: 1, Name: "Twinkle"},
			{DocumentID: "", ID: 2, Name: "No id"},
		}, nil
	}
	source.translations = func(context.Context) ([]remote.LullabyTranslation, error) {
		return []remote.LullabyTranslation{{LullabyID: 2, LanguageCode: "fr", Name: "Bé"}}, nil
	}

	require.NoError(t, f.lullabyRepo(source).Refresh(ctx))

	count, err := f.lullabies.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	orphans, err := f.lullabies.GetTranslations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orphans)

	progress, err := f.syncState.GetSyncProgress(ctx, entities.SyncTypeLullabies)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Skipped)
}

func TestLullabyRepository_RegionalTranslationMatchesBaseLanguage(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := newLullabySource()
	source.translations = func(context.Context) ([]remote.LullabyTranslation, error) {
		return []remote.LullabyTranslation{
			{LullabyID: 1, LanguageCode: "pt-BR", Name: "Brilha"},
			{LullabyID: 2, LanguageCode: "not a language!", Name: "Broken"},
		}, nil
	}
	repo := f.lullabyRepo(source)
	require.NoError(t, repo.Refresh(ctx))

	current, err := f.signal.Set(ctx, "pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "pt", current)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Brilha", names(got)["l1"])
	assert.Equal(t, "Hush Little Baby", names(got)["l2"])

	progress, err := f.syncState.GetSyncProgress(ctx, entities.SyncTypeLullabies)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Skipped, "unparseable language codes are skipped")
}

func TestLullabyRepository_RefreshKeepsDeviceState(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	repo := f.lullabyRepo(newLullabySource())

	require.NoError(t, repo.Refresh(ctx))
	_, err := f.favourites.Toggle(ctx, "l1", entities.ItemTypeLullaby)
	require.NoError(t, err)
	require.NoError(t, f.lullabies.MarkDownloaded(ctx, "l2", "/x/l2.mp3"))

	require.NoError(t, repo.Refresh(ctx))

	l1, err := f.lullabies.GetByDocumentID(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, l1.IsFavourite)

	l2, err := f.lullabies.GetByDocumentID(ctx, "l2")
	require.NoError(t, err)
	assert.True(t, l2.IsDownloaded)
	require.NotNil(t, l2.LocalAudioPath)
	assert.Equal(t, "/x/l2.mp3", *l2.LocalAudioPath)
}

func TestLullabyRepository_ConcurrentRefreshesShareOnePass(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	source := newLullabySource()
	source.lullabies = func(context.Context) ([]remote.Lullaby, error) {
		<-release
		return threeLullabies(), nil
	}
	repo := f.lullabyRepo(source)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Refresh(ctx))
		}()
	}

	assert.Eventually(t, func() bool { return source.lullabyCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), source.lullabyCalls.Load())
}

func TestLullabyRepository_LanguageSwitchEndsOnLatest(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := newLullabySource()
	source.translations = func(context.Context) ([]remote.LullabyTranslation, error) {
		return append(twoFrenchTranslations(),
			remote.LullabyTranslation{LullabyID: 1, LanguageCode: "de", Name: "Funkel"},
		), nil
	}
	repo := f.lullabyRepo(source)
	require.NoError(t, repo.Refresh(ctx))

	stream := repo.Observe(ctx)
	waitFor(t, stream, func(ls []domain.Lullaby) bool { return names(ls)["l1"] == "Twinkle" })

	_, err := f.signal.Set(ctx, "fr")
	require.NoError(t, err)
	_, err = f.signal.Set(ctx, "de")
	require.NoError(t, err)

	waitFor(t, stream, func(ls []domain.Lullaby) bool { return names(ls)["l1"] == "Funkel" })

	// Nothing from an earlier language may follow.
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case ls := <-stream:
			assert.Equal(t, "Funkel", names(ls)["l1"])
		case <-deadline:
			return
		}
	}
}

func TestLullabyRepository_FavouritesStream(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := f.lullabyRepo(newLullabySource())
	require.NoError(t, repo.Refresh(ctx))

	stream := repo.ObserveFavourites(ctx)
	waitFor(t, stream, func(ls []domain.Lullaby) bool { return len(ls) == 0 })

	_, err := f.favourites.Toggle(ctx, "l3", entities.ItemTypeLullaby)
	require.NoError(t, err)
	got := waitFor(t, stream, func(ls []domain.Lullaby) bool { return len(ls) == 1 })
	assert.Equal(t, "l3", got[0].DocumentID)
	assert.True(t, got[0].IsFavourite)
}

func TestLullabyRepository_DownloadedStream(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := f.lullabyRepo(newLullabySource())
	require.NoError(t, repo.Refresh(ctx))
	_, err := f.signal.Set(ctx, "fr")
	require.NoError(t, err)

	stream := repo.ObserveDownloaded(ctx)
	waitFor(t, stream, func(ls []domain.Lullaby) bool { return len(ls) == 0 })

	require.NoError(t, f.lullabies.MarkDownloaded(ctx, "l1", "/x/l1.mp3"))
	got := waitFor(t, stream, func(ls []domain.Lullaby) bool { return len(ls) == 1 })
	assert.Equal(t, "Scintille", got[0].Name)
	assert.True(t, got[0].IsDownloaded)

	snapshot, err := repo.Downloaded(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "l1", snapshot[0].DocumentID)
}

func TestLullabyRepository_Get(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	repo := f.lullabyRepo(newLullabySource())
	require.NoError(t, repo.Refresh(ctx))

	l, err := repo.Get(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "Twinkle", l.Name)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func fiveStories() []entities.Story {
	out := make([]entities.Story, 5)
	for i := range out {
		out[i] = entities.Story{
			DocumentID:  string(rune('a'+i)) + "-story",
			InternalID:  i + 1,
			Name:        "Story " + string(rune('A'+i)),
			Description: "Cached",
		}
	}
	return out
}

func TestStoryRepository_NetworkErrorServesCache(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.stories.InsertAll(ctx, fiveStories()))

	source := &fakeStorySource{
		stories: func(context.Context) ([]remote.Story, error) { return nil, errNetwork },
		names: func(context.Context) ([]remote.StoryNameTranslation, error) {
			return nil, errNetwork
		},
		descriptions: func(context.Context) ([]remote.StoryDescriptionTranslation, error) {
			return nil, errNetwork
		},
		audio: func(context.Context) ([]remote.StoryAudioLanguage, error) {
			return nil, errNetwork
		},
	}

	repo := f.storyRepo(source)
	got := waitFor(t, repo.Sync(ctx), func(ss []domain.Story) bool { return len(ss) == 5 })
	for _, s := range got {
		assert.Equal(t, "Cached", s.Description)
	}

	assert.Eventually(t, func() bool {
		progress, err := f.syncState.GetSyncProgress(ctx, entities.SyncTypeStories)
		return err == nil && progress != nil && progress.Status == entities.SyncStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), source.calls.Load())

	total, err := f.stories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func storySource() *fakeStorySource {
	return &fakeStorySource{
		stories: func(context.Context) ([]remote.Story, error) {
			return []remote.Story{
				{DocumentID: "s1", ID: 10, Name: "The Moon", Description: "About the moon", AudioPath: "moon-en.mp3"},
				{DocumentID: "s2", ID: 20, Name: "The Sea", Description: "About the sea", AudioPath: "sea-en.mp3"},
			}, nil
		},
		names: func(context.Context) ([]remote.StoryNameTranslation, error) {
			return []remote.StoryNameTranslation{
				{StoryID: 10, LanguageCode: "fr", Name: "La Lune", AudioPath: "moon-fr.mp3"},
				{StoryID: 30, LanguageCode: "fr", Name: "Orphan"},
			}, nil
		},
		descriptions: func(context.Context) ([]remote.StoryDescriptionTranslation, error) {
			return []remote.StoryDescriptionTranslation{
				{StoryID: 20, LanguageCode: "fr", Description: "À propos de la mer"},
			}, nil
		},
		audio: func(context.Context) ([]remote.StoryAudioLanguage, error) {
			return []remote.StoryAudioLanguage{{StoryID: 10, LanguageCodes: []string{"en", "FR"}}}, nil
		},
	}
}

func TestStoryRepository_RefreshLocalizesEachFieldIndependently(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	repo := f.storyRepo(storySource())
	require.NoError(t, repo.Refresh(ctx))
	_, err := f.signal.Set(ctx, "fr")
	require.NoError(t, err)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	moon, sea := got[0], got[1]
	assert.Equal(t, "La Lune", moon.Name)
	assert.Equal(t, "About the moon", moon.Description)
	assert.Equal(t, "moon-fr.mp3", moon.AudioPath)
	assert.Equal(t, []string{"en", "fr"}, moon.AudioLanguages)

	assert.Equal(t, "The Sea", sea.Name)
	assert.Equal(t, "À propos de la mer", sea.Description)
	assert.Equal(t, "sea-en.mp3", sea.AudioPath)
	assert.Empty(t, sea.AudioLanguages)

	progress, err := f.syncState.GetSyncProgress(ctx, entities.SyncTypeStories)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Skipped)
}

func TestStoryRepository_PrimaryFailureWritesNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := storySource()
	source.stories = func(context.Context) ([]remote.Story, error) { return nil, errNetwork }

	require.ErrorIs(t, f.storyRepo(source).Refresh(ctx), errNetwork)

	counts, err := f.stories.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Equal(t, stories.TranslationCounts{}, counts)
}

func TestStoryRepository_PartialTranslationFailure(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	source := storySource()
	source.descriptions = func(context.Context) ([]remote.StoryDescriptionTranslation, error) { return nil, errNetwork }

	err := f.storyRepo(source).Refresh(ctx)
	require.ErrorIs(t, err, errNetwork)

	counts, err := f.stories.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Names)
	assert.Zero(t, counts.Descriptions)
	assert.Equal(t, int64(1), counts.AudioLanguages)

	total, err := f.stories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
