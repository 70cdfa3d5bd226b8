package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/domain"
	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/reactive"
	"github.com/mrlokans/lullabies/internal/remote"
)

// StoryRepository coordinates the story family.
type StoryRepository struct {
	source   StorySource
	store    StoryStore
	language LanguageSignal
	syncer   *familySyncer
}

// NewStoryRepository wires the story family.
func NewStoryRepository(source StorySource, store StoryStore, state SyncStateStore, language LanguageSignal, policy StalenessPolicy) *StoryRepository {
	r := &StoryRepository{source: source, store: store, language: language}
	r.syncer = &familySyncer{
		family: entities.SyncTypeStories,
		state:  state,
		policy: policy,
		count:  store.Count,
		pass:   r.pass,
	}
	return r
}

func (r *StoryRepository) Family() entities.SyncType { return entities.SyncTypeStories }

// Sync streams the localized stories for the current language and kicks off
// a background refresh when the cache is stale.
func (r *StoryRepository) Sync(ctx context.Context) <-chan []domain.Story {
	r.syncer.syncInBackground(ctx)
	return r.Observe(ctx)
}

func (r *StoryRepository) Observe(ctx context.Context) <-chan []domain.Story {
	return reactive.SwitchMap(ctx, r.language.Subscribe(ctx), func(ctx context.Context, lang string) <-chan []domain.Story {
		return reactive.Map(ctx, r.store.ObserveLocalized(ctx, lang), domain.Stories)
	})
}

func (r *StoryRepository) ObserveFavourites(ctx context.Context) <-chan []domain.Story {
	return reactive.SwitchMap(ctx, r.language.Subscribe(ctx), func(ctx context.Context, lang string) <-chan []domain.Story {
		return reactive.Map(ctx, r.store.ObserveFavourites(ctx, lang), domain.Stories)
	})
}

func (r *StoryRepository) List(ctx context.Context) ([]domain.Story, error) {
	rows, err := r.store.GetLocalized(ctx, r.language.Current())
	if err != nil {
		return nil, err
	}
	return domain.Stories(rows), nil
}

func (r *StoryRepository) Favourites(ctx context.Context) ([]domain.Story, error) {
	rows, err := r.store.GetLocalizedFavourites(ctx, r.language.Current())
	if err != nil {
		return nil, err
	}
	return domain.Stories(rows), nil
}

func (r *StoryRepository) Get(ctx context.Context, documentID string) (*domain.Story, error) {
	row, err := r.store.GetLocalizedByDocumentID(ctx, documentID, r.language.Current())
	if err != nil || row == nil {
		return nil, err
	}
	s := domain.StoryFromRow(*row)
	return &s, nil
}

func (r *StoryRepository) Refresh(ctx context.Context) error {
	return r.syncer.refresh(ctx)
}

func (r *StoryRepository) RefreshIfStale(ctx context.Context) (bool, error) {
	return r.syncer.refreshIfStale(ctx)
}

func (r *StoryRepository) pass(ctx context.Context) (syncrepo.SyncResult, error) {
	var result syncrepo.SyncResult

	fetchCtx, cancelFetches := context.WithCancel(ctx)
	defer cancelFetches()

	storiesCh := remote.Go(fetchCtx, r.source.FetchStories)
	namesCh := remote.Go(fetchCtx, r.source.FetchStoryNameTranslations)
	descriptionsCh := remote.Go(fetchCtx, r.source.FetchStoryDescriptionTranslations)
	audioCh := remote.Go(fetchCtx, r.source.FetchStoryAudioLanguages)

	primary, err := await(ctx, storiesCh)
	if err != nil {
		return result, err
	}
	if !primary.Ok() {
		cancelFetches()
		return result, fmt.Errorf("fetch stories: %w", primary.Err)
	}

	ids := storyIDs(primary.Value)

	names, err := await(ctx, namesCh)
	if err != nil {
		return result, err
	}
	descriptions, err := await(ctx, descriptionsCh)
	if err != nil {
		return result, err
	}
	audio, err := await(ctx, audioCh)
	if err != nil {
		return result, err
	}

	var failed []error
	for _, f := range []struct {
		name string
		err  error
	}{
		{remote.CollectionStoryNameTranslations, names.Err},
		{remote.CollectionStoryDescriptionTranslations, descriptions.Err},
		{remote.CollectionStoryAudioLanguages, audio.Err},
	} {
		if f.err != nil {
			log.Printf("[SYNC] %s unavailable, skipping: %v", f.name, f.err)
			failed = append(failed, fmt.Errorf("fetch %s: %w", f.name, f.err))
		}
	}

	var (
		storyRows       []entities.Story
		nameRows        []entities.StoryNameTranslation
		descriptionRows []entities.StoryDescriptionTranslation
		audioRows       []entities.StoryAudioLanguage
		skippedNames    int
		skippedDescs    int
		skippedAudio    int
	)
	var convert errgroup.Group
	convert.Go(func() error {
		storyRows = toStories(primary.Value)
		return nil
	})
	if names.Ok() {
		convert.Go(func() error {
			nameRows, skippedNames = toStoryNameTranslations(names.Value, ids)
			return nil
		})
	}
	if descriptions.Ok() {
		convert.Go(func() error {
			descriptionRows, skippedDescs = toStoryDescriptionTranslations(descriptions.Value, ids)
			return nil
		})
	}
	if audio.Ok() {
		convert.Go(func() error {
			audioRows, skippedAudio = toStoryAudioLanguages(audio.Value, ids)
			return nil
		})
	}
	_ = convert.Wait() // conversions do not fail

	persist, persistCtx := errgroup.WithContext(ctx)
	persist.Go(func() error {
		if err := r.store.InsertAll(persistCtx, storyRows); err != nil {
			return fmt.Errorf("store stories: %w", err)
		}
		return nil
	})
	persist.Go(func() error {
		if err := r.store.InsertNameTranslations(persistCtx, nameRows); err != nil {
			return fmt.Errorf("store story name translations: %w", err)
		}
		return nil
	})
	persist.Go(func() error {
		if err := r.store.InsertDescriptionTranslations(persistCtx, descriptionRows); err != nil {
			return fmt.Errorf("store story description translations: %w", err)
		}
		return nil
	})
	persist.Go(func() error {
		if err := r.store.InsertAudioLanguages(persistCtx, audioRows); err != nil {
			return fmt.Errorf("store story audio languages: %w", err)
		}
		return nil
	})
	if err := persist.Wait(); err != nil {
		return result, err
	}

	result.TotalItems = len(primary.Value)
	result.Succeeded = len(storyRows)
	result.Skipped = skippedNames + skippedDescs + skippedAudio
	if result.Skipped > 0 {
		log.Printf("[SYNC] Skipped %d story translation rows without a parent", result.Skipped)
	}
	if len(failed) > 0 {
		return result, errors.Join(failed...)
	}
	return result, nil
}
