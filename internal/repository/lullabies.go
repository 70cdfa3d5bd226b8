// Package repository is the sync coordinator. Each content family has a
// repository that keeps its local cache fresh from the content API and
// exposes language-aware live views over the cache.
//
// Sync returns the live view at once and refreshes a stale cache in the
// background; refresh failures are logged and the cached rows keep flowing.
package repository

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/domain"
	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/reactive"
	"github.com/mrlokans/lullabies/internal/remote"
)

// LullabyRepository coordinates the lullaby family.
type LullabyRepository struct {
	source   LullabySource
	store    LullabyStore
	language LanguageSignal
	syncer   *familySyncer
}

// NewLullabyRepository wires the lullaby family.
func NewLullabyRepository(source LullabySource, store LullabyStore, state SyncStateStore, language LanguageSignal, policy StalenessPolicy) *LullabyRepository {
	r := &LullabyRepository{source: source, store: store, language: language}
	r.syncer = &familySyncer{
		family: entities.SyncTypeLullabies,
		state:  state,
		policy: policy,
		count:  store.Count,
		pass:   r.pass,
	}
	return r
}

func (r *LullabyRepository) Family() entities.SyncType { return entities.SyncTypeLullabies }

// Sync streams the localized lullabies for the current language and kicks
// off a background refresh when the cache is stale.
func (r *LullabyRepository) Sync(ctx context.Context) <-chan []domain.Lullaby {
	r.syncer.syncInBackground(ctx)
	return r.Observe(ctx)
}

// Observe streams the localized lullabies, re-querying on language change.
func (r *LullabyRepository) Observe(ctx context.Context) <-chan []domain.Lullaby {
	return reactive.SwitchMap(ctx, r.language.Subscribe(ctx), func(ctx context.Context, lang string) <-chan []domain.Lullaby {
		return reactive.Map(ctx, r.store.ObserveLocalized(ctx, lang), domain.Lullabies)
	})
}

// ObserveFavourites streams favourite lullabies, most recently favourited first.
func (r *LullabyRepository) ObserveFavourites(ctx context.Context) <-chan []domain.Lullaby {
	return reactive.SwitchMap(ctx, r.language.Subscribe(ctx), func(ctx context.Context, lang string) <-chan []domain.Lullaby {
		return reactive.Map(ctx, r.store.ObserveFavourites(ctx, lang), domain.Lullabies)
	})
}

// ObserveDownloaded streams lullabies whose audio is stored on the device.
func (r *LullabyRepository) ObserveDownloaded(ctx context.Context) <-chan []domain.Lullaby {
	return reactive.SwitchMap(ctx, r.language.Subscribe(ctx), func(ctx context.Context, lang string) <-chan []domain.Lullaby {
		return reactive.Map(ctx, r.store.ObserveDownloaded(ctx, lang), domain.Lullabies)
	})
}

// List returns the current localized snapshot.
func (r *LullabyRepository) List(ctx context.Context) ([]domain.Lullaby, error) {
	rows, err := r.store.GetLocalized(ctx, r.language.Current())
	if err != nil {
		return nil, err
	}
	return domain.Lullabies(rows), nil
}

// Favourites returns the current localized favourites.
func (r *LullabyRepository) Favourites(ctx context.Context) ([]domain.Lullaby, error) {
	rows, err := r.store.GetLocalizedFavourites(ctx, r.language.Current())
	if err != nil {
		return nil, err
	}
	return domain.Lullabies(rows), nil
}

// Downloaded returns the current localized downloaded lullabies.
func (r *LullabyRepository) Downloaded(ctx context.Context) ([]domain.Lullaby, error) {
	rows, err := r.store.GetLocalizedDownloaded(ctx, r.language.Current())
	if err != nil {
		return nil, err
	}
	return domain.Lullabies(rows), nil
}

// Get returns one localized lullaby or nil.
func (r *LullabyRepository) Get(ctx context.Context, documentID string) (*domain.Lullaby, error) {
	row, err := r.store.GetLocalizedByDocumentID(ctx, documentID, r.language.Current())
	if err != nil || row == nil {
		return nil, err
	}
	l := domain.LullabyFromRow(*row)
	return &l, nil
}

// Refresh fetches and stores the lullaby family regardless of staleness.
func (r *LullabyRepository) Refresh(ctx context.Context) error {
	return r.syncer.refresh(ctx)
}

// RefreshIfStale refreshes only when the cache is stale. It reports whether
// a refresh ran.
func (r *LullabyRepository) RefreshIfStale(ctx context.Context) (bool, error) {
	return r.syncer.refreshIfStale(ctx)
}

func (r *LullabyRepository) pass(ctx context.Context) (syncrepo.SyncResult, error) {
	var result syncrepo.SyncResult

	fetchCtx, cancelFetches := context.WithCancel(ctx)
	defer cancelFetches()

	lullabiesCh := remote.Go(fetchCtx, r.source.FetchLullabies)
	translationsCh := remote.Go(fetchCtx, r.source.FetchLullabyTranslations)

	primary, err := await(ctx, lullabiesCh)
	if err != nil {
		return result, err
	}
	if !primary.Ok() {
		cancelFetches()
		return result, fmt.Errorf("fetch lullabies: %w", primary.Err)
	}

	ids := lullabyIDs(primary.Value)

	translations, err := await(ctx, translationsCh)
	if err != nil {
		return result, err
	}
	if !translations.Ok() {
		log.Printf("[SYNC] Lullaby translations unavailable, storing lullabies only: %v", translations.Err)
	}

	var (
		lullabyRows     []entities.Lullaby
		translationRows []entities.LullabyTranslation
		skipped         int
	)
	var convert errgroup.Group
	convert.Go(func() error {
		lullabyRows = toLullabies(primary.Value)
		return nil
	})
	if translations.Ok() {
		convert.Go(func() error {
			translationRows, skipped = toLullabyTranslations(translations.Value, ids)
			return nil
		})
	}
	_ = convert.Wait() // conversions do not fail

	persist, persistCtx := errgroup.WithContext(ctx)
	persist.Go(func() error {
		if err := r.store.InsertAll(persistCtx, lullabyRows); err != nil {
			return fmt.Errorf("store lullabies: %w", err)
		}
		return nil
	})
	persist.Go(func() error {
		if err := r.store.InsertTranslations(persistCtx, translationRows); err != nil {
			return fmt.Errorf("store lullaby translations: %w", err)
		}
		return nil
	})
	if err := persist.Wait(); err != nil {
		return result, err
	}

	result.TotalItems = len(primary.Value)
	result.Succeeded = len(lullabyRows)
	result.Skipped = skipped
	if skipped > 0 {
		log.Printf("[SYNC] Skipped %d lullaby translations without a parent", skipped)
	}
	if !translations.Ok() {
		return result, fmt.Errorf("fetch lullaby translations: %w", translations.Err)
	}
	return result, nil
}

// await waits for one fetch result or ctx.
func await[T any](ctx context.Context, ch <-chan remote.Result[T]) (remote.Result[T], error) {
	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return remote.Result[T]{}, ctx.Err()
	}
}
