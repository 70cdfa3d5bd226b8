package lullabies

import (
	"context"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

type localizedLoader func(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error)

func watchLocalized(ctx context.Context, r *Repository, tables []string, lang string, load localizedLoader) <-chan []entities.LocalizedLullaby {
	return watch.Query(ctx, r.tracker, tables, func(ctx context.Context) ([]entities.LocalizedLullaby, error) {
		return load(ctx, lang)
	})
}
