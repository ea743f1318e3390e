// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package selection

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"

	"github.com/editorschoice/editorschoice/internal/config"
	"github.com/editorschoice/editorschoice/internal/jellyfin"
	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/models"
)

// Result is one completed selection.
type Result struct {
	// Mode is the normalized mode the items were drawn from. When
	// Fallback is set the primary mode produced nothing and Items
	// came from the random pool instead.
	Mode     string
	Fallback bool
	Items    []models.Item
}

// Engine selects carousel items from the host's library.
type Engine struct {
	lib jellyfin.Library
	cfg config.CarouselConfig

	// now and intn are swapped out in tests for determinism.
	now  func() time.Time
	intn func(n int) int
}

// New creates a selection engine over the given library capability.
func New(lib jellyfin.Library, cfg config.CarouselConfig) *Engine {
	return &Engine{
		lib:  lib,
		cfg:  cfg,
		now:  time.Now,
		intn: rand.IntN,
	}
}

// ratingPolicy is the per-request effective parental rating: the
// ceiling to apply, and whether items must carry a rating at all.
type ratingPolicy struct {
	max     *int
	require bool
}

// effectiveRating resolves the parental ceiling for this request.
// When configured to inherit, the requesting user's own limit is
// used and a rating is required only if the user actually has a
// limit; a fixed configured ceiling always requires a rating.
func (e *Engine) effectiveRating(user *models.User) ratingPolicy {
	if e.cfg.InheritParentalRating() {
		max := user.Policy.MaxParentalRating
		return ratingPolicy{max: max, require: max != nil}
	}
	max := e.cfg.MaxParentalRating
	return ratingPolicy{max: &max, require: true}
}

// Select produces the carousel items for the given user.
func (e *Engine) Select(ctx context.Context, user *models.User) (*Result, error) {
	mode := e.cfg.NormalizedMode()
	rating := e.effectiveRating(user)

	items, err := e.selectMode(ctx, mode, user, rating)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 && mode != config.ModeRandom {
		logging.Ctx(ctx).Debug().Str("mode", mode).Msg("Primary mode empty, falling back to random pool")
		items, err = e.selectRandom(ctx, user, rating)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: mode, Fallback: true, Items: items}, nil
	}

	return &Result{Mode: mode, Items: items}, nil
}

func (e *Engine) selectMode(ctx context.Context, mode string, user *models.User, rating ratingPolicy) ([]models.Item, error) {
	switch mode {
	case config.ModeFavourites:
		return e.selectFavourites(ctx, user, rating)
	case config.ModeCollections:
		return e.selectCollections(ctx, user, rating)
	case config.ModeNew:
		return e.selectNew(ctx, user, rating)
	default:
		return e.selectRandom(ctx, user, rating)
	}
}

// baseQuery carries the filters shared by every mode: requesting-user
// visibility, rating bounds, played-state policy, random server-side
// ordering and a fetch limit leaving headroom for post-filtering.
func (e *Engine) baseQuery(user *models.User, rating ratingPolicy) models.ItemQuery {
	return models.ItemQuery{
		UserID:             user.ID,
		Recursive:          true,
		SortRandom:         true,
		Limit:              2 * e.cfg.SampleCount,
		ExcludePlayed:      !e.cfg.IncludeWatched,
		MinCommunityRating: e.cfg.MinCommunityRating,
		MinCriticRating:    e.cfg.MinCriticRating,
		MaxParentalRating:  rating.max,
		RequireRating:      rating.require,
	}
}

// selectFavourites draws from the editor's favourites. The favourites
// are listed under the editor's own visibility, then the surviving
// identifiers are re-queried under the requesting user so that every
// candidate in the pool is something the requester may see.
func (e *Engine) selectFavourites(ctx context.Context, user *models.User, rating ratingPolicy) ([]models.Item, error) {
	if e.cfg.EditorUserID == "" {
		return nil, nil
	}

	editor, err := e.lib.UserByID(ctx, e.cfg.EditorUserID)
	if err != nil {
		if errors.Is(err, jellyfin.ErrNotFound) {
			logging.Ctx(ctx).Warn().Str("editor", e.cfg.EditorUserID).Msg("Configured editor cannot be resolved")
			return nil, nil
		}
		return nil, err
	}

	favourites, err := e.lib.Items(ctx, models.ItemQuery{
		UserID:       editor.ID,
		IsFavorite:   true,
		Recursive:    true,
		IncludeTypes: []string{models.KindMovie, models.KindSeries, models.KindSeason, models.KindEpisode},
	})
	if err != nil {
		return nil, err
	}
	if len(favourites.Items) == 0 {
		return nil, nil
	}

	ids := lo.Map(favourites.Items, func(it models.Item, _ int) string { return it.ID })

	page, err := e.lib.Items(ctx, e.baseQuery(user, rating).
		WithTypes(models.KindMovie, models.KindSeries, models.KindSeason, models.KindEpisode).
		WithIDs(ids...))
	if err != nil {
		return nil, err
	}
	return e.sample(ctx, user, page.Items)
}

// selectCollections draws one collection at a time, in random order
// without replacement, and stops at the first collection whose
// children survive sampling.
func (e *Engine) selectCollections(ctx context.Context, user *models.User, rating ratingPolicy) ([]models.Item, error) {
	remaining := lo.Uniq(e.cfg.CollectionIDs)

	for len(remaining) > 0 {
		i := e.intn(len(remaining))
		collectionID := remaining[i]
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]

		page, err := e.lib.Items(ctx, e.baseQuery(user, rating).
			WithTypes(models.KindMovie, models.KindSeries).
			WithParent(collectionID))
		if err != nil {
			return nil, err
		}

		result, err := e.sample(ctx, user, page.Items)
		if err != nil {
			return nil, err
		}
		if len(result) > 0 {
			return result, nil
		}
	}
	return nil, nil
}

// selectNew draws recently finished series and recently premiered
// movies as two pools, samples each independently, and concatenates.
func (e *Engine) selectNew(ctx context.Context, user *models.User, rating ratingPolicy) ([]models.Item, error) {
	cutoff := windowCutoff(e.now(), e.cfg.Window())

	seriesQuery := e.baseQuery(user, rating).WithTypes(models.KindSeries)
	seriesQuery.MinEndDate = &cutoff

	movieQuery := e.baseQuery(user, rating).WithTypes(models.KindMovie)
	movieQuery.MinPremiereDate = &cutoff

	seriesPage, err := e.lib.Items(ctx, seriesQuery)
	if err != nil {
		return nil, err
	}
	series, err := e.sample(ctx, user, seriesPage.Items)
	if err != nil {
		return nil, err
	}

	moviePage, err := e.lib.Items(ctx, movieQuery)
	if err != nil {
		return nil, err
	}
	movies, err := e.sample(ctx, user, moviePage.Items)
	if err != nil {
		return nil, err
	}

	return append(series, movies...), nil
}

func (e *Engine) selectRandom(ctx context.Context, user *models.User, rating ratingPolicy) ([]models.Item, error) {
	page, err := e.lib.Items(ctx, e.baseQuery(user, rating).
		WithTypes(models.KindSeries, models.KindMovie))
	if err != nil {
		return nil, err
	}
	return e.sample(ctx, user, page.Items)
}

// windowCutoff computes the earliest eligible date for NEW mode.
func windowCutoff(now time.Time, window string) time.Time {
	switch window {
	case config.Window2Month:
		return now.AddDate(0, -2, 0)
	case config.Window6Month:
		return now.AddDate(0, -6, 0)
	case config.Window1Year:
		return now.AddDate(-1, 0, 0)
	case config.Window2Year:
		return now.AddDate(-2, 0, 0)
	case config.Window5Year:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}
