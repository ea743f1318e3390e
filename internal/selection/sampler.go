// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package selection

import (
	"context"
	"errors"
	"slices"

	"github.com/samber/lo"

	"github.com/editorschoice/editorschoice/internal/jellyfin"
	"github.com/editorschoice/editorschoice/internal/models"
)

// sample draws up to SampleCount accepted items from the pool.
//
// Each round draws a uniformly random element and swap-removes it
// from the pool, so the loop terminates after at most len(pool)
// draws even when every candidate is rejected. Episodes and seasons
// are promoted to their containing series before the acceptance
// checks. A drawn element is accepted only if it is visible to the
// user, not already in the output, inside the configured library
// scope, allowed by the played-state policy and carries a backdrop.
// The output size is min(SampleCount, qualifying candidates).
func (e *Engine) sample(ctx context.Context, user *models.User, pool []models.Item) ([]models.Item, error) {
	remaining := slices.Clone(pool)
	out := make([]models.Item, 0, min(e.cfg.SampleCount, len(remaining)))
	seen := make(map[string]bool, len(remaining))

	for len(out) < e.cfg.SampleCount && len(remaining) > 0 {
		i := e.intn(len(remaining))
		drawn := remaining[i]
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]

		item, visible, err := e.promote(ctx, user, &drawn)
		if err != nil {
			return nil, err
		}
		if !visible || seen[item.ID] {
			continue
		}
		if !e.playedAllowed(item) || !item.HasBackdrop() {
			continue
		}
		inScope, err := e.inScope(ctx, user, item)
		if err != nil {
			return nil, err
		}
		if !inScope {
			continue
		}

		seen[item.ID] = true
		out = append(out, *item)
	}
	return out, nil
}

// promote maps an episode or season to its containing series, as seen
// by the requesting user. Movies and series pass through unchanged;
// they already come from user-scoped queries and are visible by
// construction. A promoted series the user cannot see reports
// visible=false.
func (e *Engine) promote(ctx context.Context, user *models.User, item *models.Item) (*models.Item, bool, error) {
	switch item.Type {
	case models.KindEpisode, models.KindSeason:
	default:
		return item, true, nil
	}

	seriesID := item.SeriesID
	if seriesID == "" {
		// Walk parents: one hop for seasons, two for episodes.
		hops := 1
		if item.Type == models.KindEpisode {
			hops = 2
		}
		current := item
		for range hops {
			if current.ParentID == "" {
				return nil, false, nil
			}
			parent, err := e.lib.UserItem(ctx, user.ID, current.ParentID)
			if err != nil {
				if errors.Is(err, jellyfin.ErrNotFound) {
					return nil, false, nil
				}
				return nil, false, err
			}
			current = parent
		}
		return current, current.Type == models.KindSeries, nil
	}

	series, err := e.lib.UserItem(ctx, user.ID, seriesID)
	if err != nil {
		if errors.Is(err, jellyfin.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return series, true, nil
}

func (e *Engine) playedAllowed(item *models.Item) bool {
	return e.cfg.IncludeWatched || !item.Played()
}

// inScope checks the item sits under at least one configured library
// folder. No configured scope admits everything.
func (e *Engine) inScope(ctx context.Context, user *models.User, item *models.Item) (bool, error) {
	if len(e.cfg.LibraryScopeIDs) == 0 {
		return true, nil
	}

	ancestors, err := e.lib.Ancestors(ctx, user.ID, item.ID)
	if err != nil {
		if errors.Is(err, jellyfin.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return lo.SomeBy(ancestors, func(a models.Item) bool {
		return lo.Contains(e.cfg.LibraryScopeIDs, a.ID)
	}), nil
}
