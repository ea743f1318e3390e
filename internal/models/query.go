// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package models

import "time"

// ItemQuery describes a library query against the host's /Items
// endpoint. The zero value queries everything; setters below exist so
// the selection engine can derive mode-specific variants from a shared
// base query without mutating it.
type ItemQuery struct {
	// UserID scopes the query to what this user can see. The host
	// applies its own visibility rules server-side.
	UserID string

	// IncludeTypes restricts results to the given item kinds.
	IncludeTypes []string

	// ParentID restricts results to children of the given container
	// (used for collection lookups).
	ParentID string

	// IDs restricts results to the given item identifiers.
	IDs []string

	// IsFavorite restricts results to the user's favourites.
	IsFavorite bool

	// ExcludePlayed filters out items the scoping user has played.
	ExcludePlayed bool

	// MinCommunityRating and MinCriticRating are lower bounds; zero
	// disables the bound.
	MinCommunityRating float64
	MinCriticRating    float64

	// MaxParentalRating is the parental age ceiling; nil disables it.
	// RequireRating additionally demands that an official rating is
	// present at all.
	MaxParentalRating *int
	RequireRating     bool

	// MinEndDate / MinPremiereDate bound the recency of series and
	// movies respectively (NEW mode).
	MinEndDate      *time.Time
	MinPremiereDate *time.Time

	// SortRandom asks the host to shuffle server-side.
	SortRandom bool

	// Limit caps the result count; zero means host default.
	Limit int

	// Recursive descends into folders rather than listing top level.
	Recursive bool
}

// WithUser returns a copy scoped to the given user.
func (q ItemQuery) WithUser(userID string) ItemQuery {
	q.UserID = userID
	return q
}

// WithTypes returns a copy restricted to the given item kinds.
func (q ItemQuery) WithTypes(kinds ...string) ItemQuery {
	q.IncludeTypes = kinds
	return q
}

// WithIDs returns a copy restricted to the given item identifiers.
func (q ItemQuery) WithIDs(ids ...string) ItemQuery {
	q.IDs = ids
	return q
}

// WithParent returns a copy restricted to children of the container.
func (q ItemQuery) WithParent(parentID string) ItemQuery {
	q.ParentID = parentID
	return q
}
