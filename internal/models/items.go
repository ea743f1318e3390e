// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package models

import "time"

// Item kinds as reported by the Jellyfin API in BaseItemDto.Type.
const (
	KindMovie   = "Movie"
	KindSeries  = "Series"
	KindSeason  = "Season"
	KindEpisode = "Episode"
	KindBoxSet  = "BoxSet"
)

// Item is the subset of Jellyfin's BaseItemDto consulted by the
// selection engine and the carousel response assembly.
type Item struct {
	ID              string   `json:"Id"`
	Name            string   `json:"Name"`
	Type            string   `json:"Type"`
	Overview        string   `json:"Overview,omitempty"`
	Taglines        []string `json:"Taglines,omitempty"`
	OfficialRating  string   `json:"OfficialRating,omitempty"`
	CommunityRating *float64 `json:"CommunityRating,omitempty"`
	CriticRating    *float64 `json:"CriticRating,omitempty"`

	// Hierarchy references. ParentID is the direct container (season
	// for episodes, series for seasons, library folder otherwise).
	ParentID string `json:"ParentId,omitempty"`
	SeriesID string `json:"SeriesId,omitempty"`

	PremiereDate *time.Time `json:"PremiereDate,omitempty"`
	EndDate      *time.Time `json:"EndDate,omitempty"`

	BackdropImageTags []string          `json:"BackdropImageTags,omitempty"`
	ImageTags         map[string]string `json:"ImageTags,omitempty"`

	UserData *UserItemData `json:"UserData,omitempty"`
}

// UserItemData carries the per-user state attached to an item when it
// is fetched through a user-scoped endpoint.
type UserItemData struct {
	Played     bool `json:"Played"`
	IsFavorite bool `json:"IsFavorite"`
}

// HasBackdrop reports whether the item carries at least one backdrop
// image, the minimum visual requirement for a carousel banner.
func (i *Item) HasBackdrop() bool {
	return len(i.BackdropImageTags) > 0
}

// HasLogo reports whether the item has a logo image variant.
func (i *Item) HasLogo() bool {
	_, ok := i.ImageTags["Logo"]
	return ok
}

// Tagline returns the first tagline, or empty when none is set.
func (i *Item) Tagline() string {
	if len(i.Taglines) == 0 {
		return ""
	}
	return i.Taglines[0]
}

// Played reports the played state for the user the item was fetched
// for. Items fetched without user scope report false.
func (i *Item) Played() bool {
	return i.UserData != nil && i.UserData.Played
}

// User is the subset of a Jellyfin user record consulted when
// resolving the requesting user and the inherited parental rating.
type User struct {
	ID     string     `json:"Id"`
	Name   string     `json:"Name"`
	Policy UserPolicy `json:"Policy"`
}

// UserPolicy carries the user's access policy. MaxParentalRating is
// nil when the user has no parental restriction.
type UserPolicy struct {
	MaxParentalRating *int `json:"MaxParentalRating,omitempty"`
}

// ItemsPage is the envelope Jellyfin wraps item query results in.
type ItemsPage struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}
