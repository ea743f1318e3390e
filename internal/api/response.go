// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package api

import (
	"math"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/editorschoice/editorschoice/internal/config"
	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/models"
	"github.com/editorschoice/editorschoice/internal/selection"
)

// CarouselItem is one carousel entry as consumed by the client
// script.
type CarouselItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Tagline        string `json:"tagline"`
	OfficialRating string `json:"officialRating"`
	HasLogo        bool   `json:"hasLogo"`

	// Optional fields, present only when the matching display toggle
	// is on and the item carries a value.
	Overview        string   `json:"overview,omitempty"`
	CommunityRating *float64 `json:"communityRating,omitempty"`
	CriticRating    *float64 `json:"criticRating,omitempty"`
}

// CarouselResponse is the full payload of the favourites endpoint.
type CarouselResponse struct {
	Items            []CarouselItem `json:"items"`
	Autoplay         bool           `json:"autoplay"`
	AutoplayInterval int            `json:"autoplayInterval"`
	ReduceImageSize  bool           `json:"reduceImageSize"`
	BannerHeight     int            `json:"bannerHeight"`
	Heading          string         `json:"heading,omitempty"`
}

// newCarouselResponse maps a selection result onto the wire shape.
func newCarouselResponse(cfg *config.CarouselConfig, result *selection.Result) CarouselResponse {
	items := make([]CarouselItem, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, newCarouselItem(cfg, &result.Items[i]))
	}

	return CarouselResponse{
		Items:            items,
		Autoplay:         cfg.Autoplay,
		AutoplayInterval: cfg.AutoplayIntervalSeconds * 1000,
		ReduceImageSize:  cfg.ReduceImageSize,
		BannerHeight:     cfg.BannerHeight,
		Heading:          cfg.Heading,
	}
}

func newCarouselItem(cfg *config.CarouselConfig, item *models.Item) CarouselItem {
	out := CarouselItem{
		ID:             item.ID,
		Name:           item.Name,
		Tagline:        item.Tagline(),
		OfficialRating: item.OfficialRating,
		HasLogo:        item.HasLogo(),
	}

	if cfg.ShowDescription && item.Overview != "" {
		out.Overview = item.Overview
	}
	if cfg.ShowRating {
		if item.CommunityRating != nil {
			rounded := math.Round(*item.CommunityRating*100) / 100
			out.CommunityRating = &rounded
		}
		if item.CriticRating != nil {
			out.CriticRating = item.CriticRating
		}
	}
	return out
}

// writeJSON serializes v with the given status. Encoding failures are
// logged; headers are already gone at that point.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError emits a minimal error body. Internal detail never leaks
// to the client; it belongs in the logs.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
