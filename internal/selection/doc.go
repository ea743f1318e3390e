// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package selection picks the carousel's items.
//
// Given a requesting user and the carousel configuration, the Engine
// gathers a raw candidate pool according to the active mode
// (favourites, collections, new, random) and runs it through a
// bounded sampler that deduplicates, promotes episodes and seasons to
// their series, enforces visibility, scope, played-state and backdrop
// requirements, and caps the output at the configured sample count.
// When the primary mode yields nothing the engine falls back to the
// random pool, so the carousel is non-empty whenever the library
// holds any qualifying item.
//
// The engine holds no mutable state across requests; concurrent
// selections are fully independent.
package selection
