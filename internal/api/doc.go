// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package api provides HTTP routing and handlers using the Chi
// router.
//
// Three endpoints face the host and its web client:
//
//	GET  /editorschoice/script     - the embedded carousel script
//	GET  /editorschoice/favourites - the carousel selection as JSON
//	POST /editorschoice/transform  - the content-transformation hook
//
// The carousel JSON shape is fixed by the client script and is not
// wrapped in any envelope. Health and metrics endpoints round out the
// operational surface.
package api
