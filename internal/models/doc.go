// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package models defines the value types exchanged with the Jellyfin
// host API and between the internal packages.
//
// Items are read-only views into the host's library: the service never
// mutates library state, it only filters and samples. Field names
// mirror the Jellyfin REST API (PascalCase JSON) for the host-facing
// types; the carousel response types use camelCase for the web client.
package models
