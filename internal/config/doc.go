// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package config loads and validates service configuration.
//
// Configuration is layered with Koanf v2 (highest priority wins):
// environment variables, then an optional YAML config file, then
// built-in defaults. The resulting Config is immutable after Load and
// passed explicitly into every component; there is no global
// configuration singleton.
package config
