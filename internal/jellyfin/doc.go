// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package jellyfin implements a REST API client for the Jellyfin
// media server host.
//
// Two client layers are provided:
//   - Client: the plain HTTP client used by the startup coordinator,
//     whose probe/registration loops carry their own retry semantics
//     and must see every upstream failure directly.
//   - CircuitBreakerClient: wraps Client for request-time use by the
//     selection engine, shedding load when the host is unhealthy.
//
// API Reference: https://api.jellyfin.org/
package jellyfin
