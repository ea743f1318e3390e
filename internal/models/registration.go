// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package models

// Registration is the payload sent to the host's file-transformation
// endpoint at startup. It is constructed once; the same value is
// resent on every retry of the registration attempt and discarded
// after the first success or once the retry budget is exhausted.
type Registration struct {
	// ID is a stable identifier for this transformation so the host
	// can deduplicate re-registrations across restarts.
	ID string `json:"id"`

	// FileNamePattern selects which served files the transformation
	// applies to (the web client's entry document).
	FileNamePattern string `json:"fileNamePattern"`

	// TransformationEndpoint is the callback path the host POSTs file
	// contents to.
	TransformationEndpoint string `json:"transformationEndpoint"`
}
