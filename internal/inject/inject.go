// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package inject rewrites the web client's entry document so it loads
// the carousel script. It backs both integration strategies: the
// transform endpoint applies Apply to document bodies sent by the
// host, and the filesystem strategy applies InjectFile directly to
// index.html on disk.
package inject

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// markerAttr identifies script tags owned by this service so repeated
// transformations stay idempotent.
const markerAttr = `plugin="EditorsChoice"`

// staleTagPattern matches any script tag from an earlier release that
// references the carousel script, with or without the marker.
var staleTagPattern = regexp.MustCompile(`(?is)<script[^>]*editorschoice[^>]*>\s*(?:</script>)?`)

// ScriptTag returns the tag that loads the carousel client script.
func ScriptTag() string {
	return fmt.Sprintf(`<script %s src="/editorschoice/script" defer></script>`, markerAttr)
}

// Apply returns the document with the carousel script tag inserted
// before the closing </body>.
//
// The rewrite is idempotent: a document already carrying the marker
// is returned unchanged. Tags left behind by earlier releases are
// stripped before insertion. A document without </body> is returned
// unchanged, since inserting anywhere else risks breaking the web
// client's own script ordering.
func Apply(contents string) string {
	if strings.Contains(contents, markerAttr) {
		return contents
	}

	contents = staleTagPattern.ReplaceAllString(contents, "")

	idx := strings.LastIndex(contents, "</body>")
	if idx < 0 {
		return contents
	}
	return contents[:idx] + ScriptTag() + contents[idx:]
}

// InjectFile rewrites path in place with Apply. A missing file is not
// an error: hosts running the transform strategy have no local web
// client directory, and startup must not fail over it.
func InjectFile(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	rewritten := Apply(string(raw))
	if rewritten == string(raw) {
		return nil
	}

	if err := afero.WriteFile(fs, path, []byte(rewritten), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
