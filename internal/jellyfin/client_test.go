// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package jellyfin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/editorschoice/editorschoice/internal/models"
)

func TestItemsQueryMapping(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Items" {
			t.Errorf("path = %q, want /Items", r.URL.Path)
		}
		if r.Header.Get("X-Emby-Token") != "test-key" {
			t.Errorf("missing X-Emby-Token header")
		}
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(models.ItemsPage{
			Items:            []models.Item{{ID: "a"}, {ID: "b"}},
			TotalRecordCount: 2,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 5*time.Second)

	maxRating := 8
	minEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	q := models.ItemQuery{
		UserID:             "user1",
		IncludeTypes:       []string{models.KindMovie, models.KindSeries},
		IsFavorite:         true,
		ExcludePlayed:      true,
		MinCommunityRating: 6.5,
		MaxParentalRating:  &maxRating,
		RequireRating:      true,
		MinEndDate:         &minEnd,
		SortRandom:         true,
		Limit:              50,
		Recursive:          true,
	}

	page, err := client.Items(context.Background(), q)
	if err != nil {
		t.Fatalf("Items() error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(page.Items))
	}

	checks := map[string]string{
		"userId":             "user1",
		"includeItemTypes":   "Movie,Series",
		"isFavorite":         "true",
		"isPlayed":           "false",
		"minCommunityRating": "6.5",
		"maxOfficialRating":  "8",
		"hasOfficialRating":  "true",
		"minEndDate":         "2026-02-01T00:00:00Z",
		"sortBy":             "Random",
		"limit":              "50",
		"recursive":          "true",
		"enableUserData":     "true",
	}
	for param, want := range checks {
		got := gotQuery[param]
		if len(got) != 1 || got[0] != want {
			t.Errorf("query[%s] = %v, want %q", param, got, want)
		}
	}
	if _, present := gotQuery["minCriticRating"]; present {
		t.Error("minCriticRating should be omitted when zero")
	}
}

func TestUserByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	_, err := client.UserByID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserByIDMalformedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	_, err := client.UserByID(context.Background(), "not-a-guid")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID() error = %v, want ErrNotFound for 400", err)
	}
}

func TestUserByIDPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Id":"u1","Name":"Editor","Policy":{"MaxParentalRating":12}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	user, err := client.UserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserByID() error: %v", err)
	}
	if user.Policy.MaxParentalRating == nil {
		t.Fatal("Policy.MaxParentalRating should be set")
	}
	if *user.Policy.MaxParentalRating != 12 {
		t.Errorf("MaxParentalRating = %d, want 12", *user.Policy.MaxParentalRating)
	}
}

func TestUserItemNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Users/u1/Items/hidden" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	_, err := client.UserItem(context.Background(), "u1", "hidden")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UserItem() error = %v, want ErrNotFound", err)
	}
}

func TestProbeStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/System/Info/Public":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)

	status, err := client.PublicInfoStatus(context.Background())
	if err != nil {
		t.Fatalf("PublicInfoStatus() error: %v", err)
	}
	if status != http.StatusServiceUnavailable {
		t.Errorf("PublicInfoStatus() = %d, want 503", status)
	}

	status, err = client.RootStatus(context.Background())
	if err != nil {
		t.Fatalf("RootStatus() error: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("RootStatus() = %d, want 404", status)
	}
}

func TestProbeConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing listens on the address anymore

	client := NewClient(server.URL, "k", time.Second)
	if _, err := client.PublicInfoStatus(context.Background()); err == nil {
		t.Error("PublicInfoStatus() should fail when nothing listens")
	}
}

func TestRegisterTransformation(t *testing.T) {
	var gotBody models.Registration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/FileTransformation/RegisterTransformation" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	reg := models.Registration{
		ID:                     "stable-id",
		FileNamePattern:        "index.html",
		TransformationEndpoint: "http://plugin:3039/editorschoice/transform",
	}

	status, err := client.RegisterTransformation(context.Background(), reg)
	if err != nil {
		t.Fatalf("RegisterTransformation() error: %v", err)
	}
	if status != http.StatusNoContent {
		t.Errorf("status = %d, want 204", status)
	}
	if gotBody.FileNamePattern != "index.html" {
		t.Errorf("FileNamePattern = %q, want index.html", gotBody.FileNamePattern)
	}
	if gotBody.ID != "stable-id" {
		t.Errorf("ID = %q, want stable-id", gotBody.ID)
	}
}

func TestRegisterTransformationStatusPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	status, err := client.RegisterTransformation(context.Background(), models.Registration{})
	if err != nil {
		t.Fatalf("RegisterTransformation() error: %v", err)
	}
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 passed through for the retry loop", status)
	}
}
