// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package jellyfin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/editorschoice/editorschoice/internal/models"
)

// ErrNotFound is returned when the host reports 404 for a looked-up
// resource (unknown user or item).
var ErrNotFound = errors.New("jellyfin: not found")

// Library is the item-catalogue surface the selection engine needs.
// Both Client and CircuitBreakerClient implement it.
type Library interface {
	Items(ctx context.Context, q models.ItemQuery) (*models.ItemsPage, error)
	UserItem(ctx context.Context, userID, itemID string) (*models.Item, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	Ancestors(ctx context.Context, userID, itemID string) ([]models.Item, error)
}

var _ Library = (*Client)(nil)

// Client provides access to the Jellyfin REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Jellyfin API client.
//
// Parameters:
//   - baseURL: Jellyfin server URL (e.g. http://localhost:8096)
//   - apiKey: API key from Admin Dashboard > API Keys
//   - timeout: per-request timeout; zero selects 30s
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the normalized host URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Items queries the host's item catalogue. Queries carrying a UserID
// are answered under that user's visibility rules, so parental and
// library access filtering happens host-side.
func (c *Client) Items(ctx context.Context, q models.ItemQuery) (*models.ItemsPage, error) {
	endpoint := "/Items?" + buildItemsQuery(q).Encode()

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin items request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("items", resp)
	}

	var page models.ItemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin items: %w", err)
	}
	return &page, nil
}

// UserItem fetches a single item as seen by the given user. A 404
// from the host (item hidden or unknown) is reported as ErrNotFound.
func (c *Client) UserItem(ctx context.Context, userID, itemID string) (*models.Item, error) {
	endpoint := fmt.Sprintf("/Users/%s/Items/%s", url.PathEscape(userID), url.PathEscape(itemID))

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin user item request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, statusError("user item", resp)
	}

	var item models.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin item: %w", err)
	}
	return &item, nil
}

// UserByID fetches a user record including its parental policy.
func (c *Client) UserByID(ctx context.Context, userID string) (*models.User, error) {
	endpoint := "/Users/" + url.PathEscape(userID)

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin user request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		// The host answers 400 for malformed user IDs; both mean the
		// user cannot be resolved.
		return nil, ErrNotFound
	default:
		return nil, statusError("user", resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin user: %w", err)
	}
	return &user, nil
}

// Ancestors returns the chain of containers above an item, nearest
// first, as seen by the given user.
func (c *Client) Ancestors(ctx context.Context, userID, itemID string) ([]models.Item, error) {
	endpoint := fmt.Sprintf("/Items/%s/Ancestors", url.PathEscape(itemID))
	if userID != "" {
		endpoint += "?userId=" + url.QueryEscape(userID)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin ancestors request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, statusError("ancestors", resp)
	}

	var ancestors []models.Item
	if err := json.NewDecoder(resp.Body).Decode(&ancestors); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin ancestors: %w", err)
	}
	return ancestors, nil
}

// PublicInfoStatus probes GET /System/Info/Public and returns the
// HTTP status code. A transport-level failure returns an error.
func (c *Client) PublicInfoStatus(ctx context.Context) (int, error) {
	return c.probe(ctx, "/System/Info/Public")
}

// RootStatus probes GET / and returns the HTTP status code.
func (c *Client) RootStatus(ctx context.Context) (int, error) {
	return c.probe(ctx, "/")
}

func (c *Client) probe(ctx context.Context, endpoint string) (int, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// RegisterTransformation registers the carousel's document
// transformation with the host. The returned status code lets the
// caller distinguish retryable host states from terminal rejections.
func (c *Client) RegisterTransformation(ctx context.Context, reg models.Registration) (int, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return 0, fmt.Errorf("failed to encode registration: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/FileTransformation/RegisterTransformation", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("jellyfin registration request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	fullURL := c.baseURL + endpoint

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Client", "EditorsChoice")
	req.Header.Set("X-Emby-Device-Name", "EditorsChoice")
	req.Header.Set("X-Emby-Device-Id", "editorschoice")
	req.Header.Set("X-Emby-Client-Version", "1.0.0")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func statusError(operation string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("jellyfin %s returned status %d (failed to read body)", operation, resp.StatusCode)
	}
	return fmt.Errorf("jellyfin %s returned status %d: %s", operation, resp.StatusCode, string(body))
}

// buildItemsQuery maps an ItemQuery onto the host's /Items query
// parameters.
func buildItemsQuery(q models.ItemQuery) url.Values {
	v := url.Values{}
	v.Set("recursive", strconv.FormatBool(q.Recursive))
	v.Set("enableUserData", "true")
	v.Set("fields", "Taglines,Overview")

	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if len(q.IncludeTypes) > 0 {
		v.Set("includeItemTypes", strings.Join(q.IncludeTypes, ","))
	}
	if q.ParentID != "" {
		v.Set("parentId", q.ParentID)
	}
	if len(q.IDs) > 0 {
		v.Set("ids", strings.Join(q.IDs, ","))
	}
	if q.IsFavorite {
		v.Set("isFavorite", "true")
	}
	if q.ExcludePlayed {
		v.Set("isPlayed", "false")
	}
	if q.MinCommunityRating > 0 {
		v.Set("minCommunityRating", strconv.FormatFloat(q.MinCommunityRating, 'f', -1, 64))
	}
	if q.MinCriticRating > 0 {
		v.Set("minCriticRating", strconv.FormatFloat(q.MinCriticRating, 'f', -1, 64))
	}
	if q.RequireRating {
		v.Set("hasOfficialRating", "true")
	}
	if q.MaxParentalRating != nil {
		v.Set("maxOfficialRating", strconv.Itoa(*q.MaxParentalRating))
	}
	if q.MinEndDate != nil {
		v.Set("minEndDate", q.MinEndDate.UTC().Format(time.RFC3339))
	}
	if q.MinPremiereDate != nil {
		v.Set("minPremiereDate", q.MinPremiereDate.UTC().Format(time.RFC3339))
	}
	if q.SortRandom {
		v.Set("sortBy", "Random")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}
