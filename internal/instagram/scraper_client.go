package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultScraperBaseURL = "https://instagram-scraper-api2.p.rapidapi.com"

// ScraperClient fetches posts through the RapidAPI Instagram scraper. The
// free tier is enough for the import pipeline's bounded fetches; the official
// Graph API can replace it behind the Client interface later.
type ScraperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewScraperClient creates a scraper-backed Instagram client.
func NewScraperClient(apiKey string, logger *slog.Logger) *ScraperClient {
	return &ScraperClient{
		apiKey:  apiKey,
		baseURL: defaultScraperBaseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// scraperPost mirrors the subset of the scraper payload the pipeline needs.
type scraperPost struct {
	ID         string `json:"id"`
	Caption    string `json:"caption"`
	DisplayURL string `json:"display_url"`
	TakenAt    int64  `json:"taken_at_timestamp"`
	Shortcode  string `json:"shortcode"`
}

type scraperResponse struct {
	Data []scraperPost `json:"data"`
}

// FetchPostsByHashtag fetches the account's recent posts and keeps those
// whose caption contains #hashtag, case-insensitively, preserving upstream
// order. A missing credential fails fast before any network call.
func (c *ScraperClient) FetchPostsByHashtag(ctx context.Context, handle, hashtag string, limit int) ([]SourcePost, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: RAPIDAPI_KEY not configured", ErrServiceUnavailable)
	}

	c.logger.Info("fetching instagram posts", "handle", handle, "hashtag", hashtag, "limit", limit)

	reqURL := fmt.Sprintf("%s/v1/posts?%s", c.baseURL, url.Values{
		"username_or_id_or_url": []string{handle},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: upstream throttled request", ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: @%s", ErrAccountNotFound, handle)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var payload scraperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrServiceUnavailable, err)
	}

	posts := filterByHashtag(payload.Data, handle, hashtag, limit)

	c.logger.Info("fetched instagram posts",
		"handle", handle,
		"raw_count", len(payload.Data),
		"matching", len(posts))

	return posts, nil
}

// filterByHashtag keeps posts whose caption contains #hashtag
// (case-insensitive substring match), converting them to SourcePosts in the
// order the upstream returned them, up to limit.
func filterByHashtag(raw []scraperPost, handle, hashtag string, limit int) []SourcePost {
	needle := "#" + strings.ToLower(hashtag)

	posts := make([]SourcePost, 0, limit)
	for _, p := range raw {
		if !strings.Contains(strings.ToLower(p.Caption), needle) {
			continue
		}

		posts = append(posts, SourcePost{
			ExternalID: p.ID,
			Caption:    p.Caption,
			ImageURL:   p.DisplayURL,
			PostedAt:   time.Unix(p.TakenAt, 0).UTC(),
			Permalink:  fmt.Sprintf("https://www.instagram.com/p/%s/", p.Shortcode),
			Username:   handle,
		})

		if len(posts) >= limit {
			break
		}
	}

	return posts
}

// HealthCheck verifies the scraper API is reachable with the configured key.
func (c *ScraperClient) HealthCheck(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reqURL := fmt.Sprintf("%s/v1/info?username_or_id_or_url=instagram", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *ScraperClient) setHeaders(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", strings.TrimPrefix(c.baseURL, "https://"))
}
