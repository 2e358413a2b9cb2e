package instagram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ScraperClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewScraperClient("test-key", slog.Default())
	client.baseURL = server.URL

	return client, server
}

func TestFetchPostsByHashtag_CaseInsensitiveMatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "1", "caption": "Come see us! #PopMap", "display_url": "https://cdn.example.com/1.jpg", "taken_at_timestamp": 1700000000, "shortcode": "abc"},
			{"id": "2", "caption": "No tag here", "taken_at_timestamp": 1699990000, "shortcode": "def"},
			{"id": "3", "caption": "weekend market #POPMAP #sale", "taken_at_timestamp": 1699980000, "shortcode": "ghi"}
		]}`))
	})

	posts, err := client.FetchPostsByHashtag(context.Background(), "testbakery", "popmap", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected 2 matching posts, got %d", len(posts))
	}

	// Upstream order preserved, most recent first
	if posts[0].ExternalID != "1" || posts[1].ExternalID != "3" {
		t.Errorf("unexpected order: %s, %s", posts[0].ExternalID, posts[1].ExternalID)
	}

	if posts[0].Permalink != "https://www.instagram.com/p/abc/" {
		t.Errorf("unexpected permalink: %s", posts[0].Permalink)
	}
	if posts[0].Username != "testbakery" {
		t.Errorf("unexpected username: %s", posts[0].Username)
	}
}

func TestFetchPostsByHashtag_Limit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": "1", "caption": "#popmap one", "shortcode": "a"},
			{"id": "2", "caption": "#popmap two", "shortcode": "b"},
			{"id": "3", "caption": "#popmap three", "shortcode": "c"}
		]}`))
	})

	posts, err := client.FetchPostsByHashtag(context.Background(), "biz", "popmap", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(posts))
	}
}

func TestFetchPostsByHashtag_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "account not found", status: http.StatusNotFound, wantErr: ErrAccountNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.FetchPostsByHashtag(context.Background(), "biz", "popmap", 20)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchPostsByHashtag_MalformedPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [truncated`))
	})

	_, err := client.FetchPostsByHashtag(context.Background(), "biz", "popmap", 20)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable for malformed payload, got %v", err)
	}
}

func TestFetchPostsByHashtag_MissingCredential(t *testing.T) {
	client := NewScraperClient("", slog.Default())

	// Must fail before any network call
	client.baseURL = "http://127.0.0.1:1"

	_, err := client.FetchPostsByHashtag(context.Background(), "biz", "popmap", 20)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable for missing credential, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if !client.HealthCheck(context.Background()) {
		t.Error("expected healthy")
	}

	client.apiKey = ""
	if client.HealthCheck(context.Background()) {
		t.Error("expected unhealthy without credential")
	}
}

func TestScraperSendsAPIHeaders(t *testing.T) {
	var gotKey string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-RapidAPI-Key")
		w.Write([]byte(`{"data": []}`))
	})

	if _, err := client.FetchPostsByHashtag(context.Background(), "biz", "popmap", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
}
