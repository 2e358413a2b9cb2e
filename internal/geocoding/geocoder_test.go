package geocoding

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *GoogleGeocoder {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGoogleGeocoder("test-key", slog.Default())
	g.baseURL = server.URL
	return g
}

func TestGeocode_Hit(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Error("expected address query param")
		}
		w.Write([]byte(`{"status": "OK", "results": [{"geometry": {"location": {"lat": 45.5231, "lng": -122.6765}}}]}`))
	})

	lat, lon, ok := g.Geocode(context.Background(), "123 Main St, Portland OR")
	if !ok {
		t.Fatal("expected geocode hit")
	}
	if lat != 45.5231 || lon != -122.6765 {
		t.Errorf("unexpected coordinates: %v, %v", lat, lon)
	}
}

func TestGeocode_Miss(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "zero results",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGeocoder(t, tt.handler)
			if _, _, ok := g.Geocode(context.Background(), "somewhere"); ok {
				t.Error("expected miss")
			}
		})
	}
}

func TestGeocode_UnconfiguredOrEmpty(t *testing.T) {
	g := NewGoogleGeocoder("", slog.Default())
	if _, _, ok := g.Geocode(context.Background(), "123 Main St"); ok {
		t.Error("expected miss without api key")
	}

	g = newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty address")
	})
	if _, _, ok := g.Geocode(context.Background(), ""); ok {
		t.Error("expected miss for empty address")
	}
}

func TestNoop(t *testing.T) {
	if _, _, ok := (Noop{}).Geocode(context.Background(), "anywhere"); ok {
		t.Error("noop geocoder must always miss")
	}
}
