package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Geocoder converts a street address to coordinates. A miss (no result,
// upstream failure, unconfigured key) is reported through ok=false, never an
// error: geocoding is best-effort everywhere it is used.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, ok bool)
}

const defaultGoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder resolves addresses through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGoogleGeocoder creates a Google Maps backed geocoder.
func NewGoogleGeocoder(apiKey string, logger *slog.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:  apiKey,
		baseURL: defaultGoogleGeocodeURL,
		logger:  logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// Geocode resolves an address, returning ok=false on any failure.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool) {
	if g.apiKey == "" || address == "" {
		return 0, 0, false
	}

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, url.Values{
		"address": []string{address},
		"key":     []string{g.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, 0, false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("geocode request failed", "error", err)
		return 0, 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("geocode unexpected status", "status", resp.StatusCode)
		return 0, 0, false
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.logger.Warn("geocode malformed payload", "error", err)
		return 0, 0, false
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		g.logger.Debug("geocode miss", "address", address, "status", payload.Status)
		return 0, 0, false
	}

	loc := payload.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, true
}

// Noop is a geocoder that always misses, used when no API key is configured.
type Noop struct{}

// Geocode always reports a miss.
func (Noop) Geocode(ctx context.Context, address string) (float64, float64, bool) {
	return 0, 0, false
}
