// Package weather fetches forecasts and alerts from the US National
// Weather Service API (api.weather.gov). The API is free and unkeyed but
// requires a User-Agent header and only covers US locations.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// maxBodySize limits response body reads. NWS payloads are small; this
// guards against unexpectedly large responses.
const maxBodySize = 5 * 1024 * 1024

// DefaultBaseURL is the production NWS API root.
const DefaultBaseURL = "https://api.weather.gov"

// Client talks to the NWS API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a weather client. Empty arguments fall back to the
// production base URL and a generic User-Agent.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "webpilot-weather/1.0"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Conditions describes the forecast for a single period at a location.
type Conditions struct {
	City        string  `json:"city,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Period      string  `json:"period,omitempty"`
	Temperature int     `json:"temperature"`
	Unit        string  `json:"unit"`
	Condition   string  `json:"condition"`
}

// Alert describes one active weather alert.
type Alert struct {
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

// pointsResponse is the subset of /points/{lat},{lon} we use.
type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

// forecastResponse is the subset of a forecast document we use.
type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name            string `json:"name"`
			Temperature     int    `json:"temperature"`
			TemperatureUnit string `json:"temperatureUnit"`
			ShortForecast   string `json:"shortForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

// alertsResponse is the subset of /alerts/active we use.
type alertsResponse struct {
	Features []struct {
		Properties struct {
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
		} `json:"properties"`
	} `json:"features"`
}

// get fetches a URL and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// forecastPeriods resolves a coordinate to its forecast periods via the
// points endpoint, which maps coordinates to a gridded forecast URL.
func (c *Client) forecastPeriods(ctx context.Context, lat, lon float64) (*forecastResponse, error) {
	var points pointsResponse
	pointsURL := fmt.Sprintf("%s/points/%g,%g", c.baseURL, lat, lon)
	if err := c.get(ctx, pointsURL, &points); err != nil {
		return nil, err
	}

	if points.Properties.Forecast == "" {
		return nil, fmt.Errorf("no forecast available for %g,%g (outside NWS coverage?)", lat, lon)
	}

	var forecast forecastResponse
	if err := c.get(ctx, points.Properties.Forecast, &forecast); err != nil {
		return nil, err
	}

	if len(forecast.Properties.Periods) == 0 {
		return nil, fmt.Errorf("forecast for %g,%g contains no periods", lat, lon)
	}

	return &forecast, nil
}

// Current returns the current conditions (the first forecast period) for a
// US coordinate. The city name, when given, is echoed back for reference.
func (c *Client) Current(ctx context.Context, lat, lon float64, city string) (*Conditions, error) {
	forecast, err := c.forecastPeriods(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	period := forecast.Properties.Periods[0]
	return &Conditions{
		City:        city,
		Lat:         lat,
		Lon:         lon,
		Period:      period.Name,
		Temperature: period.Temperature,
		Unit:        period.TemperatureUnit,
		Condition:   period.ShortForecast,
	}, nil
}

// Forecast returns up to maxPeriods forecast periods for a US coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, maxPeriods int) ([]Conditions, error) {
	if maxPeriods < 1 {
		maxPeriods = 1
	}

	forecast, err := c.forecastPeriods(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	periods := forecast.Properties.Periods
	if len(periods) > maxPeriods {
		periods = periods[:maxPeriods]
	}

	conditions := make([]Conditions, 0, len(periods))
	for _, period := range periods {
		conditions = append(conditions, Conditions{
			Lat:         lat,
			Lon:         lon,
			Period:      period.Name,
			Temperature: period.Temperature,
			Unit:        period.TemperatureUnit,
			Condition:   period.ShortForecast,
		})
	}

	return conditions, nil
}

var statePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Alerts returns active weather alerts for a two-letter US state code.
func (c *Client) Alerts(ctx context.Context, state string) ([]Alert, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if !statePattern.MatchString(state) {
		return nil, fmt.Errorf("invalid state code %q (must be a two-letter US state abbreviation, e.g. 'CA')", state)
	}

	var response alertsResponse
	url := fmt.Sprintf("%s/alerts/active?area=%s", c.baseURL, state)
	if err := c.get(ctx, url, &response); err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, len(response.Features))
	for _, feature := range response.Features {
		alerts = append(alerts, Alert{
			Event:       feature.Properties.Event,
			Headline:    feature.Properties.Headline,
			Description: feature.Properties.Description,
		})
	}

	return alerts, nil
}
