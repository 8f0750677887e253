package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrWeatherDisabled    = errors.New("weather service is not configured")
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// Weather icon names understood by the front end
const (
	IconSun       = "sun"
	IconCloudRain = "cloud-rain"
	IconCloud     = "cloud"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Weather is the widget's view of current conditions.
type Weather struct {
	Temperature        float64 `json:"temperature"`
	TemperatureRounded int     `json:"temperature_rounded"`
	Humidity           int     `json:"humidity"`
	Condition          string  `json:"condition"`
	Description        string  `json:"description"`
	Icon               string  `json:"icon"`
}

// openWeatherResponse is the subset of the OpenWeatherMap payload we read.
type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// WeatherService fetches current conditions from OpenWeatherMap. Requests
// are made once; there is no retry and no cache.
type WeatherService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewWeatherService creates a WeatherService. A nil client means
// http.DefaultClient.
func NewWeatherService(client *http.Client, baseURL, apiKey string) *WeatherService {
	if client == nil {
		client = http.DefaultClient
	}
	return &WeatherService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (s *WeatherService) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// Fetch performs a single request for the conditions at coords.
func (s *WeatherService) Fetch(ctx context.Context, coords Coordinates) (*Weather, error) {
	if !s.Enabled() {
		return nil, ErrWeatherDisabled
	}
	if !coords.valid() {
		return nil, ErrInvalidCoordinates
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	w := &Weather{
		Temperature:        payload.Main.Temp,
		TemperatureRounded: int(math.Round(payload.Main.Temp)),
		Humidity:           payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		w.Condition = payload.Weather[0].Main
		w.Description = payload.Weather[0].Description
	}
	w.Icon = ConditionIcon(w.Condition)

	return w, nil
}

// FetchAsync runs Fetch once in the background and calls exactly one of
// onSuccess or onFailure. The request cannot be cancelled once started.
func (s *WeatherService) FetchAsync(coords Coordinates, onSuccess func(*Weather), onFailure func(error)) {
	go func() {
		w, err := s.Fetch(context.Background(), coords)
		if err != nil {
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(w)
		}
	}()
}

// ConditionIcon maps an OpenWeatherMap condition keyword to an icon name.
// Unknown keywords fall back to a generic cloud.
func ConditionIcon(condition string) string {
	switch strings.ToLower(condition) {
	case "clear":
		return IconSun
	case "rain":
		return IconCloudRain
	default:
		return IconCloud
	}
}
