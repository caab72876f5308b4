package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/turkerssh/next-weather-app/internal/transport"
	"github.com/turkerssh/next-weather-app/internal/weather"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Client fetches current conditions, forecasts, and alerts from
// OpenWeatherMap. The three endpoints are independent calls keyed by
// coordinates.
type Client struct {
	apiKey  string
	baseURL string
	httpCfg transport.Config
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. baseURL may be empty to use the production
// API endpoint.
func NewClient(client *http.Client, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: transport.Config{
			Client:  client,
			Backoff: transport.DefaultBackoff(),
		},
		circuit: transport.NewBreaker("openweather"),
	}
}

// get performs one keyed API call and decodes the JSON body into out.
// A missing API key fails here, at call time, so that a misconfigured
// credential surfaces as a fetch failure rather than a startup failure.
func (c *Client) get(ctx context.Context, path string, lat, lon float64, extra url.Values, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		for k, vs := range extra {
			for _, v := range vs {
				values.Add(k, v)
			}
		}

		u := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := transport.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// measurementsPayload is the measurement shape shared by the current and
// forecast endpoints.
type measurementsPayload struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (p measurementsPayload) toMeasurements() weather.Measurements {
	m := weather.Measurements{
		Temperature: p.Main.Temp,
		FeelsLike:   p.Main.FeelsLike,
		Humidity:    p.Main.Humidity,
		Pressure:    p.Main.Pressure,
		WindSpeed:   p.Wind.Speed,
		WindDeg:     p.Wind.Deg,
	}
	for _, w := range p.Weather {
		m.Conditions = append(m.Conditions, weather.ConditionDescriptor{
			ID:          w.ID,
			Main:        w.Main,
			Description: w.Description,
			Icon:        w.Icon,
		})
	}
	return m
}

// Current fetches the current conditions for a coordinate pair.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*weather.CurrentConditions, error) {
	var payload struct {
		measurementsPayload
		Dt  int64 `json:"dt"`
		Sys struct {
			Country string `json:"country"`
		} `json:"sys"`
		Name string `json:"name"`
	}

	if err := c.get(ctx, "/data/2.5/weather", lat, lon, nil, &payload); err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}

	observed := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		observed = time.Now().UTC()
	}

	return &weather.CurrentConditions{
		Measurements: payload.toMeasurements(),
		PlaceName:    payload.Name,
		Country:      payload.Sys.Country,
		ObservedAt:   observed,
	}, nil
}

// Forecast fetches the 3-hour-step forecast for a coordinate pair.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*weather.ForecastSeries, error) {
	var payload struct {
		List []struct {
			measurementsPayload
			Dt    int64  `json:"dt"`
			DtTxt string `json:"dt_txt"`
		} `json:"list"`
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
	}

	if err := c.get(ctx, "/data/2.5/forecast", lat, lon, nil, &payload); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	series := &weather.ForecastSeries{
		City: weather.CityInfo{
			Name:    payload.City.Name,
			Country: payload.City.Country,
		},
		Entries: make([]weather.ForecastEntry, 0, len(payload.List)),
	}

	for _, item := range payload.List {
		series.Entries = append(series.Entries, weather.ForecastEntry{
			Measurements:  item.toMeasurements(),
			Timestamp:     time.Unix(item.Dt, 0).UTC(),
			TimestampText: item.DtTxt,
		})
	}

	return series, nil
}

// Alerts fetches the active alerts for a coordinate pair. It always returns
// a non-nil slice on success: an absent alerts field in the response means
// no alerts are active.
func (c *Client) Alerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error) {
	var payload struct {
		Alerts []struct {
			SenderName  string   `json:"sender_name"`
			Event       string   `json:"event"`
			Start       int64    `json:"start"`
			End         int64    `json:"end"`
			Description string   `json:"description"`
			Tags        []string `json:"tags"`
		} `json:"alerts"`
	}

	extra := url.Values{}
	extra.Set("exclude", "current,minutely,hourly,daily")

	if err := c.get(ctx, "/data/3.0/onecall", lat, lon, extra, &payload); err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}

	alerts := make([]weather.Alert, 0, len(payload.Alerts))
	for _, a := range payload.Alerts {
		alerts = append(alerts, weather.Alert{
			Sender:      a.SenderName,
			Event:       a.Event,
			Start:       a.Start,
			End:         a.End,
			Description: a.Description,
			Tags:        a.Tags,
		})
	}

	return alerts, nil
}
