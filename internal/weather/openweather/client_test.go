package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentBody = `{
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 11.2, "feels_like": 10.4, "humidity": 87, "pressure": 1007},
	"wind": {"speed": 4.6, "deg": 210},
	"dt": 1700000000,
	"sys": {"country": "FR"},
	"name": "Paris"
}`

const forecastBody = `{
	"list": [
		{
			"dt": 1700010800,
			"dt_txt": "2023-11-15 00:00:00",
			"main": {"temp": 9.1, "feels_like": 7.8, "humidity": 90, "pressure": 1009},
			"wind": {"speed": 3.2, "deg": 180},
			"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04n"}]
		},
		{
			"dt": 1700021600,
			"dt_txt": "2023-11-15 03:00:00",
			"main": {"temp": 8.4, "feels_like": 6.9, "humidity": 92, "pressure": 1010},
			"wind": {"speed": 2.9, "deg": 175},
			"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10n"}]
		}
	],
	"city": {"name": "Paris", "country": "FR"}
}`

const alertsBody = `{
	"alerts": [
		{
			"sender_name": "METEO-FRANCE",
			"event": "Moderate wind warning",
			"start": 1700000000,
			"end": 1700086400,
			"description": "Gusts up to 90 km/h expected.",
			"tags": ["Wind"]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), "test-key", srv.URL)
}

func TestCurrent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(currentBody))
	})

	cur, err := client.Current(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, "Paris", cur.PlaceName)
	assert.Equal(t, "FR", cur.Country)
	assert.Equal(t, 11.2, cur.Temperature)
	assert.Equal(t, 10.4, cur.FeelsLike)
	assert.Equal(t, 87.0, cur.Humidity)
	assert.Equal(t, 1007.0, cur.Pressure)
	assert.Equal(t, 4.6, cur.WindSpeed)
	assert.Equal(t, 210.0, cur.WindDeg)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), cur.ObservedAt)
	require.Len(t, cur.Conditions, 1)
	assert.Equal(t, 500, cur.Conditions[0].ID)
	assert.Equal(t, "light rain", cur.Conditions[0].Description)
}

func TestForecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		w.Write([]byte(forecastBody))
	})

	series, err := client.Forecast(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, "Paris", series.City.Name)
	assert.Equal(t, "FR", series.City.Country)
	require.Len(t, series.Entries, 2)
	assert.Equal(t, 9.1, series.Entries[0].Temperature)
	assert.Equal(t, "2023-11-15 00:00:00", series.Entries[0].TimestampText)
	assert.Equal(t, time.Unix(1700021600, 0).UTC(), series.Entries[1].Timestamp)
	assert.True(t, series.Entries[0].Timestamp.Before(series.Entries[1].Timestamp))
}

func TestAlerts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/3.0/onecall", r.URL.Path)
		assert.Equal(t, "current,minutely,hourly,daily", r.URL.Query().Get("exclude"))
		w.Write([]byte(alertsBody))
	})

	alerts, err := client.Alerts(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "METEO-FRANCE", alerts[0].Sender)
	assert.Equal(t, "Moderate wind warning", alerts[0].Event)
	assert.Equal(t, []string{"Wind"}, alerts[0].Tags)
}

func TestAlertsMissingFieldMeansNoneActive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lat": 48.8566, "lon": 2.3522}`))
	})

	alerts, err := client.Alerts(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	// Fetched with no alerts active: empty, not nil.
	require.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestMissingAPIKeyFailsAtCallTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued without an api key")
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "", srv.URL)
	_, err := client.Current(context.Background(), 48.8566, 2.3522)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestCurrentUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Current(context.Background(), 48.8566, 2.3522)
	assert.Error(t, err)
}
