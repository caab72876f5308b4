// Package refresh owns the location-driven data refresh controller: it
// decides when weather data is fetched, deduplicates redundant fetches for
// an unchanged location, sequences the current/forecast/alerts calls, and
// exposes the resulting state to the presentation layer.
package refresh

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/turkerssh/next-weather-app/internal/geocode"
	"github.com/turkerssh/next-weather-app/internal/weather"
)

// User-facing messages. Upstream error detail goes to the log, never to the
// presentation layer.
const (
	// FetchFailedMessage is surfaced when the current or forecast call fails.
	FetchFailedMessage = "Failed to fetch weather data. Please try again."
	// NotFoundMessage is surfaced when a search resolves to zero candidates
	// or the geocoder is unreachable.
	NotFoundMessage = "Location not found. Please try again."
)

// ErrLocationNotFound is returned by Search when no usable candidate exists.
var ErrLocationNotFound = errors.New("location not found")

// WeatherAPI is the weather data source the controller sequences. The three
// calls are independent and keyed by coordinates.
type WeatherAPI interface {
	Current(ctx context.Context, lat, lon float64) (*weather.CurrentConditions, error)
	Forecast(ctx context.Context, lat, lon float64) (*weather.ForecastSeries, error)
	Alerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error)
}

// Geocoder resolves free-text queries to candidate locations.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Candidate, error)
}

// State is the replace-only snapshot consumed by the presentation layer.
// Data fields are nil until their first successful fetch. Alerts is nil when
// alert state is unknown and empty when none are active; it marshals without
// omitempty so the wire keeps that distinction (null vs []).
type State struct {
	Selected      *weather.Location          `json:"selected,omitempty"`
	Loading       bool                       `json:"loading"`
	LastError     string                     `json:"lastError,omitempty"`
	LastUpdatedAt *time.Time                 `json:"lastUpdatedAt,omitempty"`
	Current       *weather.CurrentConditions `json:"current,omitempty"`
	Forecast      *weather.ForecastSeries    `json:"forecast,omitempty"`
	Alerts        []weather.Alert            `json:"alerts"`
}

// Controller owns the current location and the fetch-cycle state machine.
// All state lives behind one mutex; entry points may be called concurrently
// from HTTP handlers and the auto-refresh scheduler.
type Controller struct {
	weather WeatherAPI
	geo     Geocoder
	log     zerolog.Logger

	mu            sync.Mutex
	selected      *weather.Location
	lastKey       string
	loading       bool
	lastErr       string
	lastUpdatedAt *time.Time
	current       *weather.CurrentConditions
	forecast      *weather.ForecastSeries
	alerts        []weather.Alert
}

// NewController creates a Controller with no selected location.
func NewController(weatherAPI WeatherAPI, geo Geocoder, log zerolog.Logger) *Controller {
	return &Controller{
		weather: weatherAPI,
		geo:     geo,
		log:     log.With().Str("component", "refresh").Logger(),
	}
}

// SelectLocation makes loc the current selection. The visible selection is
// always updated, even when the dedup key matches the last fetched one, so
// the UI reflects the click immediately; network activity happens only for
// a new key.
func (c *Controller) SelectLocation(ctx context.Context, loc weather.Location) {
	key := loc.Key()

	c.mu.Lock()
	sel := loc
	c.selected = &sel

	if key == c.lastKey {
		c.mu.Unlock()
		c.log.Debug().Str("key", key).Msg("location reselected, skipping fetch")
		return
	}

	// Record the key before the fetch starts so rapid reselections of the
	// same point cannot start duplicate cycles.
	c.lastKey = key
	c.mu.Unlock()

	if !c.refresh(ctx, loc) {
		// The in-flight guard suppressed the cycle, so this point was never
		// fetched. Un-mark the key so a later reselect still reaches the
		// network instead of deduplicating against data that does not exist.
		c.mu.Lock()
		if c.lastKey == key {
			c.lastKey = ""
		}
		c.mu.Unlock()
	}
}

// Refresh runs one fetch cycle for loc: current conditions, then forecast,
// then alerts. It is a no-op while another cycle is in flight. A current or
// forecast failure aborts the cycle and leaves previously displayed data
// untouched; an alerts failure only degrades alert state to unknown.
func (c *Controller) Refresh(ctx context.Context, loc weather.Location) {
	c.refresh(ctx, loc)
}

// refresh runs the cycle and reports whether it actually started; false
// means the in-flight guard suppressed it.
func (c *Controller) refresh(ctx context.Context, loc weather.Location) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.log.Debug().Str("key", loc.Key()).Msg("fetch cycle already in flight, skipping")
		return false
	}
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	cur, err := c.weather.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		c.failCycle(loc, err)
		return true
	}

	fc, err := c.weather.Forecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		c.failCycle(loc, err)
		return true
	}

	// Alerts are best-effort: a failure leaves them unknown (nil) without
	// failing the cycle.
	alerts, err := c.weather.Alerts(ctx, loc.Lat, loc.Lon)
	if err != nil {
		c.log.Warn().Err(err).Str("key", loc.Key()).Msg("alerts fetch failed, alert state unknown")
		alerts = nil
	} else if alerts == nil {
		alerts = []weather.Alert{}
	}

	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	// The user may have selected somewhere else while this cycle was
	// resolving. Results for a superseded location are discarded entirely.
	if c.selected == nil || !c.selected.SamePoint(loc) {
		c.log.Debug().Str("key", loc.Key()).Msg("selection changed mid-cycle, discarding results")
		return true
	}

	c.current = cur
	c.forecast = fc
	c.alerts = alerts
	c.lastUpdatedAt = &now

	if cur.PlaceName != "" {
		c.selected.DisplayName = cur.PlaceName
	}

	c.log.Info().
		Str("key", loc.Key()).
		Str("place", cur.PlaceName).
		Int("forecastEntries", len(fc.Entries)).
		Bool("alertsKnown", alerts != nil).
		Msg("fetch cycle completed")
	return true
}

func (c *Controller) failCycle(loc weather.Location, err error) {
	c.log.Error().Err(err).Str("key", loc.Key()).Msg("fetch cycle failed")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = FetchFailedMessage
}

// Search resolves a free-text query and selects the best candidate through
// the same dedup path as a direct map click. The candidate's display name is
// the first comma-delimited segment of its descriptive address.
func (c *Controller) Search(ctx context.Context, query string) error {
	candidates, err := c.geo.Search(ctx, query)
	if err == nil && len(candidates) == 0 {
		err = geocode.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			c.log.Debug().Str("query", query).Msg("no geocoding results")
		} else {
			c.log.Error().Err(err).Str("query", query).Msg("geocoding failed")
		}

		c.mu.Lock()
		c.lastErr = NotFoundMessage
		c.mu.Unlock()
		return ErrLocationNotFound
	}

	best := candidates[0]
	name, _, _ := strings.Cut(best.DisplayName, ",")

	c.SelectLocation(ctx, weather.Location{
		Lat:         best.Lat,
		Lon:         best.Lon,
		DisplayName: strings.TrimSpace(name),
	})
	return nil
}

// ManualRefresh re-runs a fetch cycle for the current selection, bypassing
// the dedup key: explicit refresh intent always reaches the network. It is
// a no-op when no location has ever been selected.
func (c *Controller) ManualRefresh(ctx context.Context) {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return
	}
	loc := *c.selected
	c.mu.Unlock()

	c.Refresh(ctx, loc)
}

// State returns a copy of the controller state for the presentation layer.
// Data payloads are shared immutable snapshots; the selection is copied so
// later display-name reconciliation cannot mutate a handed-out value.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Loading:       c.loading,
		LastError:     c.lastErr,
		LastUpdatedAt: c.lastUpdatedAt,
		Current:       c.current,
		Forecast:      c.forecast,
		Alerts:        c.alerts,
	}
	if c.selected != nil {
		sel := *c.selected
		s.Selected = &sel
	}
	return s
}
