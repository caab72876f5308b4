package weather

import (
	"fmt"
	"time"
)

// Location identifies a point on the map the user has selected, either by
// clicking or via a geocoded search result.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName,omitempty"`
}

// Key returns the canonical dedup key for this location: both coordinates
// rounded to 4 decimal places (roughly 11m resolution). Two selections with
// the same key are treated as the same place.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// SamePoint reports whether two locations refer to the same place at dedup
// precision, ignoring display names.
func (l Location) SamePoint(other Location) bool {
	return l.Key() == other.Key()
}

// ConditionDescriptor is one weather condition entry as reported by the
// upstream API (e.g. id 500, "Rain", "light rain", icon "10d").
type ConditionDescriptor struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Measurements is the shared shape of current and forecast data points.
type Measurements struct {
	Temperature float64 `json:"temperature"` // Celsius
	FeelsLike   float64 `json:"feelsLike"`   // Celsius
	Humidity    float64 `json:"humidity"`    // percent
	Pressure    float64 `json:"pressure"`    // hPa
	WindSpeed   float64 `json:"windSpeed"`   // m/s
	WindDeg     float64 `json:"windDeg"`     // degrees

	Conditions []ConditionDescriptor `json:"conditions"`
}

// CurrentConditions is the current-weather payload for a location.
// Immutable once fetched; replaced wholesale on the next fetch cycle.
type CurrentConditions struct {
	Measurements

	PlaceName  string    `json:"placeName"`
	Country    string    `json:"country"`
	ObservedAt time.Time `json:"observedAt"` // always UTC
}

// ForecastEntry is one 3-hour forecast step.
type ForecastEntry struct {
	Measurements

	Timestamp     time.Time `json:"timestamp"` // always UTC
	TimestampText string    `json:"timestampText"`
}

// CityInfo is the city metadata attached to a forecast response.
type CityInfo struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ForecastSeries is an ordered sequence of 3-hour steps plus city metadata.
// Immutable once fetched; replaced wholesale on the next fetch cycle.
type ForecastSeries struct {
	City    CityInfo        `json:"city"`
	Entries []ForecastEntry `json:"entries"`
}

// Alert is one active government weather alert.
//
// A nil []Alert means alerts were not fetched (or the fetch failed) and
// their state is unknown; an empty non-nil slice means the fetch succeeded
// and no alerts are active. Consumers must preserve that distinction.
type Alert struct {
	Sender      string   `json:"sender"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"` // epoch seconds
	End         int64    `json:"end"`   // epoch seconds
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
