package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationKey(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{
			name: "paris",
			loc:  Location{Lat: 48.8566, Lon: 2.3522},
			want: "48.8566,2.3522",
		},
		{
			name: "extra precision is rounded away",
			loc:  Location{Lat: 48.85664999, Lon: 2.35221111},
			want: "48.8566,2.3522",
		},
		{
			name: "negative coordinates",
			loc:  Location{Lat: -33.8688, Lon: -151.2093},
			want: "-33.8688,-151.2093",
		},
		{
			name: "short precision is padded",
			loc:  Location{Lat: 51.5, Lon: 0},
			want: "51.5000,0.0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.Key())
		})
	}
}

func TestLocationSamePoint(t *testing.T) {
	a := Location{Lat: 48.8566, Lon: 2.3522, DisplayName: "Paris"}
	b := Location{Lat: 48.85661, Lon: 2.35219}

	assert.True(t, a.SamePoint(b))
	assert.False(t, a.SamePoint(Location{Lat: 48.8567, Lon: 2.3522}))
}
