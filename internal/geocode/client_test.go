package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Write([]byte(`[
			{"lat": "48.8588897", "lon": "2.3200410", "display_name": "Paris, Île-de-France, Metropolitan France, France"},
			{"lat": "33.6617962", "lon": "-95.5555130", "display_name": "Paris, Lamar County, Texas, United States"}
		]`))
	})

	candidates, err := client.Search(context.Background(), "Paris")
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.InDelta(t, 48.8588897, candidates[0].Lat, 1e-9)
	assert.InDelta(t, 2.3200410, candidates[0].Lon, 1e-9)
	assert.Equal(t, "Paris, Île-de-France, Metropolitan France, France", candidates[0].DisplayName)
}

func TestSearchNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.Search(context.Background(), "zzzzzz nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchInvalidCoordinate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "not-a-number", "lon": "2.32", "display_name": "Broken"}]`))
	})

	_, err := client.Search(context.Background(), "Paris")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSearchTransportFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "Paris")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
