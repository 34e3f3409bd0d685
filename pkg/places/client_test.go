package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailgems/discovery-cli/internal/resilience"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "quiet waterfall hike near portland", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{
			Status: "OK",
			Results: []Result{
				{
					Name:             "Fern Hollow Falls",
					PlaceID:          "ChIJ-fern1",
					Rating:           4.7,
					UserRatingsTotal: 23,
					Geometry:         &Geometry{Location: LatLng{Lat: 45.52, Lng: -122.68}},
					Types:            []string{"park", "point_of_interest"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "quiet waterfall hike near portland")

	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Fern Hollow Falls", resp.Results[0].Name)
	assert.Equal(t, 23, resp.Results[0].UserRatingsTotal)
	require.NotNil(t, resp.Results[0].Geometry)
	assert.InDelta(t, 45.52, resp.Results[0].Geometry.Location.Lat, 0.001)
}

func TestTextSearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{Status: "ZERO_RESULTS"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "nothing here")

	// A non-OK status is not a transport error; the caller decides.
	require.NoError(t, err)
	assert.Equal(t, "ZERO_RESULTS", resp.Status)
	assert.Empty(t, resp.Results)
}

func TestTextSearch_RateLimited_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, resilience.IsTransient(err), "429 should surface as transient")
}

func TestTextSearch_Forbidden_NotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "test query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.False(t, resilience.IsTransient(err))
}

func TestDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "ChIJ-fern1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "name,reviews,url,formatted_address", r.URL.Query().Get("fields"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(DetailsResponse{
			Status: "OK",
			Result: Detail{
				Name:             "Fern Hollow Falls",
				Reviews:          []Review{{Text: "So peaceful"}, {Text: "Hidden trail behind the lot"}},
				URL:              "https://maps.google.com/?q=45.52,-122.68",
				FormattedAddress: "Fern Hollow Rd, Portland, OR",
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Details(context.Background(), "ChIJ-fern1")

	require.NoError(t, err)
	assert.Equal(t, "Fern Hollow Falls", resp.Result.Name)
	require.Len(t, resp.Result.Reviews, 2)
	assert.Equal(t, "So peaceful", resp.Result.Reviews[0].Text)
	assert.Equal(t, "Fern Hollow Rd, Portland, OR", resp.Result.FormattedAddress)
}

func TestDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(DetailsResponse{Status: "NOT_FOUND"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Details(context.Background(), "ChIJ-gone")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestDetails_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Details(ctx, "ChIJ-fern1")

	assert.Error(t, err)
	assert.Nil(t, resp)
}
