package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_OneCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/onecall", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"lat": 48.8566, "lon": 2.3522, "timezone": "Europe/Paris",
			"current": {
				"dt": 1700000000, "sunrise": 1699990000, "sunset": 1700020000,
				"temp": 15.0, "feels_like": 14.2, "pressure": 1012, "humidity": 70,
				"clouds": 40, "wind_speed": 3.6, "wind_deg": 220,
				"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}]
			},
			"hourly": [
				{"dt": 1700003600, "temp": 14.5, "feels_like": 13.8, "pressure": 1012,
				 "humidity": 72, "clouds": 45, "wind_speed": 3.2, "wind_deg": 215,
				 "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}]}
			],
			"daily": [
				{"dt": 1700042400, "sunrise": 1700030000, "sunset": 1700060000,
				 "temp": {"day": 13.0, "min": 8.5, "max": 15.5},
				 "feels_like": {"day": 12.1}, "pressure": 1010, "humidity": 75,
				 "clouds": 60, "wind_speed": 4.1, "wind_deg": 230,
				 "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}]}
			]
		}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "test-key", server.URL, server.URL)

	resp, err := client.OneCall(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, 15.0, resp.Current.Temp)
	assert.Equal(t, int64(1699990000), resp.Current.Sunrise)
	assert.Equal(t, "Clouds", resp.Current.Weather[0].Main)
	require.Len(t, resp.Hourly, 1)
	assert.Equal(t, 14.5, resp.Hourly[0].Temp)
	require.Len(t, resp.Daily, 1)
	assert.Equal(t, 8.5, resp.Daily[0].Temp.Min)
	assert.Equal(t, 15.5, resp.Daily[0].Temp.Max)
	assert.Equal(t, 12.1, resp.Daily[0].FeelsLike.Day)
}

func TestHTTPClient_Geocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/direct", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "Paris", "lat": 48.8566, "lon": 2.3522, "country": "FR"}]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "test-key", server.URL, server.URL)

	results, err := client.Geocode(context.Background(), "Paris", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Paris", results[0].Name)
	assert.Equal(t, "FR", results[0].Country)
}

func TestHTTPClient_GeocodeNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "test-key", server.URL, server.URL)

	results, err := client.Geocode(context.Background(), "Nowhereville", 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHTTPClient_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "London", "lat": 51.5074, "lon": -0.1278, "country": "GB"}]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "test-key", server.URL, server.URL)

	results, err := client.ReverseGeocode(context.Background(), 51.5074, -0.1278, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "London", results[0].Name)
}

func TestHTTPClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "bad-key", server.URL, server.URL)

	_, err := client.OneCall(context.Background(), 0, 0)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "onecall", statusErr.Endpoint)
}

func TestHTTPClient_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.Client(), "test-key", server.URL, server.URL)

	_, err := client.OneCall(context.Background(), 0, 0)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
