package testutils

import (
	"context"
	"sync"

	"cirrus/internal/openweather"
)

// FakeWeatherClient is an in-memory openweather.Client for tests. Each
// endpoint returns the configured value, or the configured error, and
// every call is recorded.
type FakeWeatherClient struct {
	mu sync.Mutex

	GeocodeResults        []openweather.GeoResult
	GeocodeErr            error
	ReverseGeocodeResults []openweather.GeoResult
	ReverseGeocodeErr     error

	// OneCallFunc, when set, takes precedence over OneCallResponse.
	OneCallFunc     func(lat, lon float64) (*openweather.OneCallResponse, error)
	OneCallResponse *openweather.OneCallResponse
	OneCallErr      error

	GeocodeCalls        []string
	ReverseGeocodeCalls [][2]float64
	OneCallCalls        [][2]float64
}

var _ openweather.Client = (*FakeWeatherClient)(nil)

func (f *FakeWeatherClient) Geocode(ctx context.Context, query string, limit int) ([]openweather.GeoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GeocodeCalls = append(f.GeocodeCalls, query)
	if f.GeocodeErr != nil {
		return nil, f.GeocodeErr
	}
	return f.GeocodeResults, nil
}

func (f *FakeWeatherClient) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]openweather.GeoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReverseGeocodeCalls = append(f.ReverseGeocodeCalls, [2]float64{lat, lon})
	if f.ReverseGeocodeErr != nil {
		return nil, f.ReverseGeocodeErr
	}
	return f.ReverseGeocodeResults, nil
}

func (f *FakeWeatherClient) OneCall(ctx context.Context, lat, lon float64) (*openweather.OneCallResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OneCallCalls = append(f.OneCallCalls, [2]float64{lat, lon})
	if f.OneCallFunc != nil {
		return f.OneCallFunc(lat, lon)
	}
	if f.OneCallErr != nil {
		return nil, f.OneCallErr
	}
	return f.OneCallResponse, nil
}

// OneCallFor builds a plausible One Call response for the coordinates,
// with hourly and daily points attached.
func OneCallFor(lat, lon float64, temp float64, hourly, daily int) *openweather.OneCallResponse {
	resp := &openweather.OneCallResponse{
		Lat:      lat,
		Lon:      lon,
		Timezone: "Etc/UTC",
		Current: openweather.Current{
			Dt:        1700010000,
			Sunrise:   1700000000,
			Sunset:    1700035000,
			Temp:      temp,
			FeelsLike: temp - 1,
			Humidity:  60,
			Pressure:  1012,
			Clouds:    20,
			WindSpeed: 4.2,
			WindDeg:   200,
			Weather: []openweather.Condition{
				{ID: 801, Main: "Clouds", Description: "few clouds", Icon: "02d"},
			},
		},
	}

	for i := 0; i < hourly; i++ {
		resp.Hourly = append(resp.Hourly, openweather.Hourly{
			Dt:        1700010000 + int64(i+1)*3600,
			Temp:      temp + float64(i),
			FeelsLike: temp + float64(i) - 1,
			Humidity:  60,
			Pressure:  1012,
			Clouds:    20,
			WindSpeed: 4.2,
			WindDeg:   200,
			Weather: []openweather.Condition{
				{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"},
			},
		})
	}

	for i := 0; i < daily; i++ {
		resp.Daily = append(resp.Daily, openweather.Daily{
			Dt: 1700010000 + int64(i+1)*86400,
			Temp: openweather.DailyTemp{
				Day: temp + 2,
				Min: temp - 3,
				Max: temp + 5,
			},
			FeelsLike: &openweather.DailyFeelsLike{Day: temp + 1},
			Humidity:  58,
			Pressure:  1010,
			Clouds:    30,
			WindSpeed: 5.0,
			WindDeg:   190,
			Weather: []openweather.Condition{
				{ID: 500, Main: "Rain", Description: "light rain", Icon: "10d"},
			},
		})
	}

	return resp
}
