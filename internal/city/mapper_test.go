package city

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cirrus/internal/openweather"
)

func onecallFixture() *openweather.OneCallResponse {
	return &openweather.OneCallResponse{
		Lat: 48.8566,
		Lon: 2.3522,
		Current: openweather.Current{
			Dt:        1700010000,
			Sunrise:   1700000000,
			Sunset:    1700035000,
			Temp:      18.5,
			FeelsLike: 17.2,
			Pressure:  1015,
			Humidity:  64,
			Clouds:    40,
			WindSpeed: 3.4,
			WindDeg:   210,
			Weather: []openweather.Condition{
				{ID: 802, Main: "Clouds", Description: "scattered clouds", Icon: "03d"},
			},
		},
	}
}

func TestBuildCityPinsMinMaxToCurrentTemp(t *testing.T) {
	oc := onecallFixture()
	city := buildCity(42, "Paris", "FR", 48.8566, 2.3522, oc, true)

	assert.Equal(t, int64(42), city.ID)
	assert.Equal(t, "Paris", city.Name)
	assert.Equal(t, "FR", city.Country)
	assert.Equal(t, 18.5, city.Temperature)
	assert.Equal(t, 18.5, city.TempMin)
	assert.Equal(t, 18.5, city.TempMax)
	assert.Equal(t, "Clouds", city.WeatherMain)
	assert.Equal(t, "scattered clouds", city.WeatherDescription)
	assert.Equal(t, "03d", city.WeatherIcon)
	assert.Equal(t, int64(1700010000), city.ObservedAt)
	assert.True(t, city.IsFavorite)
}

func TestBuildCityWithoutConditions(t *testing.T) {
	oc := onecallFixture()
	oc.Current.Weather = nil

	city := buildCity(1, "Paris", "FR", 48.8566, 2.3522, oc, false)
	assert.Empty(t, city.WeatherMain)
	assert.Empty(t, city.WeatherIcon)
}

func TestHourlyToForecastPinsMinMax(t *testing.T) {
	h := openweather.Hourly{
		Dt:        1700013600,
		Temp:      12.3,
		FeelsLike: 11.0,
		Weather: []openweather.Condition{
			{Main: "Rain", Description: "light rain", Icon: "10d"},
		},
	}

	f := hourlyToForecast(7, h)
	assert.Equal(t, int64(7), f.CityID)
	assert.Equal(t, 12.3, f.TempMin)
	assert.Equal(t, 12.3, f.TempMax)
	assert.Equal(t, "2023-11-15 02:00:00", f.DateText)
}

func TestDailyToForecastKeepsRealMinMax(t *testing.T) {
	d := openweather.Daily{
		Dt:        1700096400,
		Temp:      openweather.DailyTemp{Day: 15.0, Min: 8.5, Max: 19.2},
		FeelsLike: &openweather.DailyFeelsLike{Day: 14.1},
	}

	f := dailyToForecast(7, d)
	assert.Equal(t, 15.0, f.Temperature)
	assert.Equal(t, 8.5, f.TempMin)
	assert.Equal(t, 19.2, f.TempMax)
	assert.Equal(t, 14.1, f.FeelsLike)
}

func TestDailyToForecastFeelsLikeFallsBackToDayTemp(t *testing.T) {
	d := openweather.Daily{
		Dt:   1700096400,
		Temp: openweather.DailyTemp{Day: 15.0, Min: 8.5, Max: 19.2},
	}

	f := dailyToForecast(7, d)
	assert.Equal(t, 15.0, f.FeelsLike)
}

func TestForecastMappingHonorsLimits(t *testing.T) {
	hourly := make([]openweather.Hourly, 48)
	for i := range hourly {
		hourly[i] = openweather.Hourly{Dt: int64(i)}
	}
	daily := make([]openweather.Daily, 10)
	for i := range daily {
		daily[i] = openweather.Daily{Dt: int64(i)}
	}

	assert.Len(t, hourlyForecasts(1, hourly, 24), 24)
	assert.Len(t, dailyForecasts(1, daily, 8), 8)
	assert.Len(t, hourlyForecasts(1, hourly[:3], 24), 3)
}
