package city

import (
	"time"

	"cirrus/internal/openweather"
	"cirrus/models"
)

const dateTextLayout = "2006-01-02 15:04:05"

func firstCondition(conditions []openweather.Condition) openweather.Condition {
	if len(conditions) == 0 {
		return openweather.Condition{}
	}
	return conditions[0]
}

// buildCity assembles a City record from a One Call response. The current
// conditions feed carries no min/max temperature, so both are pinned to
// the instantaneous value.
func buildCity(id int64, name, country string, lat, lon float64, oc *openweather.OneCallResponse, favorite bool) *models.City {
	current := oc.Current
	cond := firstCondition(current.Weather)

	return &models.City{
		ID:                 id,
		Name:               name,
		Country:            country,
		Latitude:           lat,
		Longitude:          lon,
		Temperature:        current.Temp,
		FeelsLike:          current.FeelsLike,
		TempMin:            current.Temp,
		TempMax:            current.Temp,
		WeatherMain:        cond.Main,
		WeatherDescription: cond.Description,
		WeatherIcon:        cond.Icon,
		Humidity:           current.Humidity,
		Pressure:           current.Pressure,
		WindSpeed:          current.WindSpeed,
		WindDegree:         current.WindDeg,
		Cloudiness:         current.Clouds,
		Sunrise:            current.Sunrise,
		Sunset:             current.Sunset,
		ObservedAt:         current.Dt,
		IsFavorite:         favorite,
	}
}

// hourlyToForecast maps one hourly point. Like the current feed, hourly
// data has no min/max, so both fall back to the instantaneous temperature.
func hourlyToForecast(cityID int64, h openweather.Hourly) *models.Forecast {
	cond := firstCondition(h.Weather)

	return &models.Forecast{
		CityID:             cityID,
		ForecastAt:         h.Dt,
		Temperature:        h.Temp,
		FeelsLike:          h.FeelsLike,
		TempMin:            h.Temp,
		TempMax:            h.Temp,
		WeatherMain:        cond.Main,
		WeatherDescription: cond.Description,
		WeatherIcon:        cond.Icon,
		Humidity:           h.Humidity,
		Pressure:           h.Pressure,
		WindSpeed:          h.WindSpeed,
		WindDegree:         h.WindDeg,
		Cloudiness:         h.Clouds,
		DateText:           time.Unix(h.Dt, 0).UTC().Format(dateTextLayout),
	}
}

// dailyToForecast maps one daily point, the only feed with genuine min/max.
func dailyToForecast(cityID int64, d openweather.Daily) *models.Forecast {
	cond := firstCondition(d.Weather)

	feelsLike := d.Temp.Day
	if d.FeelsLike != nil {
		feelsLike = d.FeelsLike.Day
	}

	return &models.Forecast{
		CityID:             cityID,
		ForecastAt:         d.Dt,
		Temperature:        d.Temp.Day,
		FeelsLike:          feelsLike,
		TempMin:            d.Temp.Min,
		TempMax:            d.Temp.Max,
		WeatherMain:        cond.Main,
		WeatherDescription: cond.Description,
		WeatherIcon:        cond.Icon,
		Humidity:           d.Humidity,
		Pressure:           d.Pressure,
		WindSpeed:          d.WindSpeed,
		WindDegree:         d.WindDeg,
		Cloudiness:         d.Clouds,
		DateText:           time.Unix(d.Dt, 0).UTC().Format(dateTextLayout),
	}
}

// hourlyForecasts maps up to limit hourly points for a city.
func hourlyForecasts(cityID int64, hourly []openweather.Hourly, limit int) []*models.Forecast {
	if len(hourly) > limit {
		hourly = hourly[:limit]
	}
	forecasts := make([]*models.Forecast, 0, len(hourly))
	for _, h := range hourly {
		forecasts = append(forecasts, hourlyToForecast(cityID, h))
	}
	return forecasts
}

// dailyForecasts maps up to limit daily points for a city.
func dailyForecasts(cityID int64, daily []openweather.Daily, limit int) []*models.Forecast {
	if len(daily) > limit {
		daily = daily[:limit]
	}
	forecasts := make([]*models.Forecast, 0, len(daily))
	for _, d := range daily {
		forecasts = append(forecasts, dailyToForecast(cityID, d))
	}
	return forecasts
}
