package testutils

import (
	"cirrus/internal/geoid"
	"cirrus/models"
)

func CreateTestCity(name string, lat, lon float64) *models.City {
	return &models.City{
		ID:                 geoid.ResolveID(lat, lon),
		Name:               name,
		Country:            "FR",
		Latitude:           lat,
		Longitude:          lon,
		Temperature:        18.5,
		FeelsLike:          17.9,
		TempMin:            18.5,
		TempMax:            18.5,
		WeatherMain:        "Clouds",
		WeatherDescription: "scattered clouds",
		WeatherIcon:        "03d",
		Humidity:           64,
		Pressure:           1015,
		WindSpeed:          3.4,
		WindDegree:         210,
		Cloudiness:         40,
		Sunrise:            1700000000,
		Sunset:             1700035000,
		ObservedAt:         1700010000,
	}
}

func CreateTestForecast(cityID, forecastAt int64, temp float64) *models.Forecast {
	return &models.Forecast{
		CityID:             cityID,
		ForecastAt:         forecastAt,
		Temperature:        temp,
		FeelsLike:          temp - 0.5,
		TempMin:            temp,
		TempMax:            temp,
		WeatherMain:        "Clear",
		WeatherDescription: "clear sky",
		WeatherIcon:        "01d",
		Humidity:           55,
		Pressure:           1018,
		WindSpeed:          2.1,
		WindDegree:         180,
		Cloudiness:         5,
		DateText:           "2023-11-15 12:00:00",
	}
}
