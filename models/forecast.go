package models

// Forecast is one future-time weather prediction point tied to a City.
// Rows are keyed by a storage-assigned surrogate id; (CityID, ForecastAt)
// is unique so re-fetches replace instead of accumulating.
type Forecast struct {
	ID                 int64   `json:"id"`
	CityID             int64   `json:"city_id"`
	ForecastAt         int64   `json:"forecast_at"`
	Temperature        float64 `json:"temperature"`
	FeelsLike          float64 `json:"feels_like"`
	TempMin            float64 `json:"temp_min"`
	TempMax            float64 `json:"temp_max"`
	WeatherMain        string  `json:"weather_main"`
	WeatherDescription string  `json:"weather_description"`
	WeatherIcon        string  `json:"weather_icon"`
	Humidity           int     `json:"humidity"`
	Pressure           int     `json:"pressure"`
	WindSpeed          float64 `json:"wind_speed"`
	WindDegree         int     `json:"wind_degree"`
	Cloudiness         int     `json:"cloudiness"`
	DateText           string  `json:"date_text"`
	LastUpdated        int64   `json:"last_updated"`
}
