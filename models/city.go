package models

// City represents a tracked geographic place together with its latest
// known weather snapshot. The ID is derived deterministically from the
// coordinates, so the same physical place always maps to the same row.
type City struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Country            string  `json:"country"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
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
	Sunrise            int64   `json:"sunrise"`
	Sunset             int64   `json:"sunset"`
	ObservedAt         int64   `json:"observed_at"`
	IsFavorite         bool    `json:"is_favorite"`
	LastUpdated        int64   `json:"last_updated"`
}
