package openweather

// GeoResult is one candidate match from the geocoding endpoints.
type GeoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// Condition is one reported weather condition.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Current is the instantaneous conditions block of a One Call response.
type Current struct {
	Dt        int64       `json:"dt"`
	Sunrise   int64       `json:"sunrise,omitempty"`
	Sunset    int64       `json:"sunset,omitempty"`
	Temp      float64     `json:"temp"`
	FeelsLike float64     `json:"feels_like"`
	Pressure  int         `json:"pressure"`
	Humidity  int         `json:"humidity"`
	Clouds    int         `json:"clouds"`
	WindSpeed float64     `json:"wind_speed"`
	WindDeg   int         `json:"wind_deg"`
	Weather   []Condition `json:"weather"`
}

// Hourly is one hourly forecast point. It carries no min/max temperature.
type Hourly struct {
	Dt        int64       `json:"dt"`
	Temp      float64     `json:"temp"`
	FeelsLike float64     `json:"feels_like"`
	Pressure  int         `json:"pressure"`
	Humidity  int         `json:"humidity"`
	Clouds    int         `json:"clouds"`
	WindSpeed float64     `json:"wind_speed"`
	WindDeg   int         `json:"wind_deg"`
	Weather   []Condition `json:"weather"`
}

// DailyTemp is the per-day temperature spread of a daily forecast point.
type DailyTemp struct {
	Day float64 `json:"day"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DailyFeelsLike mirrors DailyTemp for perceived temperature.
type DailyFeelsLike struct {
	Day float64 `json:"day"`
}

// Daily is one daily forecast point, the only feed with genuine min/max.
type Daily struct {
	Dt        int64           `json:"dt"`
	Sunrise   int64           `json:"sunrise"`
	Sunset    int64           `json:"sunset"`
	Temp      DailyTemp       `json:"temp"`
	FeelsLike *DailyFeelsLike `json:"feels_like,omitempty"`
	Pressure  int             `json:"pressure"`
	Humidity  int             `json:"humidity"`
	Clouds    int             `json:"clouds"`
	WindSpeed float64         `json:"wind_speed"`
	WindDeg   int             `json:"wind_deg"`
	Weather   []Condition     `json:"weather"`
}

// OneCallResponse is the combined current/hourly/daily payload. Current is
// always present; hourly and daily may be missing.
type OneCallResponse struct {
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Timezone       string   `json:"timezone"`
	TimezoneOffset int      `json:"timezone_offset"`
	Current        Current  `json:"current"`
	Hourly         []Hourly `json:"hourly,omitempty"`
	Daily          []Daily  `json:"daily,omitempty"`
}
