package models

import "time"

type EventLogType string

const (
	CityAdded         EventLogType = "city_added"
	CityDeleted       EventLogType = "city_deleted"
	WeatherRefreshed  EventLogType = "weather_refreshed"
	ForecastRefreshed EventLogType = "forecast_refreshed"
	RefreshFailed     EventLogType = "refresh_failed"
	FavoriteChanged   EventLogType = "favorite_changed"
)

// EventLog is a diagnostics trail entry describing one engine-level action.
type EventLog struct {
	ID          string       `json:"id"`
	Type        EventLogType `json:"type"`
	Description string       `json:"description"`
	CityID      *int64       `json:"city_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
