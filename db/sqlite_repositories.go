package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cirrus/models"
)

const cityColumns = `id, name, country, latitude, longitude, temperature, feels_like,
	temp_min, temp_max, weather_main, weather_description, weather_icon,
	humidity, pressure, wind_speed, wind_degree, cloudiness,
	sunrise, sunset, observed_at, is_favorite, last_updated`

// SQLiteCityRepository implements the CityRepository interface for SQLite
type SQLiteCityRepository struct {
	db *sql.DB
}

// NewSQLiteCityRepository creates a new SQLiteCityRepository
func NewSQLiteCityRepository(db *sql.DB) *SQLiteCityRepository {
	return &SQLiteCityRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteCityRepository) Close() error {
	return r.db.Close()
}

func scanCity(row interface{ Scan(...interface{}) error }) (*models.City, error) {
	var city models.City
	err := row.Scan(
		&city.ID, &city.Name, &city.Country, &city.Latitude, &city.Longitude,
		&city.Temperature, &city.FeelsLike, &city.TempMin, &city.TempMax,
		&city.WeatherMain, &city.WeatherDescription, &city.WeatherIcon,
		&city.Humidity, &city.Pressure, &city.WindSpeed, &city.WindDegree,
		&city.Cloudiness, &city.Sunrise, &city.Sunset, &city.ObservedAt,
		&city.IsFavorite, &city.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning city: %w", err)
	}
	return &city, nil
}

// FindByID finds a city by ID
func (r *SQLiteCityRepository) FindByID(ctx context.Context, id int64) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE id = ?`
	return scanCity(r.db.QueryRowContext(ctx, query, id))
}

// FindByCoordinates finds a city whose stored coordinates are within the
// tolerance window of the given pair, treating the two as the same place.
func (r *SQLiteCityRepository) FindByCoordinates(ctx context.Context, lat, lon float64) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities
		WHERE ABS(latitude - ?) < 0.01 AND ABS(longitude - ?) < 0.01
		LIMIT 1`
	return scanCity(r.db.QueryRowContext(ctx, query, lat, lon))
}

func (r *SQLiteCityRepository) queryCities(ctx context.Context, query string, args ...interface{}) ([]*models.City, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cities: %w", err)
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over city rows: %w", err)
	}

	return cities, nil
}

// FindAll finds all cities, favorites first, then by name ascending
func (r *SQLiteCityRepository) FindAll(ctx context.Context) ([]*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities ORDER BY is_favorite DESC, name ASC`
	return r.queryCities(ctx, query)
}

// FindFavorites finds all favorite cities by name ascending
func (r *SQLiteCityRepository) FindFavorites(ctx context.Context) ([]*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE is_favorite = 1 ORDER BY name ASC`
	return r.queryCities(ctx, query)
}

// CreateOrUpdate upserts a city by primary key, replacing every field
func (r *SQLiteCityRepository) CreateOrUpdate(ctx context.Context, city *models.City) (*models.City, error) {
	city.LastUpdated = time.Now().Unix()

	query := `
	INSERT INTO cities (` + cityColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		country = excluded.country,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		temperature = excluded.temperature,
		feels_like = excluded.feels_like,
		temp_min = excluded.temp_min,
		temp_max = excluded.temp_max,
		weather_main = excluded.weather_main,
		weather_description = excluded.weather_description,
		weather_icon = excluded.weather_icon,
		humidity = excluded.humidity,
		pressure = excluded.pressure,
		wind_speed = excluded.wind_speed,
		wind_degree = excluded.wind_degree,
		cloudiness = excluded.cloudiness,
		sunrise = excluded.sunrise,
		sunset = excluded.sunset,
		observed_at = excluded.observed_at,
		is_favorite = excluded.is_favorite,
		last_updated = excluded.last_updated`

	_, err := r.db.ExecContext(ctx, query,
		city.ID, city.Name, city.Country, city.Latitude, city.Longitude,
		city.Temperature, city.FeelsLike, city.TempMin, city.TempMax,
		city.WeatherMain, city.WeatherDescription, city.WeatherIcon,
		city.Humidity, city.Pressure, city.WindSpeed, city.WindDegree,
		city.Cloudiness, city.Sunrise, city.Sunset, city.ObservedAt,
		city.IsFavorite, city.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("error upserting city: %w", err)
	}

	return city, nil
}

// UpdateFavorite sets the favorite flag only, leaving the weather snapshot
// untouched. Unknown ids are a no-op.
func (r *SQLiteCityRepository) UpdateFavorite(ctx context.Context, id int64, favorite bool) error {
	query := `UPDATE cities SET is_favorite = ?, last_updated = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, favorite, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("error updating favorite flag: %w", err)
	}
	return nil
}

// DeleteByID deletes a city and cascades to its forecasts
func (r *SQLiteCityRepository) DeleteByID(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "DELETE FROM forecasts WHERE city_id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting city forecasts: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM cities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting city: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// SQLiteForecastRepository implements the ForecastRepository interface for SQLite
type SQLiteForecastRepository struct {
	db *sql.DB
}

// NewSQLiteForecastRepository creates a new SQLiteForecastRepository
func NewSQLiteForecastRepository(db *sql.DB) *SQLiteForecastRepository {
	return &SQLiteForecastRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteForecastRepository) Close() error {
	return r.db.Close()
}

// FindAllByCityID finds all forecasts for a city ordered by forecast time
func (r *SQLiteForecastRepository) FindAllByCityID(ctx context.Context, cityID int64) ([]*models.Forecast, error) {
	query := `
	SELECT id, city_id, forecast_at, temperature, feels_like, temp_min, temp_max,
	       weather_main, weather_description, weather_icon, humidity, pressure,
	       wind_speed, wind_degree, cloudiness, date_text, last_updated
	FROM forecasts WHERE city_id = ? ORDER BY forecast_at ASC`

	rows, err := r.db.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("error querying forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []*models.Forecast
	for rows.Next() {
		var f models.Forecast
		err := rows.Scan(
			&f.ID, &f.CityID, &f.ForecastAt, &f.Temperature, &f.FeelsLike,
			&f.TempMin, &f.TempMax, &f.WeatherMain, &f.WeatherDescription,
			&f.WeatherIcon, &f.Humidity, &f.Pressure, &f.WindSpeed,
			&f.WindDegree, &f.Cloudiness, &f.DateText, &f.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning forecast: %w", err)
		}
		forecasts = append(forecasts, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over forecast rows: %w", err)
	}

	return forecasts, nil
}

// UpsertMany inserts the forecast points, replacing rows that describe the
// same (city, forecast time) pair
func (r *SQLiteForecastRepository) UpsertMany(ctx context.Context, forecasts []*models.Forecast) error {
	if len(forecasts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO forecasts (city_id, forecast_at, temperature, feels_like, temp_min,
		temp_max, weather_main, weather_description, weather_icon, humidity,
		pressure, wind_speed, wind_degree, cloudiness, date_text, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(city_id, forecast_at) DO UPDATE SET
		temperature = excluded.temperature,
		feels_like = excluded.feels_like,
		temp_min = excluded.temp_min,
		temp_max = excluded.temp_max,
		weather_main = excluded.weather_main,
		weather_description = excluded.weather_description,
		weather_icon = excluded.weather_icon,
		humidity = excluded.humidity,
		pressure = excluded.pressure,
		wind_speed = excluded.wind_speed,
		wind_degree = excluded.wind_degree,
		cloudiness = excluded.cloudiness,
		date_text = excluded.date_text,
		last_updated = excluded.last_updated`

	now := time.Now().Unix()
	for _, f := range forecasts {
		f.LastUpdated = now
		_, err = tx.ExecContext(ctx, query,
			f.CityID, f.ForecastAt, f.Temperature, f.FeelsLike, f.TempMin,
			f.TempMax, f.WeatherMain, f.WeatherDescription, f.WeatherIcon,
			f.Humidity, f.Pressure, f.WindSpeed, f.WindDegree, f.Cloudiness,
			f.DateText, f.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("error upserting forecast: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// DeleteByCityID deletes all forecasts for a city
func (r *SQLiteForecastRepository) DeleteByCityID(ctx context.Context, cityID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM forecasts WHERE city_id = ?", cityID)
	if err != nil {
		return fmt.Errorf("error deleting forecasts: %w", err)
	}
	return nil
}

// DeleteOlderThan prunes forecasts whose last refresh predates the cutoff
func (r *SQLiteForecastRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM forecasts WHERE last_updated < ?", cutoff.Unix())
	if err != nil {
		return fmt.Errorf("error pruning old forecasts: %w", err)
	}
	return nil
}

// SQLiteEventLogRepository implements the EventLogRepository interface for SQLite
type SQLiteEventLogRepository struct {
	db *sql.DB
}

// NewSQLiteEventLogRepository creates a new SQLiteEventLogRepository
func NewSQLiteEventLogRepository(db *sql.DB) *SQLiteEventLogRepository {
	return &SQLiteEventLogRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteEventLogRepository) Close() error {
	return r.db.Close()
}

// Create creates a new event log
func (r *SQLiteEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	if eventLog.ID == "" {
		eventLog.ID = GenerateID()
	}
	if eventLog.CreatedAt.IsZero() {
		eventLog.CreatedAt = time.Now()
	}

	query := `INSERT INTO event_logs (id, type, description, city_id, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		eventLog.ID, eventLog.Type, eventLog.Description, nullableInt64(eventLog.CityID),
		eventLog.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting event log: %w", err)
	}

	return nil
}

// FindLatest finds the latest event logs
func (r *SQLiteEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	query := `SELECT id, type, description, city_id, created_at
			  FROM event_logs ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying event logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.EventLog
	for rows.Next() {
		var entry models.EventLog
		var cityID sql.NullInt64

		err := rows.Scan(&entry.ID, &entry.Type, &entry.Description, &cityID, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning event log: %w", err)
		}

		if cityID.Valid {
			entry.CityID = &cityID.Int64
		}

		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over event log rows: %w", err)
	}

	return logs, nil
}

// Helper for handling nullable values
func nullableInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
