package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Println("Connected to SQLite database")
	return db, nil
}

// InitializeSchema creates all the necessary tables if they don't exist
func InitializeSchema(db *sql.DB) error {
	// Create cities table. The id is derived from coordinates, not assigned
	// by the store, so INTEGER PRIMARY KEY without AUTOINCREMENT.
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		country TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		temperature REAL NOT NULL,
		feels_like REAL NOT NULL,
		temp_min REAL NOT NULL,
		temp_max REAL NOT NULL,
		weather_main TEXT NOT NULL,
		weather_description TEXT NOT NULL,
		weather_icon TEXT NOT NULL,
		humidity INTEGER NOT NULL,
		pressure INTEGER NOT NULL,
		wind_speed REAL NOT NULL,
		wind_degree INTEGER NOT NULL,
		cloudiness INTEGER NOT NULL,
		sunrise INTEGER NOT NULL,
		sunset INTEGER NOT NULL,
		observed_at INTEGER NOT NULL,
		is_favorite INTEGER NOT NULL DEFAULT 0,
		last_updated INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create cities table: %w", err)
	}

	// Create forecasts table. (city_id, forecast_at) is unique so a re-fetch
	// of the same forecast point replaces the old row instead of piling up.
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS forecasts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		city_id INTEGER NOT NULL,
		forecast_at INTEGER NOT NULL,
		temperature REAL NOT NULL,
		feels_like REAL NOT NULL,
		temp_min REAL NOT NULL,
		temp_max REAL NOT NULL,
		weather_main TEXT NOT NULL,
		weather_description TEXT NOT NULL,
		weather_icon TEXT NOT NULL,
		humidity INTEGER NOT NULL,
		pressure INTEGER NOT NULL,
		wind_speed REAL NOT NULL,
		wind_degree INTEGER NOT NULL,
		cloudiness INTEGER NOT NULL,
		date_text TEXT NOT NULL,
		last_updated INTEGER NOT NULL,
		UNIQUE (city_id, forecast_at),
		FOREIGN KEY (city_id) REFERENCES cities(id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create forecasts table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_forecasts_city_id ON forecasts(city_id)`)
	if err != nil {
		return fmt.Errorf("failed to create forecasts city_id index: %w", err)
	}

	// last_updated index backs the age-based retention sweep
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_forecasts_last_updated ON forecasts(last_updated)`)
	if err != nil {
		return fmt.Errorf("failed to create forecasts last_updated index: %w", err)
	}

	// Create event_logs table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS event_logs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		city_id INTEGER,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create event_logs table: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
