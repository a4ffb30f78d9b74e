package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cirrus/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// CityRepository defines the interface for city operations
type CityRepository interface {
	Repository
	FindByID(ctx context.Context, id int64) (*models.City, error)
	FindByCoordinates(ctx context.Context, lat, lon float64) (*models.City, error)
	FindAll(ctx context.Context) ([]*models.City, error)
	FindFavorites(ctx context.Context) ([]*models.City, error)
	CreateOrUpdate(ctx context.Context, city *models.City) (*models.City, error)
	UpdateFavorite(ctx context.Context, id int64, favorite bool) error
	DeleteByID(ctx context.Context, id int64) error
}

// ForecastRepository defines the interface for forecast operations
type ForecastRepository interface {
	Repository
	FindAllByCityID(ctx context.Context, cityID int64) ([]*models.Forecast, error)
	UpsertMany(ctx context.Context, forecasts []*models.Forecast) error
	DeleteByCityID(ctx context.Context, cityID int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

// EventLogRepository defines the interface for event log operations
type EventLogRepository interface {
	Repository
	Create(ctx context.Context, eventLog *models.EventLog) error
	FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error)
}

// RepositoryFactory creates repositories backed by the shared SQLite handle
type RepositoryFactory struct {
	SQLiteDB *sql.DB
	DBName   string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
		DBName:   dbName,
	}
}

// NewCityRepository creates a new city repository
func (f *RepositoryFactory) NewCityRepository() CityRepository {
	return NewSQLiteCityRepository(f.SQLiteDB)
}

// NewForecastRepository creates a new forecast repository
func (f *RepositoryFactory) NewForecastRepository() ForecastRepository {
	return NewSQLiteForecastRepository(f.SQLiteDB)
}

// NewEventLogRepository creates a new event log repository
func (f *RepositoryFactory) NewEventLogRepository() EventLogRepository {
	return NewSQLiteEventLogRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for an event log record
func GenerateID() string {
	return uuid.New().String()
}
