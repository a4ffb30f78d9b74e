package db

import (
	"context"
	"log"
	"time"

	"cirrus/internal/util"
	"cirrus/models"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes mutating access to the database. Each queued
// operation runs alone, which is what gives every upsert its per-call
// atomicity under concurrent refreshes.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := op.Execute()
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation on the worker
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: func() error { return util.RetryOnLock(execute) },
		Result:  resultChan,
	}
	return <-resultChan
}

// ExecuteOperationWithResult executes a database operation that returns a result
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	m.resultOpQueue <- OperationWithResult{
		Execute: func() (interface{}, error) { return util.RetryOnLockWithResult(execute) },
		Result:  resultChan,
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// CreateOrUpdateCity serializes access to city upserts
func (m *DBManager) CreateOrUpdateCity(repo CityRepository, ctx context.Context, city *models.City) (*models.City, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.CreateOrUpdate(ctx, city)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.City), nil
}

// UpdateCityFavorite serializes access to favorite flag updates
func (m *DBManager) UpdateCityFavorite(repo CityRepository, ctx context.Context, id int64, favorite bool) error {
	return m.ExecuteOperation(func() error {
		return repo.UpdateFavorite(ctx, id, favorite)
	})
}

// DeleteCity serializes access to city deletion
func (m *DBManager) DeleteCity(repo CityRepository, ctx context.Context, id int64) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteByID(ctx, id)
	})
}

// UpsertForecasts serializes access to forecast upserts
func (m *DBManager) UpsertForecasts(repo ForecastRepository, ctx context.Context, forecasts []*models.Forecast) error {
	return m.ExecuteOperation(func() error {
		return repo.UpsertMany(ctx, forecasts)
	})
}

// DeleteForecastsForCity serializes access to forecast wipes
func (m *DBManager) DeleteForecastsForCity(repo ForecastRepository, ctx context.Context, cityID int64) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteByCityID(ctx, cityID)
	})
}

// PruneForecasts serializes access to the age-based retention sweep
func (m *DBManager) PruneForecasts(repo ForecastRepository, ctx context.Context, cutoff time.Time) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteOlderThan(ctx, cutoff)
	})
}

// CreateEventLog serializes access to event log creation
func (m *DBManager) CreateEventLog(repo EventLogRepository, ctx context.Context, eventLog *models.EventLog) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, eventLog)
	})
}
