// Package eventlog records a diagnostics trail of engine-level actions.
package eventlog

import (
	"context"
	"log"

	"cirrus/db"
	"cirrus/models"
)

type EventLogService struct {
	repository db.EventLogRepository
	dbManager  *db.DBManager
}

func NewEventLogService(repository db.EventLogRepository, dbManager *db.DBManager) *EventLogService {
	return &EventLogService{
		repository: repository,
		dbManager:  dbManager,
	}
}

// Record writes one event. Failures are logged and swallowed so that a
// broken diagnostics trail never fails the operation it describes.
func (s *EventLogService) Record(eventType models.EventLogType, cityID *int64, description string) {
	entry := &models.EventLog{
		Type:        eventType,
		Description: description,
		CityID:      cityID,
	}

	if err := s.dbManager.CreateEventLog(s.repository, context.Background(), entry); err != nil {
		log.Printf("Failed to record event log (%s): %v", eventType, err)
	}
}

// GetLatest returns the most recent event log entries.
func (s *EventLogService) GetLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	return s.repository.FindLatest(ctx, limit)
}
