// Package city implements the reconciliation engine: it merges freshly
// fetched remote weather into the persisted city set without duplicating
// places or losing user state, and exposes the results as live queries.
package city

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cirrus/db"
	"cirrus/internal/eventlog"
	"cirrus/internal/geoid"
	"cirrus/internal/openweather"
	"cirrus/models"
)

const (
	hourlyForecastLimit = 24
	dailyForecastLimit  = 8

	// idProbeLimit bounds the linear probe used when a resolved id is
	// already taken by a different place.
	idProbeLimit = 16
)

type CityService struct {
	cityRepo     db.CityRepository
	forecastRepo db.ForecastRepository
	remote       openweather.Client
	dbManager    *db.DBManager
	events       *eventlog.EventLogService
	hub          *hub
}

func NewCityService(
	cityRepo db.CityRepository,
	forecastRepo db.ForecastRepository,
	remote openweather.Client,
	dbManager *db.DBManager,
	events *eventlog.EventLogService,
) *CityService {
	return &CityService{
		cityRepo:     cityRepo,
		forecastRepo: forecastRepo,
		remote:       remote,
		dbManager:    dbManager,
		events:       events,
		hub:          newHub(),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}

func (s *CityService) record(eventType models.EventLogType, cityID *int64, description string) {
	if s.events == nil {
		return
	}
	s.events.Record(eventType, cityID, description)
}

// GetCity returns a single city.
func (s *CityService) GetCity(ctx context.Context, id int64) (*models.City, error) {
	found, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFoundf("city %d not found", id)
		}
		return nil, wrapUnknown(err, "loading city")
	}
	return found, nil
}

// GetAllCities returns every tracked city, favorites first then name
// ascending.
func (s *CityService) GetAllCities(ctx context.Context) ([]*models.City, error) {
	cities, err := s.cityRepo.FindAll(ctx)
	if err != nil {
		return nil, wrapUnknown(err, "loading cities")
	}
	return cities, nil
}

// GetFavorites returns the favorite cities by name ascending.
func (s *CityService) GetFavorites(ctx context.Context) ([]*models.City, error) {
	cities, err := s.cityRepo.FindFavorites(ctx)
	if err != nil {
		return nil, wrapUnknown(err, "loading favorite cities")
	}
	return cities, nil
}

// GetForecasts returns a city's forecasts ordered by forecast time.
func (s *CityService) GetForecasts(ctx context.Context, cityID int64) ([]*models.Forecast, error) {
	forecasts, err := s.forecastRepo.FindAllByCityID(ctx, cityID)
	if err != nil {
		return nil, wrapUnknown(err, "loading forecasts")
	}
	return forecasts, nil
}

// AddCityByName resolves a place name through forward geocoding (first
// match wins) and merges the fetched weather into the store.
func (s *CityService) AddCityByName(ctx context.Context, name string) (*models.City, error) {
	results, err := s.remote.Geocode(ctx, name, 1)
	if err != nil {
		return nil, classifyRemote(err, fmt.Sprintf("geocoding %q", name))
	}
	if len(results) == 0 {
		return nil, notFoundf("city not found: %s", name)
	}

	geo := results[0]
	return s.mergeCity(ctx, geo.Name, geo.Country, geo.Lat, geo.Lon)
}

// AddCityByCoordinates reverse-geocodes a display name best-effort and
// merges the fetched weather. When no name can be resolved the city is
// stored under a synthesized "Location (lat, lon)" label.
func (s *CityService) AddCityByCoordinates(ctx context.Context, lat, lon float64) (*models.City, error) {
	name := fmt.Sprintf("Location (%.2f, %.2f)", lat, lon)
	country := ""

	results, err := s.remote.ReverseGeocode(ctx, lat, lon, 1)
	if err != nil {
		log.Printf("Reverse geocoding failed for (%f, %f), using fallback name: %v", lat, lon, err)
	} else if len(results) > 0 {
		name = results[0].Name
		country = results[0].Country
	}

	return s.mergeCity(ctx, name, country, lat, lon)
}

// mergeCity is the shared add path: fetch live weather, match an existing
// city within coordinate tolerance to reuse its id and favorite flag,
// upsert the city, and upsert a bounded window of hourly forecast points.
func (s *CityService) mergeCity(ctx context.Context, name, country string, lat, lon float64) (*models.City, error) {
	oc, err := s.remote.OneCall(ctx, lat, lon)
	if err != nil {
		return nil, classifyRemote(err, fmt.Sprintf("fetching weather for %q", name))
	}

	existing, err := s.cityRepo.FindByCoordinates(ctx, lat, lon)
	if err != nil && !isNotFound(err) {
		return nil, wrapUnknown(err, "looking up existing city")
	}

	var id int64
	favorite := false
	if existing != nil {
		id = existing.ID
		favorite = existing.IsFavorite
	} else {
		id, err = s.resolveFreeID(ctx, lat, lon)
		if err != nil {
			return nil, wrapUnknown(err, "resolving city id")
		}
	}

	record := buildCity(id, name, country, oc.Lat, oc.Lon, oc, favorite)
	saved, err := s.dbManager.CreateOrUpdateCity(s.cityRepo, ctx, record)
	if err != nil {
		return nil, wrapUnknown(err, "persisting city")
	}

	if err := s.dbManager.UpsertForecasts(s.forecastRepo, ctx, hourlyForecasts(id, oc.Hourly, hourlyForecastLimit)); err != nil {
		return nil, wrapUnknown(err, "persisting forecasts")
	}

	s.hub.notifyCities()
	s.hub.notifyForecasts(id)
	s.record(models.CityAdded, &id, fmt.Sprintf("City %q added", saved.Name))

	return saved, nil
}

// resolveFreeID derives the city id from coordinates. When the derived id
// is already held by a city outside the tolerance window (a hash
// collision), it probes forward until a free or matching slot is found.
func (s *CityService) resolveFreeID(ctx context.Context, lat, lon float64) (int64, error) {
	base := geoid.ResolveID(lat, lon)
	for i := int64(0); i < idProbeLimit; i++ {
		candidate := base + i
		existing, err := s.cityRepo.FindByID(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return 0, err
		}
		if geoid.SamePlace(existing.Latitude, existing.Longitude, lat, lon) {
			return existing.ID, nil
		}
	}
	return 0, fmt.Errorf("no free id within %d slots of %d", idProbeLimit, base)
}

// RefreshWeather re-fetches weather for a known city using its stored
// coordinates. The id and favorite flag always survive a refresh.
func (s *CityService) RefreshWeather(ctx context.Context, id int64) (*models.City, error) {
	existing, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFoundf("city %d not found", id)
		}
		return nil, wrapUnknown(err, "loading city")
	}

	oc, err := s.remote.OneCall(ctx, existing.Latitude, existing.Longitude)
	if err != nil {
		return nil, classifyRemote(err, fmt.Sprintf("refreshing weather for %q", existing.Name))
	}

	// keep stored identity and coordinates, take everything else fresh
	record := buildCity(existing.ID, existing.Name, existing.Country,
		existing.Latitude, existing.Longitude, oc, existing.IsFavorite)
	saved, err := s.dbManager.CreateOrUpdateCity(s.cityRepo, ctx, record)
	if err != nil {
		return nil, wrapUnknown(err, "persisting city")
	}

	if err := s.dbManager.UpsertForecasts(s.forecastRepo, ctx, hourlyForecasts(id, oc.Hourly, hourlyForecastLimit)); err != nil {
		return nil, wrapUnknown(err, "persisting forecasts")
	}

	s.hub.notifyCities()
	s.hub.notifyForecasts(id)
	s.record(models.WeatherRefreshed, &id, fmt.Sprintf("Weather refreshed for %q", saved.Name))

	return saved, nil
}

// RefreshForecast wholesale-replaces a city's forecast entries: the old
// set is wiped and the union of fresh hourly and daily points inserted.
// This is the one operation that replaces rather than merges.
func (s *CityService) RefreshForecast(ctx context.Context, id int64) ([]*models.Forecast, error) {
	existing, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFoundf("city %d not found", id)
		}
		return nil, wrapUnknown(err, "loading city")
	}

	oc, err := s.remote.OneCall(ctx, existing.Latitude, existing.Longitude)
	if err != nil {
		return nil, classifyRemote(err, fmt.Sprintf("refreshing forecast for %q", existing.Name))
	}

	if err := s.dbManager.DeleteForecastsForCity(s.forecastRepo, ctx, id); err != nil {
		return nil, wrapUnknown(err, "clearing forecasts")
	}

	union := append(
		hourlyForecasts(id, oc.Hourly, hourlyForecastLimit),
		dailyForecasts(id, oc.Daily, dailyForecastLimit)...,
	)
	if err := s.dbManager.UpsertForecasts(s.forecastRepo, ctx, union); err != nil {
		return nil, wrapUnknown(err, "persisting forecasts")
	}

	s.hub.notifyForecasts(id)
	s.record(models.ForecastRefreshed, &id, fmt.Sprintf("Forecast refreshed for %q (%d points)", existing.Name, len(union)))

	return s.GetForecasts(ctx, id)
}

// RefreshOutcome reports one city's result within RefreshAll.
type RefreshOutcome struct {
	CityID int64  `json:"city_id"`
	Name   string `json:"name"`
	Error  string `json:"error,omitempty"`
}

// RefreshAll refreshes weather for every tracked city sequentially. A
// failing city never aborts the rest; each failure is reported in its
// outcome and the prior cached record stays intact.
func (s *CityService) RefreshAll(ctx context.Context) ([]RefreshOutcome, error) {
	cities, err := s.cityRepo.FindAll(ctx)
	if err != nil {
		return nil, wrapUnknown(err, "loading cities")
	}

	outcomes := make([]RefreshOutcome, 0, len(cities))
	for _, c := range cities {
		outcome := RefreshOutcome{CityID: c.ID, Name: c.Name}
		if _, err := s.RefreshWeather(ctx, c.ID); err != nil {
			outcome.Error = err.Error()
			log.Printf("Refresh failed for city %q (%d): %v", c.Name, c.ID, err)
			s.record(models.RefreshFailed, &c.ID, fmt.Sprintf("Refresh failed for %q: %v", c.Name, err))
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// SetFavorite updates the favorite flag only. Unknown ids are a no-op.
func (s *CityService) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	existing, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return wrapUnknown(err, "loading city")
	}

	if err := s.dbManager.UpdateCityFavorite(s.cityRepo, ctx, id, favorite); err != nil {
		return wrapUnknown(err, "updating favorite flag")
	}

	s.hub.notifyCities()
	s.record(models.FavoriteChanged, &id, fmt.Sprintf("Favorite set to %t for %q", favorite, existing.Name))

	return nil
}

// DeleteCity removes a city and cascades to its forecasts. Unknown ids
// are a no-op.
func (s *CityService) DeleteCity(ctx context.Context, id int64) error {
	existing, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return wrapUnknown(err, "loading city")
	}

	if err := s.dbManager.DeleteCity(s.cityRepo, ctx, id); err != nil {
		return wrapUnknown(err, "deleting city")
	}

	s.hub.notifyCities()
	s.hub.notifyForecasts(id)
	s.record(models.CityDeleted, &id, fmt.Sprintf("City %q deleted", existing.Name))

	return nil
}

// PruneForecasts removes forecast entries whose last refresh predates the
// cutoff.
func (s *CityService) PruneForecasts(ctx context.Context, cutoff time.Time) error {
	if err := s.dbManager.PruneForecasts(s.forecastRepo, ctx, cutoff); err != nil {
		return wrapUnknown(err, "pruning forecasts")
	}
	s.hub.notifyAllForecasts()
	return nil
}
