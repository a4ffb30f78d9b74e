package city

import (
	"context"
	"log"
	"sync"

	"cirrus/models"
)

// hub fans out change signals to live query subscribers. City-level
// subscribers get a signal on any city write; forecast subscribers are
// keyed by city id. Signals are coalesced: a subscriber that has not yet
// drained its pending signal does not queue another.
type hub struct {
	mu           sync.Mutex
	nextID       int
	citySubs     map[int]chan struct{}
	forecastSubs map[int64]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{
		citySubs:     make(map[int]chan struct{}),
		forecastSubs: make(map[int64]map[int]chan struct{}),
	}
}

func (h *hub) subscribeCities() (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan struct{}, 1)
	h.citySubs[h.nextID] = ch
	return h.nextID, ch
}

func (h *hub) unsubscribeCities(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.citySubs, id)
}

func (h *hub) subscribeForecasts(cityID int64) (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.forecastSubs[cityID] == nil {
		h.forecastSubs[cityID] = make(map[int]chan struct{})
	}
	h.forecastSubs[cityID][h.nextID] = ch
	return h.nextID, ch
}

func (h *hub) unsubscribeForecasts(cityID int64, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.forecastSubs[cityID], id)
	if len(h.forecastSubs[cityID]) == 0 {
		delete(h.forecastSubs, cityID)
	}
}

func (h *hub) notifyCities() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.citySubs {
		signal(ch)
	}
}

func (h *hub) notifyForecasts(cityID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.forecastSubs[cityID] {
		signal(ch)
	}
}

func (h *hub) notifyAllForecasts() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.forecastSubs {
		for _, ch := range subs {
			signal(ch)
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// deliver pushes v to out with latest-wins semantics: a pending value the
// subscriber has not consumed yet is dropped in favour of the new one.
func deliver[T any](ctx context.Context, out chan T, v T) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	default:
	}

	// drop the stale pending value, then push the fresh one
	select {
	case <-out:
	default:
	}

	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// WatchAllCities streams the full city list, favorites first then name
// ascending. The first element is the current snapshot; a new one follows
// every city write. The stream closes when ctx is cancelled.
func (s *CityService) WatchAllCities(ctx context.Context) <-chan []*models.City {
	return s.watchCities(ctx, s.cityRepo.FindAll)
}

// WatchFavorites streams the favorite cities ordered by name ascending.
func (s *CityService) WatchFavorites(ctx context.Context) <-chan []*models.City {
	return s.watchCities(ctx, s.cityRepo.FindFavorites)
}

func (s *CityService) watchCities(ctx context.Context, query func(context.Context) ([]*models.City, error)) <-chan []*models.City {
	out := make(chan []*models.City, 1)
	subID, changed := s.hub.subscribeCities()

	go func() {
		defer close(out)
		defer s.hub.unsubscribeCities(subID)

		for {
			cities, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error re-evaluating city watch query: %v", err)
			} else if !deliver(ctx, out, cities) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}()

	return out
}

// WatchCity streams a single city projection. A nil element means the id
// is unknown or the city has been deleted.
func (s *CityService) WatchCity(ctx context.Context, id int64) <-chan *models.City {
	out := make(chan *models.City, 1)
	subID, changed := s.hub.subscribeCities()

	go func() {
		defer close(out)
		defer s.hub.unsubscribeCities(subID)

		for {
			found, err := s.cityRepo.FindByID(ctx, id)
			if err != nil && !isNotFound(err) {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error re-evaluating city %d watch: %v", id, err)
			} else if !deliver(ctx, out, found) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}()

	return out
}

// WatchForecasts streams the forecast list for a city ordered by forecast
// time ascending.
func (s *CityService) WatchForecasts(ctx context.Context, cityID int64) <-chan []*models.Forecast {
	out := make(chan []*models.Forecast, 1)
	subID, changed := s.hub.subscribeForecasts(cityID)

	go func() {
		defer close(out)
		defer s.hub.unsubscribeForecasts(cityID, subID)

		for {
			forecasts, err := s.forecastRepo.FindAllByCityID(ctx, cityID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error re-evaluating forecast watch for city %d: %v", cityID, err)
			} else if !deliver(ctx, out, forecasts) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}()

	return out
}
