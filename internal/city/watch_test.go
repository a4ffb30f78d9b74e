package city

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/models"
	"cirrus/tests/testutils"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription update")
		panic("unreachable")
	}
}

// receiveUntil drains updates until match reports true. Intermediate
// updates are legitimate because delivery is coalesced, not batched.
func receiveUntil[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "subscription closed unexpectedly")
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching subscription update")
			panic("unreachable")
		}
	}
}

func TestWatchAllCitiesPushesSnapshotThenUpdates(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := service.WatchAllCities(ctx)

	snapshot := receive(t, updates)
	assert.Empty(t, snapshot)

	_, err := service.AddCityByName(context.Background(), "Paris")
	require.NoError(t, err)

	next := receiveUntil(t, updates, func(cities []*models.City) bool {
		return len(cities) == 1
	})
	assert.Equal(t, "Paris", next[0].Name)
}

func TestWatchFavoritesTracksFlagChanges(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	added, err := service.AddCityByName(context.Background(), "Paris")
	require.NoError(t, err)

	updates := service.WatchFavorites(ctx)
	snapshot := receive(t, updates)
	assert.Empty(t, snapshot)

	require.NoError(t, service.SetFavorite(context.Background(), added.ID, true))
	next := receiveUntil(t, updates, func(cities []*models.City) bool {
		return len(cities) == 1
	})
	assert.True(t, next[0].IsFavorite)

	require.NoError(t, service.SetFavorite(context.Background(), added.ID, false))
	receiveUntil(t, updates, func(cities []*models.City) bool {
		return len(cities) == 0
	})
}

func TestWatchCityReportsAbsenceAsNil(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id := int64(987654)
	updates := service.WatchCity(ctx, id)

	snapshot := receive(t, updates)
	assert.Nil(t, snapshot)
}

func TestWatchCityFollowsLifecycle(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	added, err := service.AddCityByName(context.Background(), "Paris")
	require.NoError(t, err)

	updates := service.WatchCity(ctx, added.ID)
	snapshot := receive(t, updates)
	require.NotNil(t, snapshot)
	assert.Equal(t, "Paris", snapshot.Name)

	require.NoError(t, service.DeleteCity(context.Background(), added.ID))
	receiveUntil(t, updates, func(c *models.City) bool {
		return c == nil
	})
}

func TestWatchForecastsFollowsRefresh(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	added, err := service.AddCityByName(context.Background(), "Paris")
	require.NoError(t, err)

	updates := service.WatchForecasts(ctx, added.ID)
	snapshot := receive(t, updates)
	assert.Len(t, snapshot, hourlyForecastLimit)

	fake.OneCallResponse = testutils.OneCallFor(parisLat, parisLon, 18.5, 5, 0)
	_, err = service.RefreshForecast(context.Background(), added.ID)
	require.NoError(t, err)

	receiveUntil(t, updates, func(forecasts []*models.Forecast) bool {
		return len(forecasts) == 5
	})
}

func TestWatchClosesOnCancel(t *testing.T) {
	service := newTestService(t, parisFake())
	ctx, cancel := context.WithCancel(context.Background())

	updates := service.WatchAllCities(ctx)
	receive(t, updates)

	cancel()

	select {
	case _, ok := <-updates:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close after cancellation")
	}
}
