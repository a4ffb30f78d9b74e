package city

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/db"
	"cirrus/internal/eventlog"
	"cirrus/internal/geoid"
	"cirrus/internal/openweather"
	"cirrus/tests/testutils"
)

const (
	parisLat = 48.8566
	parisLon = 2.3522
)

func newTestService(t *testing.T, remote openweather.Client) *CityService {
	factory := testutils.SetupTestRepositoryFactory(t)

	dbManager := db.NewDBManager()
	t.Cleanup(dbManager.Stop)

	events := eventlog.NewEventLogService(factory.NewEventLogRepository(), dbManager)
	return NewCityService(
		factory.NewCityRepository(),
		factory.NewForecastRepository(),
		remote,
		dbManager,
		events,
	)
}

func parisFake() *testutils.FakeWeatherClient {
	return &testutils.FakeWeatherClient{
		GeocodeResults: []openweather.GeoResult{
			{Name: "Paris", Country: "FR", Lat: parisLat, Lon: parisLon},
		},
		OneCallResponse: testutils.OneCallFor(parisLat, parisLon, 18.5, 48, 8),
	}
}

func TestAddCityByName(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	city, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	assert.Equal(t, geoid.ResolveID(parisLat, parisLon), city.ID)
	assert.Equal(t, "Paris", city.Name)
	assert.Equal(t, "FR", city.Country)
	assert.Equal(t, 18.5, city.Temperature)
	assert.Equal(t, 18.5, city.TempMin)
	assert.Equal(t, 18.5, city.TempMax)
	assert.False(t, city.IsFavorite)

	forecasts, err := service.GetForecasts(ctx, city.ID)
	require.NoError(t, err)
	assert.Len(t, forecasts, hourlyForecastLimit)

	stored, err := service.GetCity(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, city.ID, stored.ID)
}

func TestAddCityByNameNoMatch(t *testing.T) {
	service := newTestService(t, &testutils.FakeWeatherClient{})

	_, err := service.AddCityByName(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestAddCityByNameRemoteFailure(t *testing.T) {
	fake := parisFake()
	fake.GeocodeErr = &openweather.StatusError{Endpoint: "direct", StatusCode: 401}
	service := newTestService(t, fake)

	_, err := service.AddCityByName(context.Background(), "Paris")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRemote))
}

func TestAddCityByNameNetworkFailure(t *testing.T) {
	fake := parisFake()
	fake.GeocodeErr = errors.New("dial tcp: connection refused")
	service := newTestService(t, fake)

	_, err := service.AddCityByName(context.Background(), "Paris")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func TestAddCityTwiceKeepsIdentityAndFavorite(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	first, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	require.NoError(t, service.SetFavorite(ctx, first.ID, true))

	// second geocode resolves slightly different coordinates for the
	// same place, still inside the tolerance window
	fake.GeocodeResults = []openweather.GeoResult{
		{Name: "Paris", Country: "FR", Lat: parisLat + 0.004, Lon: parisLon - 0.003},
	}
	fake.OneCallResponse = testutils.OneCallFor(parisLat+0.004, parisLon-0.003, 20.1, 24, 8)

	second, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsFavorite)
	assert.Equal(t, 20.1, second.Temperature)

	all, err := service.GetAllCities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddCityByCoordinates(t *testing.T) {
	fake := parisFake()
	fake.ReverseGeocodeResults = []openweather.GeoResult{
		{Name: "Paris", Country: "FR", Lat: parisLat, Lon: parisLon},
	}
	service := newTestService(t, fake)

	city, err := service.AddCityByCoordinates(context.Background(), parisLat, parisLon)
	require.NoError(t, err)

	assert.Equal(t, "Paris", city.Name)
	assert.Equal(t, "FR", city.Country)
}

func TestAddCityByCoordinatesFallbackName(t *testing.T) {
	fake := &testutils.FakeWeatherClient{
		ReverseGeocodeErr: errors.New("dial tcp: timeout"),
		OneCallResponse:   testutils.OneCallFor(51.5007, -0.1246, 11.0, 12, 8),
	}
	service := newTestService(t, fake)

	city, err := service.AddCityByCoordinates(context.Background(), 51.5007, -0.1246)
	require.NoError(t, err)

	assert.Equal(t, "Location (51.50, -0.12)", city.Name)
	assert.Empty(t, city.Country)
}

func TestRefreshWeatherPreservesIdentity(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	added, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)
	require.NoError(t, service.SetFavorite(ctx, added.ID, true))

	fake.OneCallResponse = testutils.OneCallFor(parisLat, parisLon, 25.0, 24, 8)

	refreshed, err := service.RefreshWeather(ctx, added.ID)
	require.NoError(t, err)

	assert.Equal(t, added.ID, refreshed.ID)
	assert.Equal(t, "Paris", refreshed.Name)
	assert.True(t, refreshed.IsFavorite)
	assert.Equal(t, 25.0, refreshed.Temperature)

	// refresh must reuse stored coordinates, never geocode again
	last := fake.OneCallCalls[len(fake.OneCallCalls)-1]
	assert.Equal(t, parisLat, last[0])
	assert.Equal(t, parisLon, last[1])
	assert.Len(t, fake.GeocodeCalls, 1)
}

func TestRefreshWeatherUnknownCity(t *testing.T) {
	service := newTestService(t, parisFake())

	_, err := service.RefreshWeather(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRefreshForecastReplacesWholesale(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	added, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	before, err := service.GetForecasts(ctx, added.ID)
	require.NoError(t, err)
	require.Len(t, before, hourlyForecastLimit)

	fake.OneCallResponse = testutils.OneCallFor(parisLat, parisLon, 18.5, 5, 3)

	after, err := service.RefreshForecast(ctx, added.ID)
	require.NoError(t, err)

	// the old 24 hourly rows are gone, only the fresh union remains
	assert.Len(t, after, 5+3)
	for i := 1; i < len(after); i++ {
		assert.LessOrEqual(t, after[i-1].ForecastAt, after[i].ForecastAt)
	}
}

func TestRefreshForecastUnknownCity(t *testing.T) {
	service := newTestService(t, parisFake())

	_, err := service.RefreshForecast(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	paris, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	fake.GeocodeResults = []openweather.GeoResult{
		{Name: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405},
	}
	fake.OneCallResponse = testutils.OneCallFor(52.52, 13.405, 9.5, 24, 8)
	berlin, err := service.AddCityByName(ctx, "Berlin")
	require.NoError(t, err)

	// Berlin keeps refreshing fine, Paris starts failing
	fake.OneCallFunc = func(lat, lon float64) (*openweather.OneCallResponse, error) {
		if lat == parisLat {
			return nil, &openweather.StatusError{Endpoint: "onecall", StatusCode: 500}
		}
		return testutils.OneCallFor(lat, lon, 10.0, 24, 8), nil
	}

	outcomes, err := service.RefreshAll(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byID := map[int64]RefreshOutcome{}
	for _, o := range outcomes {
		byID[o.CityID] = o
	}
	assert.NotEmpty(t, byID[paris.ID].Error)
	assert.Empty(t, byID[berlin.ID].Error)

	// the failed city's cached record is untouched
	stale, err := service.GetCity(ctx, paris.ID)
	require.NoError(t, err)
	assert.Equal(t, 18.5, stale.Temperature)

	fresh, err := service.GetCity(ctx, berlin.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, fresh.Temperature)
}

func TestSetFavoriteUnknownCityIsNoOp(t *testing.T) {
	service := newTestService(t, parisFake())
	assert.NoError(t, service.SetFavorite(context.Background(), 999, true))
}

func TestFavoriteOrderingInListings(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	_, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	fake.GeocodeResults = []openweather.GeoResult{
		{Name: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405},
	}
	fake.OneCallResponse = testutils.OneCallFor(52.52, 13.405, 9.5, 0, 0)
	_, err = service.AddCityByName(ctx, "Berlin")
	require.NoError(t, err)

	fake.GeocodeResults = []openweather.GeoResult{
		{Name: "Zagreb", Country: "HR", Lat: 45.815, Lon: 15.9819},
	}
	fake.OneCallResponse = testutils.OneCallFor(45.815, 15.9819, 14.0, 0, 0)
	zagreb, err := service.AddCityByName(ctx, "Zagreb")
	require.NoError(t, err)

	require.NoError(t, service.SetFavorite(ctx, zagreb.ID, true))

	all, err := service.GetAllCities(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zagreb", all[0].Name)
	assert.Equal(t, "Berlin", all[1].Name)
	assert.Equal(t, "Paris", all[2].Name)

	favorites, err := service.GetFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, zagreb.ID, favorites[0].ID)
}

func TestDeleteCityCascades(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	added, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	require.NoError(t, service.DeleteCity(ctx, added.ID))

	_, err = service.GetCity(ctx, added.ID)
	assert.True(t, IsKind(err, KindNotFound))

	forecasts, err := service.GetForecasts(ctx, added.ID)
	require.NoError(t, err)
	assert.Empty(t, forecasts)
}

func TestDeleteUnknownCityIsNoOp(t *testing.T) {
	service := newTestService(t, parisFake())
	assert.NoError(t, service.DeleteCity(context.Background(), 424242))
}

func TestPruneForecastsSweepsEverythingBeforeCutoff(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	added, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	require.NoError(t, service.PruneForecasts(ctx, time.Now().Add(time.Hour)))

	forecasts, err := service.GetForecasts(ctx, added.ID)
	require.NoError(t, err)
	assert.Empty(t, forecasts)
}

func TestResolveFreeIDProbesPastForeignOccupant(t *testing.T) {
	fake := parisFake()
	service := newTestService(t, fake)
	ctx := context.Background()

	// plant a distant city directly on the id Paris would resolve to
	occupant := testutils.CreateTestCity("Impostor", -33.8688, 151.2093)
	occupant.ID = geoid.ResolveID(parisLat, parisLon)
	_, err := service.dbManager.CreateOrUpdateCity(service.cityRepo, ctx, occupant)
	require.NoError(t, err)

	paris, err := service.AddCityByName(ctx, "Paris")
	require.NoError(t, err)

	assert.Equal(t, occupant.ID+1, paris.ID)

	all, err := service.GetAllCities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRefreshAllEmptyStore(t *testing.T) {
	service := newTestService(t, parisFake())

	outcomes, err := service.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestErrorMessagesCarryContext(t *testing.T) {
	fake := parisFake()
	fake.OneCallErr = &openweather.StatusError{Endpoint: "onecall", StatusCode: 503}
	service := newTestService(t, fake)

	_, err := service.AddCityByName(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%q", "Paris"))
}
