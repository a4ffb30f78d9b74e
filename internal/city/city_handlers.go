package city

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"cirrus/models"
)

type CityHandlers struct {
	Service  *CityService
	validate *validator.Validate
}

func NewCityHandlers(service *CityService) *CityHandlers {
	return &CityHandlers{
		Service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes attaches every city route to the router, including the
// SSE watch endpoints backed by the live subscriptions.
func (h *CityHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cities", h.GetAllCities).Methods("GET")
	router.HandleFunc("/api/cities", h.AddCity).Methods("POST")
	router.HandleFunc("/api/cities/favorites", h.GetFavorites).Methods("GET")
	router.HandleFunc("/api/cities/refresh-all", h.RefreshAll).Methods("POST")
	router.HandleFunc("/api/cities/{id:[0-9]+}", h.GetCity).Methods("GET")
	router.HandleFunc("/api/cities/{id:[0-9]+}", h.DeleteCity).Methods("DELETE")
	router.HandleFunc("/api/cities/{id:[0-9]+}/favorite", h.SetFavorite).Methods("PUT")
	router.HandleFunc("/api/cities/{id:[0-9]+}/refresh", h.RefreshWeather).Methods("POST")
	router.HandleFunc("/api/cities/{id:[0-9]+}/forecasts", h.GetForecasts).Methods("GET")
	router.HandleFunc("/api/cities/{id:[0-9]+}/forecasts/refresh", h.RefreshForecast).Methods("POST")

	router.HandleFunc("/api/watch/cities", h.WatchAllCities).Methods("GET")
	router.HandleFunc("/api/watch/favorites", h.WatchFavorites).Methods("GET")
	router.HandleFunc("/api/watch/cities/{id:[0-9]+}", h.WatchCity).Methods("GET")
	router.HandleFunc("/api/watch/cities/{id:[0-9]+}/forecasts", h.WatchForecasts).Methods("GET")
}

type addCityRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type setFavoriteRequest struct {
	IsFavorite *bool `json:"is_favorite" validate:"required"`
}

func (h *CityHandlers) AddCity(w http.ResponseWriter, r *http.Request) {
	var req addCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		city *models.City
		err  error
	)
	switch {
	case req.Name != "":
		city, err = h.Service.AddCityByName(r.Context(), req.Name)
	case req.Latitude != nil && req.Longitude != nil:
		city, err = h.Service.AddCityByCoordinates(r.Context(), *req.Latitude, *req.Longitude)
	default:
		http.Error(w, "either name or latitude+longitude is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, city)
}

func (h *CityHandlers) GetAllCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Service.GetAllCities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cities == nil {
		cities = []*models.City{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (h *CityHandlers) GetFavorites(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Service.GetFavorites(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cities == nil {
		cities = []*models.City{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (h *CityHandlers) GetCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	city, err := h.Service.GetCity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (h *CityHandlers) GetForecasts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	forecasts, err := h.Service.GetForecasts(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if forecasts == nil {
		forecasts = []*models.Forecast{}
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (h *CityHandlers) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	city, err := h.Service.RefreshWeather(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (h *CityHandlers) RefreshForecast(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	forecasts, err := h.Service.RefreshForecast(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (h *CityHandlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.Service.RefreshAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (h *CityHandlers) SetFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req setFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetFavorite(r.Context(), id, *req.IsFavorite); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CityHandlers) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteCity(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CityHandlers) WatchAllCities(w http.ResponseWriter, r *http.Request) {
	streamSSE(w, r, h.Service.WatchAllCities(r.Context()))
}

func (h *CityHandlers) WatchFavorites(w http.ResponseWriter, r *http.Request) {
	streamSSE(w, r, h.Service.WatchFavorites(r.Context()))
}

func (h *CityHandlers) WatchCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	streamSSE(w, r, h.Service.WatchCity(r.Context(), id))
}

func (h *CityHandlers) WatchForecasts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	streamSSE(w, r, h.Service.WatchForecasts(r.Context(), id))
}

// streamSSE forwards every value from the subscription channel to the
// client as a server-sent event until the channel closes or the client
// disconnects.
func streamSSE[T any](w http.ResponseWriter, r *http.Request, updates <-chan T) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for update := range updates {
		payload, err := json.Marshal(update)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var engineErr *Error
	if errors.As(err, &engineErr) {
		switch engineErr.Kind {
		case KindNotFound:
			status = http.StatusNotFound
		case KindRemote:
			status = http.StatusBadGateway
		case KindNetwork:
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
