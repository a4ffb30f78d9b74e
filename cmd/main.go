package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"cirrus/db"
	"cirrus/internal/city"
	"cirrus/internal/config"
	"cirrus/internal/eventlog"
	"cirrus/internal/openweather"
	"cirrus/internal/scheduler"
	"cirrus/middleware"
)

var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	infoLogger.Println("Using SQLite database")
	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		errorLogger.Fatalf("Failed to initialize database schema: %v", err)
	}

	repoFactory := db.NewRepositoryFactory(sqliteDB, cfg.DatabaseName)
	cityRepo := repoFactory.NewCityRepository()
	forecastRepo := repoFactory.NewForecastRepository()
	eventLogRepo := repoFactory.NewEventLogRepository()

	dbManager := db.NewDBManager()
	defer dbManager.Stop()

	weatherClient := openweather.NewHTTPClient(
		&http.Client{Timeout: 15 * time.Second},
		cfg.WeatherAPIKey,
		cfg.OneCallBaseURL,
		cfg.GeocodingBaseURL,
	)

	eventLogService := eventlog.NewEventLogService(eventLogRepo, dbManager)
	cityService := city.NewCityService(cityRepo, forecastRepo, weatherClient, dbManager, eventLogService)

	refreshScheduler := scheduler.New(cityService, cfg.RefreshInterval, cfg.ForecastMaxAge)
	if err := refreshScheduler.Start(); err != nil {
		errorLogger.Fatalf("Failed to start refresh scheduler: %v", err)
	}
	defer refreshScheduler.Stop()

	router := mux.NewRouter()
	city.NewCityHandlers(cityService).RegisterRoutes(router)
	eventlog.NewEventLogHandlers(eventLogService).RegisterRoutes(router)

	handler := middleware.LoggingMiddleware(middleware.SetupCORS()(router))
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	infoLogger.Printf("Received shutdown signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		errorLogger.Printf("Server Shutdown error: %v", err)
	}
	infoLogger.Println("Server stopped")
}
