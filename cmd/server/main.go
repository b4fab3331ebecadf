package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"travel-ticket-service/internal/adapters/cache"
	"travel-ticket-service/internal/adapters/geodata"
	"travel-ticket-service/internal/adapters/geolocation"
	"travel-ticket-service/internal/adapters/store"
	"travel-ticket-service/internal/api"
	"travel-ticket-service/internal/config"
	"travel-ticket-service/internal/platform/db"
	"travel-ticket-service/internal/platform/logger"
	"travel-ticket-service/internal/ports"
	"travel-ticket-service/internal/services"

	_ "time/tzdata"

	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, geoCache, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	geocoder, err := geodata.NewNominatimGeocoder(geodata.NominatimOptions{
		BaseURL:     cfg.NominatimURL,
		CountryCode: cfg.CountryCode,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.GeocodeTimeout,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.NominatimRPS), 1),
	})
	if err != nil {
		return err
	}

	features, err := geodata.NewOverpassFeatureSource(cfg.OverpassURL, cfg.UserAgent, cfg.OverpassTimeout)
	if err != nil {
		return err
	}

	loc, err := services.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using UTC", "tz", cfg.Timezone, "err", err)
	}

	resolver := services.NewResolver(geocoder, features, services.ResolverOptions{
		GeocodeCache:   geoCache,
		Stations:       cache.NewStationLRU(cfg.StationCacheSize, cfg.StationCacheTTL),
		LookupTimeout:  cfg.OverpassTimeout,
		GeocodeTimeout: cfg.GeocodeTimeout,
		Logger:         log,
	})
	session := services.NewSession(
		resolver,
		services.NewLinkState(profiles, log),
		services.NewTicketLifecycle(services.SystemClock{}, loc),
		services.NewRegistrationService(profiles, services.SystemClock{}, log),
		services.SessionOptions{RadiusMeters: cfg.SearchRadiusMeters, Logger: log},
	)
	defer session.Close()
	session.Restore(ctx)

	positions := geolocation.NewStream()
	go session.Follow(ctx, positions, func(km float64) {
		log.Debug("live distance to linked station", "km", km)
	})

	router := api.NewRouter(api.Deps{
		Session:        session,
		Positions:      positions,
		PositionSink:   positions,
		LocateTimeout:  cfg.LocateTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})

	// Station lookups may wait on the Overpass timeout before falling back.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.OverpassTimeout + cfg.GeocodeTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "store", cfg.StoreBackend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore selects the profile store backend. The geocode cache follows the
// SQL backends and is nil for redis and memory.
func openStore(ctx context.Context, cfg config.Config) (ports.ProfileStore, ports.GeocodeCache, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		return store.NewSQLProfileStore(conn), cache.NewSQLGeocodeCache(conn), closer(conn), nil

	case "redis":
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.NewRedisProfileStore(client, ""), nil, func() { _ = client.Close() }, nil

	case "memory":
		return store.NewMemoryProfileStore(), nil, func() {}, nil

	case "sqlite":
		if err := ensureDir(cfg.DBPath); err != nil {
			return nil, nil, nil, err
		}
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		return store.NewSqliteProfileStore(conn), cache.NewSqliteGeocodeCache(conn), closer(conn), nil
	}

	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func closer(conn *sql.DB) func() {
	return func() { _ = conn.Close() }
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return nil
}
