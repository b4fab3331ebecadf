package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"travel-ticket-service/internal/adapters/store"
	"travel-ticket-service/internal/config"
	"travel-ticket-service/internal/platform/db"
	"travel-ticket-service/internal/platform/logger"
	"travel-ticket-service/internal/ports"
	"travel-ticket-service/internal/services"
)

// dbtool prepares the configured backend: it creates the schema and imports
// a registration record from SEED_PATH when the file exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx := context.Background()
	profiles, closeFn, err := openProfiles(ctx, cfg, log)
	if err != nil {
		log.Error("open store failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer closeFn()

	seedPath := config.Get("SEED_PATH", "data/seeds/registration.json")
	if err := importRegistration(ctx, profiles, seedPath, log); err != nil {
		log.Error("import failed", "path", seedPath, "err", err)
		closeFn()
		os.Exit(1)
	}
}

func openProfiles(ctx context.Context, cfg config.Config, log *slog.Logger) (ports.ProfileStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("initializing postgres schema")
		if err := store.InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		log.Info("schema ready")
		return store.NewSQLProfileStore(conn), func() { _ = conn.Close() }, nil

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("initializing sqlite schema", "path", cfg.DBPath)
		if err := store.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		log.Info("schema ready")
		return store.NewSqliteProfileStore(conn), func() { _ = conn.Close() }, nil

	case "redis":
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisProfileStore(client, ""), func() { _ = client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("backend %q has nothing to prepare", cfg.StoreBackend)
}

// importRegistration runs the seed record through the same validation as the API.
func importRegistration(ctx context.Context, profiles ports.ProfileStore, path string, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("no registration seed, skipping", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}

	var in services.RegistrationInput
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("decode seed %q: %w", path, err)
	}

	reg, err := services.NewRegistrationService(profiles, nil, log).Register(ctx, in)
	if err != nil {
		return err
	}
	log.Info("registration imported", "id", reg.ID, "name", reg.FullName)
	return nil
}
