package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Precedence: defaults, then the YAML
// file named by CONFIG_FILE, then environment variables.
type Config struct {
	Env  string `yaml:"env" validate:"oneof=development production test"`
	Port string `yaml:"port" validate:"required,numeric"`

	StoreBackend string `yaml:"store_backend" validate:"oneof=sqlite postgres redis memory"`
	DBPath       string `yaml:"db_path" validate:"required_if=StoreBackend sqlite"`
	DatabaseURL  string `yaml:"database_url" validate:"required_if=StoreBackend postgres"`
	RedisURL     string `yaml:"redis_url" validate:"required_if=StoreBackend redis"`

	NominatimURL string  `yaml:"nominatim_url" validate:"required,url"`
	OverpassURL  string  `yaml:"overpass_url" validate:"required,url"`
	CountryCode  string  `yaml:"country_code" validate:"required,len=2,alpha"`
	UserAgent    string  `yaml:"user_agent" validate:"required"`
	NominatimRPS float64 `yaml:"nominatim_rps" validate:"gt=0"`

	GeocodeTimeout  time.Duration `yaml:"geocode_timeout" validate:"gt=0"`
	OverpassTimeout time.Duration `yaml:"overpass_timeout" validate:"gt=0"`
	LocateTimeout   time.Duration `yaml:"locate_timeout" validate:"gt=0"`

	SearchRadiusMeters int           `yaml:"search_radius_meters" validate:"min=1,max=50000"`
	StationCacheSize   int           `yaml:"station_cache_size" validate:"min=1"`
	StationCacheTTL    time.Duration `yaml:"station_cache_ttl" validate:"min=0"`

	Timezone       string   `yaml:"timezone" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaults() Config {
	return Config{
		Env:                "development",
		Port:               "8080",
		StoreBackend:       "sqlite",
		DBPath:             "data/app.db",
		NominatimURL:       "https://nominatim.openstreetmap.org",
		OverpassURL:        "https://overpass-api.de/api/interpreter",
		CountryCode:        "in",
		UserAgent:          "travel-ticket-service/1.0",
		NominatimRPS:       1,
		GeocodeTimeout:     10 * time.Second,
		OverpassTimeout:    30 * time.Second,
		LocateTimeout:      10 * time.Second,
		SearchRadiusMeters: 10000,
		StationCacheSize:   256,
		StationCacheTTL:    5 * time.Minute,
		Timezone:           "Asia/Kolkata",
	}
}

// Load reads .env (if present), the optional YAML file and the environment,
// then validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.NominatimURL, "NOMINATIM_URL")
	setString(&cfg.OverpassURL, "OVERPASS_URL")
	setString(&cfg.CountryCode, "COUNTRY_CODE")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.Timezone, "TIMEZONE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setDuration(&cfg.GeocodeTimeout, "GEOCODE_TIMEOUT"),
		setDuration(&cfg.OverpassTimeout, "OVERPASS_TIMEOUT"),
		setDuration(&cfg.LocateTimeout, "LOCATE_TIMEOUT"),
		setDuration(&cfg.StationCacheTTL, "STATION_CACHE_TTL"),
		setInt(&cfg.SearchRadiusMeters, "SEARCH_RADIUS_METERS"),
		setInt(&cfg.StationCacheSize, "STATION_CACHE_SIZE"),
		setFloat(&cfg.NominatimRPS, "NOMINATIM_RPS"),
	)
	return errors.Join(errs...)
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
