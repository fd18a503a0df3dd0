// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mwhite7112/woodpantry-brewlist/internal/blob"
	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/logger"
	"github.com/mwhite7112/woodpantry-brewlist/internal/pagescan"
	"github.com/mwhite7112/woodpantry-brewlist/internal/store"
)

const defaultHTTPTimeout = 30 * time.Second

// Config is the resolved process configuration.
type Config struct {
	Port          string
	LogLevel      logger.Level
	BrewfatherURL string
	Credentials   domain.Credentials
	Store         store.OpenConfig
	Blob          blob.Config
	RecipeHosts   []string
	MaltDBURL     string
	MaltDBBlobKey string
	HTTPTimeout   time.Duration
}

// Load reads the process environment.
func Load() (Config, error) {
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv; every problem is reported at once.
func FromLookup(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:          getenv("PORT"),
		BrewfatherURL: getenv("BREWFATHER_API_URL"),
		Credentials: domain.Credentials{
			UserID: getenv("BREWFATHER_USER_ID"),
			APIKey: getenv("BREWFATHER_API_KEY"),
		},
		Store: store.OpenConfig{
			Driver:      store.Driver(getenv("BREWLIST_STORE_DRIVER")),
			SQLitePath:  getenv("BREWLIST_SQLITE_PATH"),
			PostgresDSN: getenv("BREWLIST_POSTGRES_DSN"),
		},
		Blob: blob.Config{
			Driver: blob.Driver(getenv("BREWLIST_BLOB_DRIVER")),
			FSRoot: getenv("BREWLIST_BLOB_FS_ROOT"),
			S3: blob.S3Config{
				Bucket:    getenv("BREWLIST_BLOB_S3_BUCKET"),
				Region:    getenv("BREWLIST_BLOB_S3_REGION"),
				Endpoint:  getenv("BREWLIST_BLOB_S3_ENDPOINT"),
				PathStyle: strings.EqualFold(getenv("BREWLIST_BLOB_S3_PATH_STYLE"), "true"),
			},
		},
		RecipeHosts:   splitList(getenv("BREWLIST_RECIPE_HOSTS")),
		MaltDBURL:     getenv("MALTDB_URL"),
		MaltDBBlobKey: getenv("MALTDB_BLOB_KEY"),
		HTTPTimeout:   defaultHTTPTimeout,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.BrewfatherURL == "" {
		cfg.BrewfatherURL = clients.DefaultBrewfatherURL
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = store.DriverSQLite
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "brewlist.db"
	}
	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = blob.DriverFilesystem
	}
	if len(cfg.RecipeHosts) == 0 {
		cfg.RecipeHosts = pagescan.DefaultRecipeHosts
	}

	var errs []error
	if n, err := strconv.Atoi(cfg.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port, got %q", cfg.Port))
	}
	level, err := logger.ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level
	switch cfg.Store.Driver {
	case store.DriverMemory, store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("BREWLIST_STORE_DRIVER must be memory, sqlite or postgres, got %q", cfg.Store.Driver))
	}
	switch cfg.Blob.Driver {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if cfg.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("BREWLIST_BLOB_S3_BUCKET is required for the s3 blob driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("BREWLIST_BLOB_DRIVER must be fs, s3 or memory, got %q", cfg.Blob.Driver))
	}
	if v := getenv("BREWLIST_BLOB_S3_PATH_STYLE"); v != "" && !strings.EqualFold(v, "true") && !strings.EqualFold(v, "false") {
		errs = append(errs, fmt.Errorf("BREWLIST_BLOB_S3_PATH_STYLE must be true or false, got %q", v))
	}
	if s := getenv("HTTP_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be a positive duration, got %q", s))
		} else {
			cfg.HTTPTimeout = d
		}
	}
	if (cfg.Credentials.UserID == "") != (cfg.Credentials.APIKey == "") {
		errs = append(errs, errors.New("BREWFATHER_USER_ID and BREWFATHER_API_KEY must be set together"))
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return cfg, nil
}

// splitList reads a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
