package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrLoggingProviderUnknown = errors.New("templatefn config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("templatefn config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("templatefn config: logging format is invalid")
var ErrCacheTTLInvalid = errors.New("templatefn config: cache ttl must be zero or positive")
var ErrCacheCapacityInvalid = errors.New("templatefn config: cache capacity must be zero or positive")
var ErrManifestPatternInvalid = errors.New("templatefn config: manifest pattern is empty")
var ErrStorageDriverUnknown = errors.New("templatefn config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("templatefn config: storage dsn is required for sql drivers")

// ErrSyncCronRequiresStorage guards the stored function sync schedule.
var ErrSyncCronRequiresStorage = errors.New("templatefn config: sync cron requires a sql storage driver")

// Config aggregates the options used to assemble a function module.
type Config struct {
	Functions FunctionsConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Commands  CommandsConfig
	Logging   LoggingConfig
}

// FunctionsConfig selects the catalogue loaded at start-up.
type FunctionsConfig struct {
	// BuiltIns limits the built-in catalogue; empty registers every built-in.
	BuiltIns []string
	// DisableBuiltIns skips the built-in catalogue entirely.
	DisableBuiltIns bool
	// ManifestDir is scanned for template-defined function manifests when set.
	ManifestDir     string
	ManifestPattern string
}

// CacheConfig captures result cache behaviour for pure functions.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
	// Capacity bounds the number of cached results per TTL.
	Capacity int
}

// StorageConfig selects where template-defined functions are persisted.
type StorageConfig struct {
	// Driver is memory, sqlite3, or postgres. Empty disables storage.
	Driver string
	DSN    string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	// SyncCron is a cron expression for reloading stored functions.
	SyncCron string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	// Provider is gologger or none.
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults with every built-in enabled and no storage.
func DefaultConfig() Config {
	return Config{
		Functions: FunctionsConfig{
			ManifestPattern: "*.tmpl",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
			Capacity:   10000,
		},
		Storage: StorageConfig{},
		Logging: LoggingConfig{
			Provider: "none",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Cache.DefaultTTL < 0 {
		return fmt.Errorf("%w: %s", ErrCacheTTLInvalid, cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.Capacity < 0 {
		return fmt.Errorf("%w: %d", ErrCacheCapacityInvalid, cfg.Cache.Capacity)
	}
	if strings.TrimSpace(cfg.Functions.ManifestDir) != "" && strings.TrimSpace(cfg.Functions.ManifestPattern) == "" {
		return ErrManifestPatternInvalid
	}

	driver := NormalizeDriver(cfg.Storage.Driver)
	switch driver {
	case "", "memory":
	case "sqlite3", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Commands.SyncCron) != "" && (driver == "" || driver == "memory") {
		return ErrSyncCronRequiresStorage
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// NormalizeDriver maps driver aliases onto memory, sqlite3, or postgres.
func NormalizeDriver(driver string) string {
	switch value := strings.ToLower(strings.TrimSpace(driver)); value {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pg", "pgx":
		return "postgres"
	default:
		return value
	}
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "none"
	}
	return provider
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "none", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
