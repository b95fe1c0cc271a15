package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	command "github.com/goliatone/go-command"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-templatefn/internal/cache"
	functionscmd "github.com/goliatone/go-templatefn/internal/commands/functions"
	"github.com/goliatone/go-templatefn/internal/functions"
	"github.com/goliatone/go-templatefn/internal/logging"
	"github.com/goliatone/go-templatefn/internal/logging/gologger"
	"github.com/goliatone/go-templatefn/internal/runtimeconfig"
	"github.com/goliatone/go-templatefn/internal/storage"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// ErrStorageDisabled is returned by storage operations when no repository is configured.
var ErrStorageDisabled = errors.New("di: function storage is not configured")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	cache          interfaces.CacheProvider
	metrics        interfaces.FunctionMetrics

	sqlDB      *sql.DB
	ownsSQLDB  bool
	bunDB      *bun.DB
	repository storage.Repository
	manifestFS fs.FS

	commandRegistry functionscmd.CommandRegistry
	cronRegistrar   functionscmd.CronRegistrar

	validator *functions.Validator
	registry  *functions.Registry
	invoker   *functions.Invoker
	service   *functions.Service
	handlers  *functionscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the result cache built from Config.Cache.
func WithCache(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cache = provider
	}
}

// WithMetrics wires a metrics recorder into the invoker and service.
func WithMetrics(metrics interfaces.FunctionMetrics) Option {
	return func(c *Container) {
		c.metrics = metrics
	}
}

// WithSQLDB supplies an open database handle used with Storage.Driver.
func WithSQLDB(db *sql.DB) Option {
	return func(c *Container) {
		c.sqlDB = db
	}
}

// WithBunDB supplies a ready Bun database, bypassing DSN handling.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepository overrides the function repository.
func WithRepository(repo storage.Repository) Option {
	return func(c *Container) {
		c.repository = repo
	}
}

// WithManifestFS reads template-defined function manifests from fsys instead of
// Functions.ManifestDir.
func WithManifestFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.manifestFS = fsys
	}
}

// WithCommandRegistry registers command handlers with reg when commands are enabled.
func WithCommandRegistry(reg functionscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the stored function sync when Commands.SyncCron is set.
func WithCronRegistrar(reg functionscmd.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	c := &Container{
		Config:    cfg,
		validator: functions.NewValidator(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	// An injected database stands in for Storage.DSN.
	if err := cfg.Validate(); err != nil {
		injected := c.sqlDB != nil || c.bunDB != nil
		if !injected || !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
			return nil, err
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		return nil, err
	}
	if c.metrics == nil {
		c.metrics = functions.NoOpMetrics()
	}

	c.registry = functions.NewRegistry(c.validator)
	if err := c.configureCatalogue(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		c.Close()
		return nil, err
	}

	c.invoker = functions.NewInvoker(c.registry, c.validator,
		functions.WithInvokerCache(c.cache),
		functions.WithInvokerMetrics(c.metrics),
	)
	c.service = functions.NewService(c.registry, c.invoker,
		functions.WithLogger(logging.FunctionsLogger(c.loggerProvider)),
		functions.WithMetrics(c.metrics),
	)

	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) != "gologger" {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: configure logger: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCache() error {
	if c.cache != nil || !c.Config.Cache.Enabled {
		return nil
	}
	svc, err := cache.New(cache.Config{
		DefaultTTL: c.Config.Cache.DefaultTTL,
		Capacity:   c.Config.Cache.Capacity,
	})
	if err != nil {
		return fmt.Errorf("di: configure cache: %w", err)
	}
	c.cache = svc
	return nil
}

func (c *Container) configureCatalogue() error {
	if !c.Config.Functions.DisableBuiltIns {
		if err := functions.RegisterBuiltIns(c.registry, c.Config.Functions.BuiltIns); err != nil {
			return err
		}
	}

	fsys := c.manifestFS
	if fsys == nil {
		dir := strings.TrimSpace(c.Config.Functions.ManifestDir)
		if dir == "" {
			return nil
		}
		fsys = os.DirFS(dir)
	}
	count, err := functions.RegisterFS(c.registry, fsys, c.Config.Functions.ManifestPattern)
	if err != nil {
		return err
	}
	logging.FunctionsLogger(c.loggerProvider).Debug("functions.manifests.loaded", "count", count)
	return nil
}

func (c *Container) configureStorage() error {
	if c.repository == nil {
		repo, err := c.buildRepository()
		if err != nil {
			return err
		}
		c.repository = repo
	}
	if c.repository == nil {
		return nil
	}
	_, err := c.SyncFunctions(context.Background())
	return err
}

func (c *Container) buildRepository() (storage.Repository, error) {
	driver := runtimeconfig.NormalizeDriver(c.Config.Storage.Driver)
	if c.bunDB == nil {
		switch driver {
		case "":
			return nil, nil
		case "memory":
			return storage.NewMemoryRepository(), nil
		}

		if c.sqlDB == nil {
			sqldb, err := sql.Open(driver, c.Config.Storage.DSN)
			if err != nil {
				return nil, fmt.Errorf("di: open %s storage: %w", driver, err)
			}
			c.sqlDB = sqldb
			c.ownsSQLDB = true
		}
		db, err := storage.NewBunDB(c.sqlDB, driver)
		if err != nil {
			return nil, err
		}
		c.bunDB = db
	}

	if err := storage.CreateSchema(context.Background(), c.bunDB); err != nil {
		return nil, fmt.Errorf("di: create function schema: %w", err)
	}
	logging.StorageLogger(c.loggerProvider).Debug("storage.bun.ready", "driver", driver)
	return storage.NewBunRepository(c.bunDB), nil
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}

	var opts []functionscmd.Option
	if c.repository != nil {
		opts = append(opts, functionscmd.WithSyncer(functionscmd.SyncFunc(c.SyncFunctions)))
	}
	set, err := functionscmd.RegisterFunctionCommands(c.commandRegistry, c.service, c.loggerProvider, opts...)
	if err != nil {
		return err
	}
	c.handlers = set

	expr := strings.TrimSpace(c.Config.Commands.SyncCron)
	if expr == "" || set.Sync == nil {
		return nil
	}
	return functionscmd.RegisterSyncCron(c.cronRegistrar, set.Sync,
		command.HandlerConfig{Expression: expr},
		functionscmd.SyncStoredFunctionsCommand{Reason: "cron"},
	)
}

// SyncFunctions reloads stored function manifests into the registry.
func (c *Container) SyncFunctions(ctx context.Context) (int, error) {
	if c.repository == nil {
		return 0, ErrStorageDisabled
	}
	return functions.SyncFromRepository(ctx, c.repository, c.registry)
}

// SaveFunction validates a manifest, registers it, and persists it.
func (c *Container) SaveFunction(ctx context.Context, source string) (interfaces.FunctionDefinition, error) {
	if c.repository == nil {
		return interfaces.FunctionDefinition{}, ErrStorageDisabled
	}
	def, err := functions.LoadDefinition([]byte(source))
	if err != nil {
		return interfaces.FunctionDefinition{}, err
	}
	if err := c.validator.ValidateDefinition(def); err != nil {
		return interfaces.FunctionDefinition{}, err
	}
	if _, err := c.repository.Upsert(ctx, def.Name, source); err != nil {
		return interfaces.FunctionDefinition{}, err
	}
	if err := c.registry.Replace(def); err != nil {
		return interfaces.FunctionDefinition{}, err
	}
	stored, _ := c.registry.Get(def.Name)
	return stored, nil
}

// DeleteFunction removes a stored function from storage and the registry.
func (c *Container) DeleteFunction(ctx context.Context, name string) error {
	if c.repository == nil {
		return ErrStorageDisabled
	}
	if err := c.repository.Delete(ctx, name); err != nil {
		return err
	}
	c.registry.Remove(name)
	return nil
}

// Close releases the database handle opened from Storage.DSN.
func (c *Container) Close() error {
	if c.ownsSQLDB && c.sqlDB != nil {
		err := c.sqlDB.Close()
		c.sqlDB = nil
		return err
	}
	return nil
}

// Service returns the function service.
func (c *Container) Service() *functions.Service {
	return c.service
}

// Registry returns the function registry.
func (c *Container) Registry() *functions.Registry {
	return c.registry
}

// Repository returns the function repository, or nil when storage is disabled.
func (c *Container) Repository() storage.Repository {
	return c.repository
}

// LoggerProvider returns the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// CommandHandlers returns the registered command handlers, or nil when commands are disabled.
func (c *Container) CommandHandlers() *functionscmd.HandlerSet {
	return c.handlers
}
