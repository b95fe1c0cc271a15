package templatefn

import "github.com/goliatone/go-templatefn/internal/runtimeconfig"

var (
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrCacheCapacityInvalid    = runtimeconfig.ErrCacheCapacityInvalid
	ErrManifestPatternInvalid  = runtimeconfig.ErrManifestPatternInvalid
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrSyncCronRequiresStorage = runtimeconfig.ErrSyncCronRequiresStorage
)

type (
	Config          = runtimeconfig.Config
	FunctionsConfig = runtimeconfig.FunctionsConfig
	CacheConfig     = runtimeconfig.CacheConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CommandsConfig  = runtimeconfig.CommandsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
