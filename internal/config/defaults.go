package config

const (
	defaultConfigPath     = "~/.config/originhash/config.toml"
	projectConfigName     = "originhash.toml"
	defaultChunkSizeMiB   = 16
	maxChunkSizeMiB       = 1024
	defaultScheme         = "origin"
	defaultFollowSymlinks = true
	defaultOutputFormat   = "text"
	defaultOutputColor    = "auto"
	defaultLogFormat      = "console"
	defaultLogLevel       = "warn"
	envLogLevel           = "ORIGINHASH_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Hashing: Hashing{
			ChunkSizeMiB:   defaultChunkSizeMiB,
			Scheme:         defaultScheme,
			FollowSymlinks: defaultFollowSymlinks,
		},
		Output: Output{
			Format: defaultOutputFormat,
			Color:  defaultOutputColor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
