package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"originhash/internal/config"
	"originhash/internal/logging"
	"originhash/internal/origin"
)

type commandContext struct {
	flags   *globalFlags
	changed map[string]bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	runID string
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:   flags,
		changed: map[string]bool{},
		runID:   uuid.NewString(),
	}
}

// bindFlags records which persistent flags were set explicitly so that only
// those override the configuration file.
func (c *commandContext) bindFlags(cmd *cobra.Command) {
	for _, name := range []string{"format", "color", "scheme", "jobs", "chunk-size", "follow-symlinks", "keep-going", "log-level"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			c.changed[name] = true
		}
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = newUsageError(err)
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = newUsageError(err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) {
	f := c.flags
	if c.changed["format"] {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(f.format))
	}
	if c.changed["color"] {
		cfg.Output.Color = strings.ToLower(strings.TrimSpace(f.color))
	}
	if c.changed["scheme"] {
		cfg.Hashing.Scheme = strings.ToLower(strings.TrimSpace(f.scheme))
	}
	if c.changed["jobs"] {
		cfg.Hashing.Jobs = f.jobs
	}
	if c.changed["chunk-size"] {
		cfg.Hashing.ChunkSizeMiB = f.chunkSizeMiB
	}
	if c.changed["follow-symlinks"] {
		cfg.Hashing.FollowSymlinks = f.followSymlinks
	}
	if c.changed["log-level"] {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(f.logLevel))
	}
}

func (c *commandContext) keepGoing() bool {
	return c.flags.keepGoing
}

// ensureLogger builds the logger once from the [logging] section.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// newHasher builds a Hasher from the effective configuration. Progress is
// logged at debug level, sampled per source in 10% steps.
func (c *commandContext) newHasher(logger *slog.Logger) (*origin.Hasher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	chunk, err := cfg.ChunkSizeBytes()
	if err != nil {
		return nil, newUsageError(err)
	}
	progressLogger := logging.NewComponentLogger(logger, "progress")
	sampler := logging.NewProgressSampler(10)
	return origin.New(
		origin.WithChunkSize(chunk),
		origin.WithFollowSymlinks(cfg.Hashing.FollowSymlinks),
		origin.WithLogger(logging.NewComponentLogger(logger, "origin")),
		origin.WithProgress(func(p origin.Progress) {
			if !sampler.ShouldLog(p.Root, p.Percent()) {
				return
			}
			progressLogger.Debug("hashing progress",
				logging.Args(
					logging.String(logging.FieldSource, p.Root),
					logging.String(logging.FieldEntry, p.Entry),
					logging.Float64("percent", p.Percent()),
					logging.String("done", humanBytes(p.Done)),
					logging.String("total", humanBytes(p.Total)),
				)...,
			)
		}),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
