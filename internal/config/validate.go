package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHashing(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateHashing() error {
	if c.Hashing.ChunkSizeMiB < 1 || c.Hashing.ChunkSizeMiB > maxChunkSizeMiB {
		return fmt.Errorf("hashing.chunk_size_mib must be between 1 and %d, got %d", maxChunkSizeMiB, c.Hashing.ChunkSizeMiB)
	}
	if c.Hashing.Jobs < 0 {
		return fmt.Errorf("hashing.jobs must be >= 0, got %d", c.Hashing.Jobs)
	}
	switch c.Hashing.Scheme {
	case "origin", "h1":
	default:
		return fmt.Errorf("hashing.scheme must be origin or h1, got %q", c.Hashing.Scheme)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "text", "table", "json":
	default:
		return fmt.Errorf("output.format must be text, table, or json, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always, or never, got %q", c.Output.Color)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
