package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"originhash/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a default config whose log directory lives in a
// per-test temp directory, then applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithScheme selects the digest scheme on the test config.
func WithScheme(scheme string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hashing.Scheme = scheme
	}
}

// WithChunkSizeMiB overrides the streaming chunk size.
func WithChunkSizeMiB(mib int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hashing.ChunkSizeMiB = mib
	}
}

// WithLogDir points logging.dir at a fresh directory under the test base.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// WriteConfigFile encodes cfg as TOML into dir and returns the file path.
func WriteConfigFile(t testing.TB, dir string, cfg *config.Config) string {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
