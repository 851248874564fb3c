package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSecretEnv is the environment variable holding the signing secret
// when SecretEnv is not set.
const DefaultSecretEnv = "SIGNGATE_SECRET"

var (
	// ErrEmptySecret is returned when no non-empty secret is configured.
	ErrEmptySecret = errors.New("config: signing secret is empty")

	// ErrInvalidConfig is returned when a loaded configuration fails
	// validation.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config is the service configuration.
type Config struct {
	// Listen is the address of the public sign/verify listener.
	Listen string `yaml:"listen"`

	// AdminListen is the address serving /metrics and /healthz. Empty
	// disables the admin listener.
	AdminListen string `yaml:"admin_listen"`

	// MaxBodyBytes limits request bodies on the public listener.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// ReadHeaderTimeout bounds the time to read request headers.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// HostnameHeader enables the X-Server-Hostname response header.
	HostnameHeader bool `yaml:"hostname_header"`

	// SecretFile is a file containing the signing secret. A single
	// trailing newline is ignored.
	SecretFile string `yaml:"secret_file"`

	// SecretEnv names the environment variable holding the signing secret.
	SecretEnv string `yaml:"secret_env"`

	CORS CORS `yaml:"cors"`
	Log  Log  `yaml:"log"`
}

// CORS overrides the CORS headers sent with every response.
type CORS struct {
	AllowedOrigin  string   `yaml:"allowed_origin"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Log configures logging.
type Log struct {
	Level  string  `yaml:"level"`
	Format string  `yaml:"format"`
	File   LogFile `yaml:"file"`
}

// LogFile configures the rotated log file sink. An empty Path logs to
// stderr only.
type LogFile struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:            "127.0.0.1:6191",
		MaxBodyBytes:      1 << 20,
		ReadHeaderTimeout: 30 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		SecretEnv:         DefaultSecretEnv,
		CORS: CORS{
			AllowedOrigin:  "*",
			AllowedMethods: []string{"POST"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
			File: LogFile{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// Load reads the YAML file at path over Default, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}

		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse decodes YAML data into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("SIGNGATE_LISTEN"); ok && v != "" {
		c.Listen = v
	}

	if v, ok := os.LookupEnv("SIGNGATE_ADMIN_LISTEN"); ok {
		c.AdminListen = v
	}

	if v, ok := os.LookupEnv("SIGNGATE_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := os.LookupEnv("SIGNGATE_SECRET_FILE"); ok && v != "" {
		c.SecretFile = v
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Listen == "":
		return fmt.Errorf("%w: listen must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be greater than zero", ErrInvalidConfig)
	case c.ReadHeaderTimeout <= 0:
		return fmt.Errorf("%w: read_header_timeout must be greater than zero", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be greater than zero", ErrInvalidConfig)
	case c.CORS.AllowedOrigin == "":
		return fmt.Errorf("%w: cors.allowed_origin must not be empty", ErrInvalidConfig)
	case c.CORS.MaxAge < 0:
		return fmt.Errorf("%w: cors.max_age must not be negative", ErrInvalidConfig)
	case len(c.CORS.AllowedMethods) == 0 || slices.Contains(c.CORS.AllowedMethods, ""):
		return fmt.Errorf("%w: cors.allowed_methods must list at least one non-empty method", ErrInvalidConfig)
	case len(c.CORS.AllowedHeaders) == 0 || slices.Contains(c.CORS.AllowedHeaders, ""):
		return fmt.Errorf("%w: cors.allowed_headers must list at least one non-empty header", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format must be json or console, got %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// Secret resolves the signing secret: SecretFile first, then the environment
// variable named by SecretEnv. It returns ErrEmptySecret when neither yields
// a non-empty value.
func (c *Config) Secret() ([]byte, error) {
	if c.SecretFile != "" {
		data, err := os.ReadFile(c.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("config: read secret file: %w", err)
		}

		data = bytes.TrimSuffix(data, []byte("\n"))
		data = bytes.TrimSuffix(data, []byte("\r"))

		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySecret, c.SecretFile)
		}

		return data, nil
	}

	env := c.SecretEnv
	if env == "" {
		env = DefaultSecretEnv
	}

	if v := os.Getenv(env); v != "" {
		return []byte(v), nil
	}

	return nil, fmt.Errorf("%w: set %s or secret_file", ErrEmptySecret, env)
}
