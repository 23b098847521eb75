package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFS     = "fs"
	BackendBadger = "badger"
)

// Export formats.
const (
	FormatOrg = "org"
	FormatZip = "zip"
)

// Config is the user-facing configuration, read from a YAML file and
// overridden by HARP_* environment variables.
type Config struct {
	DataDir string `yaml:"data_dir" validate:"required"`
	// Backend selects where profiles live: plain org files or a Badger database.
	Backend string `yaml:"backend" validate:"oneof=fs badger"`
	// Versioned commits every change to git (fs backend only).
	Versioned bool `yaml:"versioned"`
	// Serializer is the Badger value encoding.
	Serializer string `yaml:"serializer" validate:"oneof=json codec"`
	// Format is the default export format.
	Format   string `yaml:"format" validate:"oneof=org zip"`
	Timezone string `yaml:"timezone" validate:"omitempty,tzname"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	ReadOnly bool   `yaml:"read_only"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DataDir:    defaultDataDir(),
		Backend:    BackendFS,
		Serializer: "json",
		Format:     FormatOrg,
		LogLevel:   "info",
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "harp-data"
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "harp")
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "harp", "config.yaml")
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path, then the environment. An empty path reads DefaultConfigPath when it
// exists; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	return loadWith(path, os.Getenv)
}

func loadWith(path string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	applyEnvOverrides(&cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("HARP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("HARP_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := getenv("HARP_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := getenv("HARP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field values and reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Location returns the zone in which profile timestamps are read.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
