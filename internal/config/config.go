package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dshills/crev/internal/providers"
)

// Config represents the crev configuration.
type Config struct {
	Provider     string        `toml:"provider"`
	Model        string        `toml:"model,omitempty"`
	BaseURL      string        `toml:"base_url,omitempty"`
	Temperature  float64       `toml:"temperature"`
	MaxTokens    int           `toml:"max_tokens"`
	MaxHistory   int           `toml:"max_history"`
	MaxFileBytes int64         `toml:"max_file_bytes"`
	TimeoutSecs  int           `toml:"timeout_seconds"`
	Format       string        `toml:"format"`
	FailOn       string        `toml:"fail_on"`
	Cache        CacheConfig   `toml:"cache"`
	Privacy      PrivacyConfig `toml:"privacy"`
	Log          LogConfig     `toml:"log"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir,omitempty"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// PrivacyConfig controls what is scrubbed before code leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `toml:"redact_secrets"`
	RedactPaths   []string `toml:"redact_paths,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Formats and FailOnLevels list the accepted values for those keys.
var (
	Formats      = []string{"text", "markdown", "json"}
	FailOnLevels = []string{"none", "low", "medium", "high", "critical"}
	LogLevels    = []string{"debug", "info", "warn", "error"}
)

// Default returns a Config with all defaults applied. An empty Model selects
// the provider's default model.
func Default() Config {
	return Config{
		Provider:     "github",
		Temperature:  0.3,
		MaxTokens:    2048,
		MaxHistory:   40,
		MaxFileBytes: 200_000,
		TimeoutSecs:  120,
		Format:       "text",
		FailOn:       "none",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*", "**/*.pem"},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for crev.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crev"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "crev"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "crev"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "crev"), nil
	default:
		return filepath.Join(home, ".config", "crev"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the file
// keep their current values. A missing file is not an error.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// LoadDotEnv loads .env from the working directory without overriding
// variables that are already set. A missing file is ignored.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load builds the effective config by merging:
// defaults <- config file <- env (.env included) <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path, overrides)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string, overrides map[string]string) (Config, error) {
	cfg := Default()
	if err := LoadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	// The provider decides which model variable applies, so settle it first.
	if v := overrides["provider"]; v != "" {
		cfg.Provider = v
	}
	mergeModelEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if cfg.Model == "" {
		cfg.Model = providers.DefaultModel(cfg.Provider)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("CREV_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CREV_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CREV_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CREV_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("CREV_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHistory = n
		}
	}
	if v := os.Getenv("CREV_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// mergeModelEnv applies the model variable of the selected provider.
// CREV_MODEL wins over the provider-specific one.
func mergeModelEnv(cfg *Config) {
	switch cfg.Provider {
	case "github", "copilot", "":
		if v := os.Getenv("COPILOT_MODEL"); v != "" {
			cfg.Model = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_MODEL"); v != "" {
			cfg.Model = v
		}
	}
	if v := os.Getenv("CREV_MODEL"); v != "" {
		cfg.Model = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for _, key := range []string{"provider", "model", "baseURL", "format", "failOn", "log.level", "log.format", "maxHistory", "temperature", "maxTokens"} {
		v, ok := overrides[key]
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	if overrides["noCache"] == "true" {
		cfg.Cache.Enabled = false
	}
	if overrides["noRedact"] == "true" {
		cfg.Privacy.RedactSecrets = false
	}
	return nil
}

// Validate checks enumerated and numeric fields.
func Validate(cfg Config) error {
	if !contains(providers.Known, cfg.Provider) && cfg.Provider != "copilot" {
		return fmt.Errorf("unknown provider %q (valid: %s)", cfg.Provider, strings.Join(providers.Known, ", "))
	}
	if !contains(Formats, cfg.Format) {
		return fmt.Errorf("invalid format %q (valid: %s)", cfg.Format, strings.Join(Formats, ", "))
	}
	if !contains(FailOnLevels, cfg.FailOn) {
		return fmt.Errorf("invalid failOn %q (valid: %s)", cfg.FailOn, strings.Join(FailOnLevels, ", "))
	}
	if !contains(LogLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level %q (valid: %s)", cfg.Log.Level, strings.Join(LogLevels, ", "))
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q (valid: text, json)", cfg.Log.Format)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", cfg.Temperature)
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.MaxHistory == 1 {
		return fmt.Errorf("maxHistory must be 0 (unbounded) or at least 2, got %d", cfg.MaxHistory)
	}
	return nil
}

// Keys lists the names accepted by SetField.
var Keys = []string{
	"provider", "model", "baseURL", "temperature", "maxTokens", "maxHistory",
	"maxFileBytes", "timeoutSeconds", "format", "failOn",
	"cache.enabled", "cache.dir", "cache.ttlSeconds",
	"privacy.redactSecrets", "privacy.redactPaths",
	"log.level", "log.format",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "baseURL":
		cfg.BaseURL = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "maxHistory":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxHistory must be an integer: %w", err)
		}
		cfg.MaxHistory = n
	case "maxFileBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSecs = n
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be true or false: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be true or false: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.format":
		cfg.Log.Format = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
