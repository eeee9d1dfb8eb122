package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all MedScribe configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Provider ProviderConfig `toml:"provider"`
	Prompt   PromptConfig   `toml:"prompt"`
	Intake   IntakeConfig   `toml:"intake"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr              string   `toml:"addr"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ReadTimeout       Duration `toml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout"`
}

type ProviderConfig struct {
	// Kind is "openai" for any OpenAI-compatible endpoint, or "mock".
	Kind        string   `toml:"kind"`
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Temperature *float64 `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
	MockLatency Duration `toml:"mock_latency"`
}

type PromptConfig struct {
	Version string `toml:"version"`
}

type IntakeConfig struct {
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	AcceptPDF      bool   `toml:"accept_pdf"`
	SpoolDir       string `toml:"spool_dir"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":5000",
			ReadHeaderTimeout: Duration{5 * time.Second},
			ReadTimeout:       Duration{30 * time.Second},
			WriteTimeout:      Duration{2 * time.Minute},
			IdleTimeout:       Duration{2 * time.Minute},
		},
		Provider: ProviderConfig{
			Kind:        "openai",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			APIKeyEnv:   "OPENAI_API_KEY",
			Timeout:     Duration{60 * time.Second},
			MockLatency: Duration{500 * time.Millisecond},
		},
		Prompt: PromptConfig{
			Version: "dual-v2",
		},
		Intake: IntakeConfig{
			MaxUploadBytes: 10 << 20,
			AcceptPDF:      true,
			SpoolDir:       filepath.Join(os.TempDir(), "medscribe-uploads"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .env, then the config file, then environment overrides.
// An explicit path must exist; otherwise the first candidate path found is
// used, falling back to defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path == "" {
		for _, c := range configPaths() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.Intake.SpoolDir = expandHome(cfg.Intake.SpoolDir)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if v := os.Getenv("MEDSCRIBE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MEDSCRIBE_PROVIDER"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := os.Getenv("MEDSCRIBE_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("MEDSCRIBE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MEDSCRIBE_ACCEPT_PDF"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MEDSCRIBE_ACCEPT_PDF: %w", err)
		}
		cfg.Intake.AcceptPDF = b
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch c.Provider.Kind {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}
	if c.Provider.Model == "" {
		return errors.New("provider.model must be set")
	}
	if c.Intake.MaxUploadBytes <= 0 {
		return errors.New("intake.max_upload_bytes must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// APIKey resolves the provider key from the environment variable named in
// the config. The key itself is never stored in the config file.
func (c Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}

// SlogLevel maps the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func configPaths() []string {
	paths := []string{"medscribe.toml"}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "medscribe", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "medscribe", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
