package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/uriel/internal/validation"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
	Media   MediaConfig   `mapstructure:"media"`
	Keys    KeyConfig     `mapstructure:"keys"`
}

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	AllowPrivate bool          `mapstructure:"allow_private"`
}

type CatalogConfig struct {
	// DownloadFailurePolicy is "keep" or "rollback".
	DownloadFailurePolicy string `mapstructure:"download_failure_policy"`
	// RefreshOrdering is "last_response" or "latest_request".
	RefreshOrdering string `mapstructure:"refresh_ordering"`
}

type SeedConfig struct {
	File        string `mapstructure:"file"`
	Concurrency int    `mapstructure:"concurrency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Video []string `mapstructure:"video"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Search     string `mapstructure:"search"`
	Refresh    string `mapstructure:"refresh"`
	Download   string `mapstructure:"download"`
	Watch      string `mapstructure:"watch"`
	Seed       string `mapstructure:"seed"`
	GetStarted string `mapstructure:"get_started"`
	Back       string `mapstructure:"back"`
}

// DefaultBaseURL is the catalog service address used when nothing is configured.
const DefaultBaseURL = "http://localhost:8000"

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:      DefaultBaseURL,
			HTTPTimeout:  30 * time.Second,
			UserAgent:    "uriel/1.0 (https://github.com/pders01/uriel)",
			AllowPrivate: true,
		},
		Catalog: CatalogConfig{
			DownloadFailurePolicy: "keep",
			RefreshOrdering:       "last_response",
		},
		Seed: SeedConfig{
			Concurrency: 1,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".uriel", "uriel.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#D946EF",
				Secondary: "#06B6D4",
				Accent:    "#F0ABFC",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Video: []string{"iina", "mpv", "vlc"},
			},
			Linux: MediaPlayers{
				Video: []string{"mpv", "vlc", "mplayer"},
			},
			Windows: MediaPlayers{
				Video: []string{"mpv", "vlc"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "q",
				Search:     "/",
				Refresh:    "r",
				Download:   "d",
				Watch:      "w",
				Seed:       "s",
				GetStarted: "g",
				Back:       "esc",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Load reads configuration from configPath, or from the default locations
// when it is empty. Environment variables prefixed URIEL_ override file
// values (URIEL_API_BASE_URL for api.base_url).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "uriel")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("URIEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := expandPaths(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// leafSettings flattens cfg into dotted viper keys. Registering leaves
// individually lets partial config files and environment overrides merge
// with the defaults key by key.
func leafSettings(cfg *Config) map[string]interface{} {
	c := cfg.UI.Colors
	k := cfg.Keys.Bindings
	return map[string]interface{}{
		"api.base_url":      cfg.API.BaseURL,
		"api.http_timeout":  cfg.API.HTTPTimeout,
		"api.user_agent":    cfg.API.UserAgent,
		"api.allow_private": cfg.API.AllowPrivate,

		"catalog.download_failure_policy": cfg.Catalog.DownloadFailurePolicy,
		"catalog.refresh_ordering":        cfg.Catalog.RefreshOrdering,

		"seed.file":        cfg.Seed.File,
		"seed.concurrency": cfg.Seed.Concurrency,

		"log.level": cfg.Log.Level,
		"log.file":  cfg.Log.File,

		"ui.colors.primary":   c.Primary,
		"ui.colors.secondary": c.Secondary,
		"ui.colors.accent":    c.Accent,
		"ui.colors.text":      c.Text,
		"ui.colors.muted":     c.Muted,
		"ui.colors.error":     c.Error,
		"ui.colors.success":   c.Success,

		"media.darwin.video":   cfg.Media.Darwin.Video,
		"media.linux.video":    cfg.Media.Linux.Video,
		"media.windows.video":  cfg.Media.Windows.Video,
		"media.default_opener": cfg.Media.DefaultOpener,

		"keys.modifier":             cfg.Keys.Modifier,
		"keys.bindings.quit":        k.Quit,
		"keys.bindings.search":      k.Search,
		"keys.bindings.refresh":     k.Refresh,
		"keys.bindings.download":    k.Download,
		"keys.bindings.watch":       k.Watch,
		"keys.bindings.seed":        k.Seed,
		"keys.bindings.get_started": k.GetStarted,
		"keys.bindings.back":        k.Back,
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range leafSettings(cfg) {
		v.SetDefault(key, value)
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Catalog.DownloadFailurePolicy {
	case "", "keep", "rollback":
	default:
		return fmt.Errorf("catalog.download_failure_policy: unknown value %q (want keep or rollback)", c.Catalog.DownloadFailurePolicy)
	}
	switch c.Catalog.RefreshOrdering {
	case "", "last_response", "latest_request":
	default:
		return fmt.Errorf("catalog.refresh_ordering: unknown value %q (want last_response or latest_request)", c.Catalog.RefreshOrdering)
	}
	if c.Seed.Concurrency < 0 {
		return fmt.Errorf("seed.concurrency must not be negative")
	}
	if _, err := validation.NewServiceURLValidator(c.API.AllowPrivate).ValidateAndNormalize(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	return nil
}

// expandPaths resolves the configured file paths in place.
func expandPaths(cfg *Config) error {
	logFile, err := validation.FilePath(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("log.file: %w", err)
	}
	seedFile, err := validation.FilePath(cfg.Seed.File)
	if err != nil {
		return fmt.Errorf("seed.file: %w", err)
	}
	cfg.Log.File = logFile
	cfg.Seed.File = seedFile
	return nil
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range leafSettings(config) {
		// Durations as strings for TOML readability
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultPath returns ~/.config/uriel/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "uriel", "config.toml")
}
