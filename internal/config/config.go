package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	UI       UIConfig       `mapstructure:"ui"`
	Poll     PollConfig     `mapstructure:"poll"`
	Brreg    BrregConfig    `mapstructure:"brreg"`
}

// APIConfig holds the backend connection and the placeholder identities
// used until real auth lands.
type APIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	ClientID string `mapstructure:"client_id"`
	UserID   string `mapstructure:"user_id"`
}

// DatabaseConfig holds the local sqlite preference store path.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds chat provider settings.
type LLMConfig struct {
	Provider  string `mapstructure:"provider"` // backend | openai
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string `mapstructure:"timezone"`
	DownloadDir    string `mapstructure:"download_dir"`
}

// PollConfig holds per-view refresh intervals in seconds.
type PollConfig struct {
	QueueSeconds     int `mapstructure:"queue_seconds"`
	DashboardSeconds int `mapstructure:"dashboard_seconds"`
	BankSeconds      int `mapstructure:"bank_seconds"`
}

// BrregConfig holds the Brønnøysund registry lookup settings.
type BrregConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from file and env. Env var overrides use prefix KONSOLE_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.client_id", "demo-client")
	v.SetDefault("api.user_id", "demo-user")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "konsole", "konsole.db"))
	v.SetDefault("llm.provider", "backend")
	v.SetDefault("llm.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("ui.date_format", "02.01.2006")
	v.SetDefault("ui.currency_symbol", "kr")
	v.SetDefault("ui.timezone", "Europe/Oslo")
	v.SetDefault("ui.download_dir", filepath.Join(os.Getenv("HOME"), "Downloads", "kontali"))
	v.SetDefault("poll.queue_seconds", 5)
	v.SetDefault("poll.dashboard_seconds", 30)
	v.SetDefault("poll.bank_seconds", 30)
	v.SetDefault("brreg.base_url", "https://data.brreg.no")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("KONSOLE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "konsole"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("KONSOLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI settings view. The LLM API key itself goes to the
// secret store, not here.
func Save(cfg Config) error {
	path := os.Getenv("KONSOLE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "konsole", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.client_id", cfg.API.ClientID)
	v.Set("api.user_id", cfg.API.UserID)
	v.Set("database.path", cfg.Database.Path)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.download_dir", cfg.UI.DownloadDir)
	v.Set("poll.queue_seconds", cfg.Poll.QueueSeconds)
	v.Set("poll.dashboard_seconds", cfg.Poll.DashboardSeconds)
	v.Set("poll.bank_seconds", cfg.Poll.BankSeconds)
	v.Set("brreg.base_url", cfg.Brreg.BaseURL)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
