package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the VivaBem+ backend
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// GeminiConfig holds the generative model upstream settings
type GeminiConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url"`
	Model     string  `mapstructure:"model"`
	Timeout   int     `mapstructure:"timeout"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// SMTPConfig holds caregiver e-mail delivery settings
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromName  string `mapstructure:"from_name"`
	FromEmail string `mapstructure:"from_email"`
}

// SchedulerConfig holds the daily report job settings
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DailySpec string `mapstructure:"daily_spec"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SecurityConfig holds CORS settings; authn itself lives in the upstream gateway
type SecurityConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.Set("storage.sqlite_path", filepath.Join(dataDir, "vivabem.db"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "vivabem.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (VIVABEM_SERVER_PORT, VIVABEM_GEMINI_API_KEY, etc.)
	v.SetEnvPrefix("VIVABEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", 60)
	v.SetDefault("gemini.rate_limit", 1.0)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "VivaBem+")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.daily_spec", "0 7 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("security.allow_origins", []string{"*"})
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vivabem")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "vivabem")
}

// loadEnvOverrides loads specific env vars that Viper doesn't handle well with nested structs
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := ResolveEnvWithAliases(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Gemini.APIKey = getEnv("VIVABEM_GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.BaseURL = getEnv("VIVABEM_GEMINI_BASE_URL", cfg.Gemini.BaseURL)
	cfg.Gemini.Model = getEnv("VIVABEM_GEMINI_MODEL", cfg.Gemini.Model)

	cfg.SMTP.Host = getEnv("VIVABEM_SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Username = getEnv("VIVABEM_SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("VIVABEM_SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.SMTP.FromEmail = getEnv("VIVABEM_SMTP_FROM_EMAIL", cfg.SMTP.FromEmail)
	if port := os.Getenv("VIVABEM_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.SMTP.Port = p
		}
	}

	cfg.Server.Address = getEnv("VIVABEM_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("VIVABEM_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("VIVABEM_STORAGE_DATA_DIR", cfg.Storage.DataDir)
	cfg.Scheduler.DailySpec = getEnv("VIVABEM_SCHEDULER_DAILY_SPEC", cfg.Scheduler.DailySpec)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	if cfg.Gemini.BaseURL == "" {
		return fmt.Errorf("gemini.base_url is required")
	}
	if cfg.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}

	// A missing API key is allowed at startup; the client rejects calls
	// until one is configured.

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics.port must differ from server.port")
	}

	return nil
}

// MailConfigured reports whether SMTP delivery can be attempted
func (c *Config) MailConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.Username != "" && c.SMTP.Password != ""
}
