package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	Data     DataConfig     `toml:"data"`
	Extract  ExtractConfig  `toml:"extract"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	// Enabled gates bearer-token validation on /api. The sign-in flow
	// itself lives entirely in the external identity provider.
	Enabled   bool   `toml:"enabled"`
	JWTSecret string `toml:"jwt_secret"`
}

type DataConfig struct {
	// Dir holds the JSON documents (accelerators, slidedecks, videos,
	// userPreferences, audit).
	Dir string `toml:"dir"`
	// PublicDir is the statically served tree; uploads land under
	// PublicDir/presentations, extraction output under
	// PublicDir/presentations/slides.
	PublicDir   string `toml:"public_dir"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type ExtractConfig struct {
	Python      string `toml:"python"`      // explicit interpreter, skips probing
	VenvPython  string `toml:"venv_python"` // probed first when set
	MaxOutputMB int    `toml:"max_output_mb"`
}

type RedisConfig struct {
	// Addr empty disables the content cache.
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	ContentTTLSeconds int    `toml:"content_ttl_seconds"`
}

type RabbitMQConfig struct {
	// URL empty disables event publishing and the audit worker.
	URL        string `toml:"url"`
	EventQueue string `toml:"event_queue"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) PresentationsDir() string {
	return filepath.Join(c.Data.PublicDir, "presentations")
}

func (c *Config) SlidesDir() string {
	return filepath.Join(c.PresentationsDir(), "slides")
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Data.MaxUploadMB) << 20
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "accel-catalog",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    3001,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			Enabled:   false,
			JWTSecret: "change-me-in-production",
		},
		Data: DataConfig{
			Dir:         "data",
			PublicDir:   "public",
			MaxUploadMB: 100,
		},
		Extract: ExtractConfig{
			Python:      "",
			VenvPython:  filepath.Join("venv", "bin", "python"),
			MaxOutputMB: 50,
		},
		Redis: RedisConfig{
			Addr:              "",
			Password:          "",
			DB:                0,
			ContentTTLSeconds: 300,
		},
		RabbitMQ: RabbitMQConfig{
			URL:        "",
			EventQueue: "catalog.events",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Auth.Enabled = getEnvAsBool("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)

	cfg.Data.Dir = getEnv("DATA_DIR", cfg.Data.Dir)
	cfg.Data.PublicDir = getEnv("PUBLIC_DIR", cfg.Data.PublicDir)
	cfg.Data.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", cfg.Data.MaxUploadMB)

	cfg.Extract.Python = getEnv("EXTRACT_PYTHON", cfg.Extract.Python)
	cfg.Extract.VenvPython = getEnv("EXTRACT_VENV_PYTHON", cfg.Extract.VenvPython)
	cfg.Extract.MaxOutputMB = getEnvAsInt("EXTRACT_MAX_OUTPUT_MB", cfg.Extract.MaxOutputMB)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ContentTTLSeconds = getEnvAsInt("REDIS_CONTENT_TTL_SECONDS", cfg.Redis.ContentTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventQueue = getEnv("RABBITMQ_EVENT_QUEUE", cfg.RabbitMQ.EventQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
