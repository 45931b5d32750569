// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration shared across the application
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	AI     AIConfig     `yaml:"ai"`
	Editor EditorConfig `yaml:"editor"`
	Log    LogConfig    `yaml:"log"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins  string        `yaml:"allowedOrigins"`
	AllowedMethods  string        `yaml:"allowedMethods"`
	AllowedHeaders  string        `yaml:"allowedHeaders"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	HostUsername string        `yaml:"hostUsername"`
	HostPassword string        `yaml:"hostPassword"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenTTL     time.Duration `yaml:"tokenTtl"`
}

type EditorConfig struct {
	// SessionTTL is how long an idle editor session survives in Redis
	SessionTTL time.Duration `yaml:"sessionTtl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            "8080",
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  "*",
			AllowedMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
			AllowedHeaders:  "Content-Type, Authorization",
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "evalforge",
			ConnectTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			HostUsername: "admin",
			HostPassword: "password123",
			JWTSecret:    "super-secret-key-change-in-production",
			TokenTTL:     7 * 24 * time.Hour,
		},
		AI:     DefaultAIConfig(),
		Editor: EditorConfig{SessionTTL: 12 * time.Hour},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.HTTP.Port = getEnv("PORT", c.HTTP.Port)
	c.HTTP.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.HTTP.AllowedOrigins)
	c.HTTP.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.HTTP.AllowedMethods)
	c.HTTP.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.HTTP.AllowedHeaders)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)

	// Remove redis:// prefix if present
	c.Redis.Addr = strings.TrimPrefix(getEnv("REDIS_URI", c.Redis.Addr), "redis://")
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Auth.HostUsername = getEnv("HOST_USERNAME", c.Auth.HostUsername)
	c.Auth.HostPassword = getEnv("HOST_PASSWORD", c.Auth.HostPassword)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.AI.APIKey = getEnv("GEMINI_API_KEY", c.AI.APIKey)
	c.AI.Models.Template = getEnv("GEMINI_MODEL_TEMPLATE", c.AI.Models.Template)
	c.AI.Models.Formula = getEnv("GEMINI_MODEL_FORMULA", c.AI.Models.Formula)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("EDITOR_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid EDITOR_SESSION_TTL %q: %w", v, err)
		}
		c.Editor.SessionTTL = ttl
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
