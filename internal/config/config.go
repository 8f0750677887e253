package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string
	GinMode  string

	StoreDriver string
	SQLitePath  string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisPrefix   string

	SessionStore  string
	SessionSecret string

	Timezone string
	Location *time.Location

	LogLevel  string
	LogFormat string

	WeatherAPIKey  string
	WeatherBaseURL string
	OpenAIAPIKey   string

	LoginRatePerMinute int
}

var defaults = map[string]any{
	"HTTP_ADDR":             ":8080",
	"GIN_MODE":              "debug",
	"STORE_DRIVER":          "sqlite",
	"SQLITE_PATH":           "taskflow.db",
	"DB_HOST":               "localhost",
	"DB_PORT":               "3306",
	"DB_USER":               "taskuser",
	"DB_PASSWORD":           "taskpassword",
	"DB_NAME":               "taskflow",
	"REDIS_HOST":            "localhost",
	"REDIS_PORT":            "6379",
	"REDIS_PASSWORD":        "",
	"REDIS_PREFIX":          "taskflow:",
	"SESSION_STORE":         "cookie",
	"SESSION_SECRET":        "default-secret-key-change-me",
	"TIMEZONE":              "Local",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "console",
	"WEATHER_API_KEY":       "",
	"WEATHER_BASE_URL":      "https://api.openweathermap.org",
	"OPENAI_API_KEY":        "",
	"LOGIN_RATE_PER_MINUTE": 10,
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory and then to the built-in defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		GinMode:            v.GetString("GIN_MODE"),
		StoreDriver:        v.GetString("STORE_DRIVER"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetString("REDIS_PORT"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisPrefix:        v.GetString("REDIS_PREFIX"),
		SessionStore:       v.GetString("SESSION_STORE"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		Timezone:           v.GetString("TIMEZONE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		WeatherAPIKey:      v.GetString("WEATHER_API_KEY"),
		WeatherBaseURL:     v.GetString("WEATHER_BASE_URL"),
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "sqlite", "mysql", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}

	if c.GinMode == "release" && c.SessionSecret == defaults["SESSION_SECRET"] {
		return fmt.Errorf("SESSION_SECRET must be changed in release mode")
	}

	if c.LoginRatePerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive")
	}

	return nil
}

// RedisAddr returns the host:port pair of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
