package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	SessionStore  string `yaml:"session_store"`
	SessionSecret string `yaml:"session_secret"`

	GinMode      string `yaml:"gin_mode"`
	OpenAIAPIKey string `yaml:"openai_api_key"`

	AppURL      string `yaml:"app_url"`
	FrontendURL string `yaml:"frontend_url"`

	MailDriver      string `yaml:"mail_driver"`
	MailFromAddress string `yaml:"mail_from_address"`
	MailFromName    string `yaml:"mail_from_name"`
	MailgunDomain   string `yaml:"mailgun_domain"`
	MailgunSecret   string `yaml:"mailgun_secret"`
	MailgunEndpoint string `yaml:"mailgun_endpoint"`

	ReminderDays int `yaml:"reminder_days"`
}

// Load reads configuration from the environment. When CONFIG_FILE is set
// the YAML file is applied first and environment variables win over it.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the
// file.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.ReminderDays < 0 {
		return nil, fmt.Errorf("reminder_days must not be negative, got %d", cfg.ReminderDays)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:            "8080",
		DBDriver:        "mysql",
		DBHost:          "localhost",
		DBPort:          "3306",
		DBUser:          "taskuser",
		DBPassword:      "taskpassword",
		DBName:          "task_management",
		RedisHost:       "localhost",
		RedisPort:       "6379",
		SessionStore:    "redis",
		SessionSecret:   "default-secret-key-change-me",
		GinMode:         "debug",
		AppURL:          "http://localhost:8080",
		FrontendURL:     "http://localhost:5173",
		MailDriver:      "log",
		MailFromAddress: "noreply@example.com",
		MailFromName:    "Task Management",
		MailgunEndpoint: "api.mailgun.net",
		ReminderDays:    1,
	}
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.SessionStore = getEnv("SESSION_STORE", cfg.SessionStore)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.AppURL = getEnv("APP_URL", cfg.AppURL)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.MailDriver = getEnv("MAIL_DRIVER", cfg.MailDriver)
	cfg.MailFromAddress = getEnv("MAIL_FROM_ADDRESS", cfg.MailFromAddress)
	cfg.MailFromName = getEnv("MAIL_FROM_NAME", cfg.MailFromName)
	cfg.MailgunDomain = getEnv("MAILGUN_DOMAIN", cfg.MailgunDomain)
	cfg.MailgunSecret = getEnv("MAILGUN_SECRET", cfg.MailgunSecret)
	cfg.MailgunEndpoint = getEnv("MAILGUN_ENDPOINT", cfg.MailgunEndpoint)
	cfg.ReminderDays = getEnvInt("REMINDER_DAYS", cfg.ReminderDays)
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
