package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

// Notifier channels
const (
	ChannelTelegram = "telegram"
	ChannelWhatsApp = "whatsapp"
)

// Config store backends
const (
	StoreRedis  = "redis"
	StoreGitHub = "github"
)

// Config holds all application configuration. It is built once by Load and not mutated afterwards,
// except by WithStoredState which returns a copy.
type Config struct {
	Env             string
	ScrapingEnabled bool
	Window          entities.TimeWindow
	Dates           DateConfig
	Calendis        CalendisConfig
	Notifier        NotifierConfig
	ConfigStore     ConfigStoreConfig
	Redis           RedisConfig
	GitHub          GitHubConfig
	Database        DatabaseConfig
	OTEL            OTELConfig
}

// DateConfig holds the raw date-selection settings. They are interpreted, and malformed
// entries reported, by the date selector at run time.
type DateConfig struct {
	SpecificDays string
	DaysAhead    string
}

// CalendisConfig holds the remote booking API configuration
type CalendisConfig struct {
	BaseURL        string
	LoginURL       string
	ServiceID      string
	LocationID     string
	SessionToken   string
	Email          string
	Password       string
	TimeoutSeconds int
}

// NotifierConfig holds notification channel configuration
type NotifierConfig struct {
	Channel string

	TelegramToken   string
	TelegramChatID  string
	TelegramBaseURL string

	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppRecipient     string
	WhatsAppBaseURL       string
}

// ConfigStoreConfig selects where the session token and enable flag are persisted
type ConfigStoreConfig struct {
	Backend string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// GitHubConfig holds the repository-variables store configuration
type GitHubConfig struct {
	Token      string
	Repository string
	APIURL     string
}

// DatabaseConfig holds the optional notification log database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	window, err := entities.ParseTimeWindow(
		getEnv("TIME_INTERVAL_START", "16:00"),
		getEnv("TIME_INTERVAL_END", "20:00"),
	)
	if err != nil {
		return nil, apperrors.NewConfigError(err.Error())
	}

	baseURL := strings.TrimRight(getEnv("CALENDIS_BASE_URL", "https://www.calendis.ro/api"), "/")

	cfg := &Config{
		Env:             getEnv("ENV", "production"),
		ScrapingEnabled: getEnv("SCRAPING_ENABLED", "1") == "1",
		Window:          window,
		Dates: DateConfig{
			SpecificDays: strings.TrimSpace(os.Getenv("CHECK_SPECIFIC_DAYS")),
			DaysAhead:    strings.TrimSpace(os.Getenv("CHECK_DAYS_AHEAD")),
		},
		Calendis: CalendisConfig{
			BaseURL:        baseURL,
			LoginURL:       getEnv("CALENDIS_LOGIN_URL", baseURL+"/login"),
			ServiceID:      getEnv("SERVICE_ID", "8029"),
			LocationID:     getEnv("LOCATION_ID", "1651"),
			SessionToken:   os.Getenv("CLIENT_SESSION"),
			Email:          os.Getenv("CALENDIS_EMAIL"),
			Password:       os.Getenv("CALENDIS_PASSWORD"),
			TimeoutSeconds: getEnvAsInt("CALENDIS_TIMEOUT_SECONDS", 30),
		},
		Notifier: NotifierConfig{
			Channel:               strings.ToLower(getEnv("NOTIFIER_CHANNEL", ChannelTelegram)),
			TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
			TelegramChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
			TelegramBaseURL:       getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			WhatsAppAccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			WhatsAppRecipient:     os.Getenv("WHATSAPP_RECIPIENT"),
			WhatsAppBaseURL:       getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v18.0"),
		},
		ConfigStore: ConfigStoreConfig{
			Backend: strings.ToLower(getEnv("CONFIG_STORE", StoreRedis)),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnvAsInt("REDIS_PORT", 6379),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "calendis:"),
		},
		GitHub: GitHubConfig{
			Token:      os.Getenv("GITHUB_TOKEN"),
			Repository: os.Getenv("GITHUB_REPOSITORY"),
			APIURL:     getEnv("GITHUB_API_URL", "https://api.github.com"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "calendis_scraper"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "calendis-scraper"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type requiredVar struct {
	value string
	name  string
}

// Validate reports the first missing required credential as a CONFIG error
func (c *Config) Validate() error {
	required := []requiredVar{
		{c.Calendis.SessionToken, "CLIENT_SESSION"},
		{c.Calendis.Email, "CALENDIS_EMAIL"},
		{c.Calendis.Password, "CALENDIS_PASSWORD"},
	}

	switch c.Notifier.Channel {
	case ChannelTelegram:
		required = append(required,
			requiredVar{c.Notifier.TelegramToken, "TELEGRAM_TOKEN"},
			requiredVar{c.Notifier.TelegramChatID, "TELEGRAM_CHAT_ID"},
		)
	case ChannelWhatsApp:
		required = append(required,
			requiredVar{c.Notifier.WhatsAppAccessToken, "WHATSAPP_ACCESS_TOKEN"},
			requiredVar{c.Notifier.WhatsAppPhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID"},
			requiredVar{c.Notifier.WhatsAppRecipient, "WHATSAPP_RECIPIENT"},
		)
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unsupported NOTIFIER_CHANNEL %q", c.Notifier.Channel))
	}

	switch c.ConfigStore.Backend {
	case StoreRedis:
	case StoreGitHub:
		required = append(required,
			requiredVar{c.GitHub.Token, "GITHUB_TOKEN"},
			requiredVar{c.GitHub.Repository, "GITHUB_REPOSITORY"},
		)
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unsupported CONFIG_STORE %q", c.ConfigStore.Backend))
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.NewConfigError(r.name + " must be set")
		}
	}
	return nil
}

// WithStoredState returns a copy of the config with the persisted token and flag applied
func (c *Config) WithStoredState(token *entities.Session, enabled *bool) *Config {
	out := *c
	if token != nil && *token != "" {
		out.Calendis.SessionToken = token.Value()
	}
	if enabled != nil {
		out.ScrapingEnabled = *enabled
	}
	return &out
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
