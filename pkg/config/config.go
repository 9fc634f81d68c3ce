package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Env         string
	Port        int
	APIPrefix   string
	ProjectName string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	LLM       LLMConfig
	Calendar  CalendarConfig
	History   HistoryConfig
	Geo       GeoConfig
	Recommend RecommendConfig
	Reminders RemindersConfig
	Exports   ExportsConfig
	Tracing   TracingConfig
	Google    GoogleConfig
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// CalendarConfig holds calendar-wide defaults.
type CalendarConfig struct {
	DefaultTimezone string
	DefaultType     string
}

// HistoryConfig controls when chat history is summarised.
type HistoryConfig struct {
	CompressThreshold int
	TokenBudget       int
}

// GeoConfig configures the public geocoding, weather and places providers.
type GeoConfig struct {
	NominatimURL   string
	OpenMeteoURL   string
	OverpassURL    string
	UserAgent      string
	Timeout        time.Duration
	CacheTTL       time.Duration
	LocalCacheSize int
}

// RecommendConfig tunes the nearby place search.
type RecommendConfig struct {
	Radii      []int
	Categories []string
}

// RemindersConfig governs the reminder dispatcher.
type RemindersConfig struct {
	Enabled      bool
	PollInterval time.Duration
	Workers      int
	Retries      int
	EmailFrom    string
	ResendAPIKey string
}

// ExportsConfig signs calendar export links.
type ExportsConfig struct {
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

// GoogleConfig enables sign-in with Google.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether Google sign-in has credentials.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.ProjectName = v.GetString("PROJECT_NAME")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DSN:          v.GetString("DB_DSN"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 8*24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 30*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.LLM = LLMConfig{
		APIKey:      v.GetString("GROQ_API_KEY"),
		BaseURL:     v.GetString("LLM_BASE_URL"),
		Model:       v.GetString("LLM_MODEL"),
		Temperature: v.GetFloat64("LLM_TEMPERATURE"),
		Timeout:     parseDuration(v.GetString("LLM_TIMEOUT"), 30*time.Second),
	}

	cfg.Calendar = CalendarConfig{
		DefaultTimezone: v.GetString("DEFAULT_TIMEZONE"),
		DefaultType:     v.GetString("DEFAULT_EVENT_TYPE"),
	}

	cfg.History = HistoryConfig{
		CompressThreshold: v.GetInt("HISTORY_COMPRESS_THRESHOLD"),
		TokenBudget:       v.GetInt("HISTORY_TOKEN_BUDGET"),
	}

	cfg.Geo = GeoConfig{
		NominatimURL:   v.GetString("NOMINATIM_URL"),
		OpenMeteoURL:   v.GetString("OPEN_METEO_URL"),
		OverpassURL:    v.GetString("OVERPASS_URL"),
		UserAgent:      v.GetString("GEO_USER_AGENT"),
		Timeout:        parseDuration(v.GetString("GEO_TIMEOUT"), 10*time.Second),
		CacheTTL:       parseDuration(v.GetString("GEO_CACHE_TTL"), 30*time.Minute),
		LocalCacheSize: v.GetInt("GEO_LOCAL_CACHE_SIZE"),
	}

	cfg.Recommend = RecommendConfig{
		Radii:      parseInts(v.GetString("RECOMMEND_RADII"), []int{500, 1000, 2000, 5000}),
		Categories: splitAndTrim(v.GetString("RECOMMEND_CATEGORIES")),
	}

	cfg.Reminders = RemindersConfig{
		Enabled:      v.GetBool("ENABLE_REMINDERS"),
		PollInterval: parseDuration(v.GetString("REMINDERS_POLL_INTERVAL"), time.Minute),
		Workers:      v.GetInt("REMINDERS_WORKERS"),
		Retries:      v.GetInt("REMINDERS_RETRIES"),
		EmailFrom:    v.GetString("REMINDERS_EMAIL_FROM"),
		ResendAPIKey: v.GetString("RESEND_API_KEY"),
	}

	cfg.Exports = ExportsConfig{
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 15*time.Minute),
	}

	cfg.Tracing = TracingConfig{
		Enabled:     v.GetBool("ENABLE_TRACING"),
		Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		ServiceName: v.GetString("OTEL_SERVICE_NAME"),
		SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
	}

	cfg.Google = GoogleConfig{
		ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  v.GetString("GOOGLE_REDIRECT_URI"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PROJECT_NAME", "EgoAI")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_DSN", "file:egoai.db?_foreign_keys=on")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ego_ai")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "192h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GROQ_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM_MODEL", "llama3-70b-8192")
	v.SetDefault("LLM_TEMPERATURE", 0.5)
	v.SetDefault("LLM_TIMEOUT", "30s")

	v.SetDefault("DEFAULT_TIMEZONE", "Europe/Moscow")
	v.SetDefault("DEFAULT_EVENT_TYPE", "other work")

	v.SetDefault("HISTORY_COMPRESS_THRESHOLD", 50)
	v.SetDefault("HISTORY_TOKEN_BUDGET", 0)

	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("OPEN_METEO_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("GEO_USER_AGENT", "ego-ai-bot/1.0")
	v.SetDefault("GEO_TIMEOUT", "10s")
	v.SetDefault("GEO_CACHE_TTL", "30m")
	v.SetDefault("GEO_LOCAL_CACHE_SIZE", 512)

	v.SetDefault("RECOMMEND_RADII", "500,1000,2000,5000")
	v.SetDefault("RECOMMEND_CATEGORIES", "cafe,park,library,restaurant")

	v.SetDefault("ENABLE_REMINDERS", false)
	v.SetDefault("REMINDERS_POLL_INTERVAL", "1m")
	v.SetDefault("REMINDERS_WORKERS", 2)
	v.SetDefault("REMINDERS_RETRIES", 3)
	v.SetDefault("REMINDERS_EMAIL_FROM", "EgoAI <reminders@egoai.app>")
	v.SetDefault("RESEND_API_KEY", "")

	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "15m")

	v.SetDefault("ENABLE_TRACING", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_SERVICE_NAME", "ego-calendar-api")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URI", "http://localhost:8000/api/v1/auth/google/callback")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseInts(raw string, fallback []int) []int {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return fallback
	}
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return fallback
		}
		result = append(result, n)
	}
	return result
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
