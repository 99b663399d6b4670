package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataSourceBackend = "backend"
	DataSourceStatic  = "static"
)

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
	// RateLimit - запросов в секунду с одного IP; 0 отключает ограничение.
	RateLimit float64
	RateBurst int
	// TrustProxyHeaders - сервис стоит за доверенным обратным прокси.
	TrustProxyHeaders bool
}

type ListingsAPIConfig struct {
	// DataSource - backend или static.
	DataSource string
	BaseURL    string
	Timeout    time.Duration
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type DisplayConfig struct {
	Locale              string
	DefaultCurrency     string
	SupportedCurrencies []string
	PlaceholderImage    string
	WhatsAppBaseURL     string
	WhatsAppMessage     string
}

type CacheConfig struct {
	Enabled       bool
	MaxItems      int64
	PropertiesTTL time.Duration
	FeaturedTTL   time.Duration
	DetailTTL     time.Duration
	StatsTTL      time.Duration
	TypesTTL      time.Duration
	// MemcachedHosts - пусто, если второй уровень кэша не нужен.
	MemcachedHosts []string
}

type SessionConfig struct {
	TTL           time.Duration
	PruneInterval time.Duration
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTconfig
	ListingsAPI  ListingsAPIConfig
	Pagination   PaginationConfig
	Display      DisplayConfig
	Cache        CacheConfig
	Session      SessionConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Отсутствие .env не ошибка: в контейнере переменные задаются окружением.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "marketplace-service")

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})
	cfg.Rest.RateLimit = getEnvAsFloat("RATE_LIMIT_RPS", 20)
	cfg.Rest.RateBurst = getEnvAsInt("RATE_LIMIT_BURST", 40)
	cfg.Rest.TrustProxyHeaders = getEnvAsBool("TRUST_PROXY_HEADERS", false)

	cfg.ListingsAPI.DataSource = strings.ToLower(getEnvAsString("LISTINGS_DATA_SOURCE", DataSourceBackend))
	switch cfg.ListingsAPI.DataSource {
	case DataSourceBackend, DataSourceStatic:
	default:
		return nil, fmt.Errorf("LISTINGS_DATA_SOURCE must be %q or %q, got %q", DataSourceBackend, DataSourceStatic, cfg.ListingsAPI.DataSource)
	}
	cfg.ListingsAPI.BaseURL = strings.TrimRight(getEnvAsString("LISTINGS_API_BASE_URL", "http://localhost:8000/v1"), "/")
	if cfg.ListingsAPI.DataSource == DataSourceBackend && cfg.ListingsAPI.BaseURL == "" {
		return nil, fmt.Errorf("LISTINGS_API_BASE_URL environment variable is required for the backend data source")
	}
	cfg.ListingsAPI.Timeout = getEnvAsDuration("LISTINGS_API_TIMEOUT", 10*time.Second)

	cfg.Pagination.DefaultLimit = getEnvAsInt("PAGINATION_DEFAULT_LIMIT", 12)
	cfg.Pagination.MaxLimit = getEnvAsInt("PAGINATION_MAX_LIMIT", 50)
	if cfg.Pagination.DefaultLimit < 1 || cfg.Pagination.MaxLimit < cfg.Pagination.DefaultLimit {
		return nil, fmt.Errorf("invalid pagination limits: default %d, max %d", cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	}

	cfg.Display.Locale = getEnvAsString("LOCALE", "es-MX")
	cfg.Display.DefaultCurrency = getEnvAsString("DEFAULT_CURRENCY", "MXN")
	cfg.Display.SupportedCurrencies = getEnvAsList("SUPPORTED_CURRENCIES", []string{"MXN", "USD"})
	cfg.Display.PlaceholderImage = getEnvAsString("PLACEHOLDER_IMAGE_URL",
		"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?ixlib=rb-4.0.3&auto=format&fit=crop&w=1200&h=800&q=80")
	cfg.Display.WhatsAppBaseURL = getEnvAsString("WHATSAPP_BASE_URL", "https://wa.me/")
	cfg.Display.WhatsAppMessage = getEnvAsString("WHATSAPP_MESSAGE", "Hola, me interesa obtener más información sobre esta propiedad:")

	cfg.Cache.Enabled = getEnvAsBool("CACHE_ENABLED", true)
	cfg.Cache.MaxItems = int64(getEnvAsInt("CACHE_MAX_ITEMS", 1000))
	cfg.Cache.PropertiesTTL = getEnvAsDuration("CACHE_PROPERTIES_TTL", 5*time.Minute)
	cfg.Cache.FeaturedTTL = getEnvAsDuration("CACHE_FEATURED_TTL", 10*time.Minute)
	cfg.Cache.DetailTTL = getEnvAsDuration("CACHE_DETAIL_TTL", 10*time.Minute)
	cfg.Cache.StatsTTL = getEnvAsDuration("CACHE_STATS_TTL", 30*time.Minute)
	cfg.Cache.TypesTTL = getEnvAsDuration("CACHE_TYPES_TTL", time.Hour)
	cfg.Cache.MemcachedHosts = getEnvAsList("MEMCACHED_HOST", nil)

	cfg.Session.TTL = getEnvAsDuration("SESSION_TTL", 30*time.Minute)
	cfg.Session.PruneInterval = getEnvAsDuration("SESSION_PRUNE_INTERVAL", time.Minute)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает формат time.ParseDuration ("90s", "5m").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valStr)
	if err != nil || value <= 0 {
		log.Printf("Warning: Environment variable %s (value: %s) is not a positive duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
