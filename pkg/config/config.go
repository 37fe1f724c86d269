package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Directory    DirectoryConfig
	Pricing      PricingConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Directory.UsesDB() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAppTimezone, err)
	}
	switch c.Directory.normalizedMode() {
	case DirectoryModeHTTP:
		if strings.TrimSpace(c.Directory.BaseDataURL) == "" || strings.TrimSpace(c.Directory.ProductURL) == "" {
			return fmt.Errorf("%s and %s are required when %s=%s", EnvDirectoryBaseDataURL, EnvDirectoryProductURL, EnvDirectoryMode, DirectoryModeHTTP)
		}
	case DirectoryModeDB:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDirectoryMode, c.Directory.Mode)
	}
	switch c.Cache.normalizedDriver() {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("unsupported %s %q", EnvCacheDriver, c.Cache.Driver)
	}
	if c.NeedsRedis() && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("either %s or %s is required", EnvRedisURL, EnvRedisAddr)
	}
	if c.Pricing.QuoteTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingQuoteTTL)
	}
	if c.Pricing.SearchRadiusKm <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingSearchRadiusKm)
	}
	if c.Pricing.BaseProtectionCents < 0 {
		return fmt.Errorf("%s must not be negative", EnvPricingBaseProtection)
	}
	if _, err := enums.ParseCurrency(c.Pricing.Currency); err != nil {
		return fmt.Errorf("%s: %w", EnvPricingCurrency, err)
	}
	return nil
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Cache.normalizedDriver() == CacheDriverRedis || c.RateLimit.Enabled()
}

type AppConfig struct {
	Env          string `envconfig:"RENTAL_PRICING_APP_ENV" required:"true"`
	Port         string `envconfig:"RENTAL_PRICING_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RENTAL_PRICING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENTAL_PRICING_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"RENTAL_PRICING_APP_TIMEZONE" default:"Asia/Shanghai"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business time zone pickup dates and times are expressed in.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

type DBConfig struct {
	DSN string `envconfig:"RENTAL_PRICING_DB_DSN"`

	LegacyHost     string `envconfig:"RENTAL_PRICING_DB_HOST"`
	LegacyPort     int    `envconfig:"RENTAL_PRICING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENTAL_PRICING_DB_USER"`
	LegacyPassword string `envconfig:"RENTAL_PRICING_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENTAL_PRICING_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENTAL_PRICING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTAL_PRICING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTAL_PRICING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTAL_PRICING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTAL_PRICING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTAL_PRICING_REDIS_URL"`
	Address      string        `envconfig:"RENTAL_PRICING_REDIS_ADDR"`
	Password     string        `envconfig:"RENTAL_PRICING_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTAL_PRICING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTAL_PRICING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTAL_PRICING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTAL_PRICING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTAL_PRICING_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"RENTAL_PRICING_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// DirectoryConfig selects where store, product and policy data is read from.
type DirectoryConfig struct {
	Mode        string        `envconfig:"RENTAL_PRICING_DIRECTORY_MODE" default:"http"`
	BaseDataURL string        `envconfig:"RENTAL_PRICING_DIRECTORY_BASE_DATA_URL"`
	ProductURL  string        `envconfig:"RENTAL_PRICING_DIRECTORY_PRODUCT_URL"`
	Timeout     time.Duration `envconfig:"RENTAL_PRICING_DIRECTORY_TIMEOUT" default:"5s"`
}

func (d DirectoryConfig) normalizedMode() string {
	return strings.ToLower(strings.TrimSpace(d.Mode))
}

// UsesDB reports whether the directory is served from the local read model.
func (d DirectoryConfig) UsesDB() bool {
	return d.normalizedMode() == DirectoryModeDB
}

type PricingConfig struct {
	QuoteTTL            time.Duration `envconfig:"RENTAL_PRICING_QUOTE_TTL" default:"30m"`
	SearchRadiusKm      float64       `envconfig:"RENTAL_PRICING_SEARCH_RADIUS_KM" default:"5"`
	BaseProtectionCents int64         `envconfig:"RENTAL_PRICING_BASE_PROTECTION_CENTS" default:"3000"`
	Currency            string        `envconfig:"RENTAL_PRICING_CURRENCY" default:"CNY"`
	SearchWorkers       int           `envconfig:"RENTAL_PRICING_SEARCH_WORKERS" default:"8"`
}

type CacheConfig struct {
	Driver string `envconfig:"RENTAL_PRICING_CACHE_DRIVER" default:"redis"`
}

func (c CacheConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(c.Driver))
}

// UsesMemory reports whether quotes are kept in process memory.
func (c CacheConfig) UsesMemory() bool {
	return c.normalizedDriver() == CacheDriverMemory
}

type RateLimitConfig struct {
	SearchWindow  time.Duration `envconfig:"RENTAL_PRICING_RATE_LIMIT_SEARCH_WINDOW" default:"1m"`
	SearchIPLimit int           `envconfig:"RENTAL_PRICING_RATE_LIMIT_SEARCH_IP_LIMIT" default:"60"`
}

func (r RateLimitConfig) Enabled() bool {
	return r.SearchWindow > 0 && r.SearchIPLimit > 0
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENTAL_PRICING_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RENTAL_PRICING_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	SearchEventsTopic string `envconfig:"RENTAL_PRICING_PUBSUB_SEARCH_EVENTS_TOPIC"`
}

// Enabled reports whether search events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.SearchEventsTopic) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
