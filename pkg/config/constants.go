package config

const EnvPrefix = "RENTAL_PRICING"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DirectoryModeHTTP = "http"
	DirectoryModeDB   = "db"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

const (
	EnvAppEnv      = "RENTAL_PRICING_APP_ENV"
	EnvPort        = "RENTAL_PRICING_APP_PORT"
	EnvAppTimezone = "RENTAL_PRICING_APP_TIMEZONE"
	EnvLogFormat   = "RENTAL_PRICING_LOG_FORMAT"

	EnvDBDSN  = "RENTAL_PRICING_DB_DSN"
	EnvDBHost = "RENTAL_PRICING_DB_HOST"
	EnvDBUser = "RENTAL_PRICING_DB_USER"
	EnvDBName = "RENTAL_PRICING_DB_NAME"

	EnvRedisURL  = "RENTAL_PRICING_REDIS_URL"
	EnvRedisAddr = "RENTAL_PRICING_REDIS_ADDR"

	EnvDirectoryMode        = "RENTAL_PRICING_DIRECTORY_MODE"
	EnvDirectoryBaseDataURL = "RENTAL_PRICING_DIRECTORY_BASE_DATA_URL"
	EnvDirectoryProductURL  = "RENTAL_PRICING_DIRECTORY_PRODUCT_URL"

	EnvPricingQuoteTTL       = "RENTAL_PRICING_QUOTE_TTL"
	EnvPricingSearchRadiusKm = "RENTAL_PRICING_SEARCH_RADIUS_KM"
	EnvPricingBaseProtection = "RENTAL_PRICING_BASE_PROTECTION_CENTS"
	EnvPricingCurrency       = "RENTAL_PRICING_CURRENCY"

	EnvCacheDriver = "RENTAL_PRICING_CACHE_DRIVER"

	EnvRateLimitSearchIPLimit = "RENTAL_PRICING_RATE_LIMIT_SEARCH_IP_LIMIT"

	EnvPubSubSearchEventsTopic = "RENTAL_PRICING_PUBSUB_SEARCH_EVENTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
