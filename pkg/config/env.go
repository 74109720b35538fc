package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DefaultRestockMultiplier = 2

	EnvAppEnv            = "BACKOFFICE_APP_ENV"
	EnvPort              = "BACKOFFICE_APP_PORT"
	EnvLogFormat         = "BACKOFFICE_LOG_FORMAT"
	EnvDBDSN             = "BACKOFFICE_DB_DSN"
	EnvDBHost            = "BACKOFFICE_DB_HOST"
	EnvDBUser            = "BACKOFFICE_DB_USER"
	EnvDBPassword        = "BACKOFFICE_DB_PASSWORD"
	EnvDBName            = "BACKOFFICE_DB_NAME"
	EnvRedisURL          = "BACKOFFICE_REDIS_URL"
	EnvJWTSecret         = "BACKOFFICE_JWT_SECRET"
	EnvJWTIssuer         = "BACKOFFICE_JWT_ISSUER"
	EnvAllowlist         = "BACKOFFICE_ORDERS_ENFORCE_CUSTOMER_ALLOWLIST"
	EnvRestockMultiplier = "BACKOFFICE_RESTOCK_TARGET_MULTIPLIER"
	EnvRestockInterval   = "BACKOFFICE_RESTOCK_INTERVAL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
