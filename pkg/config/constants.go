package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "COTIZADOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "COTIZADOR_APP_ENV"
	EnvPort     = "COTIZADOR_APP_PORT"
	EnvDBDSN    = "COTIZADOR_DB_DSN"
	EnvDBHost   = "COTIZADOR_DB_HOST"
	EnvDBUser   = "COTIZADOR_DB_USER"
	EnvDBName   = "COTIZADOR_DB_NAME"
	EnvRedisURL = "COTIZADOR_REDIS_URL"

	EnvJWTSecret  = "COTIZADOR_JWT_SECRET"
	EnvJWTIssuer  = "COTIZADOR_JWT_ISSUER"
	EnvJWTExpMins = "COTIZADOR_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
