package config

const (
	EnvPrefix = "BATCOM"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "BATCOM_APP_ENV"
	EnvPort   = "BATCOM_APP_PORT"

	EnvDBDSN  = "BATCOM_DB_DSN"
	EnvDBHost = "BATCOM_DB_HOST"
	EnvDBUser = "BATCOM_DB_USER"
	EnvDBName = "BATCOM_DB_NAME"

	EnvRedisURL = "BATCOM_REDIS_URL"

	EnvPayOSClientID    = "BATCOM_PAYOS_CLIENT_ID"
	EnvPayOSAPIKey      = "BATCOM_PAYOS_API_KEY"
	EnvPayOSChecksumKey = "BATCOM_PAYOS_CHECKSUM_KEY"
	EnvPayOSReturnURL   = "BATCOM_PAYOS_RETURN_URL"
	EnvPayOSCancelURL   = "BATCOM_PAYOS_CANCEL_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
