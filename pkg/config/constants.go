package config

const (
	EnvPrefix = "gigboard"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "GIGBOARD_APP_ENV"
	EnvDBDSN  = "GIGBOARD_DB_DSN"
	EnvDBHost = "GIGBOARD_DB_HOST"
	EnvDBUser = "GIGBOARD_DB_USER"
	EnvDBName = "GIGBOARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
