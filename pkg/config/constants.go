package config

const (
	// EnvPrefix is the envconfig prefix shared by all configuration values.
	EnvPrefix = "INKBOUND"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "INKBOUND_APP_ENV"

	EnvDBDSN  = "INKBOUND_DB_DSN"
	EnvDBHost = "INKBOUND_DB_HOST"
	EnvDBUser = "INKBOUND_DB_USER"
	EnvDBName = "INKBOUND_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
