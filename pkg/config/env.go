package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// SHNJADE_-prefixed tags so this stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "SHNJADE_DB_DSN"
	EnvDBHost = "SHNJADE_DB_HOST"
	EnvDBUser = "SHNJADE_DB_USER"
	EnvDBName = "SHNJADE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
