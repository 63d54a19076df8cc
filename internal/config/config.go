package config

type Config interface {
	EnvConfig
	APIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	API
	Security
}

func New() Config {
	return mainConfig{}
}
