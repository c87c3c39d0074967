package config

type Config interface {
	EnvConfig
	SecurityConfig
	ThrottleConfig
}

type mainConfig struct {
	EnvVars
	Security
	Throttle
}

func New() Config {
	return mainConfig{}
}
