package config

import "time"

type Config struct {
	Server    ServerConfig
	Transport TransportConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Address   string
	TokenFile string        `mapstructure:"tokenFile"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type TransportConfig struct {
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

type LoggingConfig struct {
	Level string
}
