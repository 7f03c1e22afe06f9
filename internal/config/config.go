// Package config loads the service configuration from environment variables.
// Every variable is prefixed with TOKENWATCH_.
package config

import "github.com/kelseyhightower/envconfig"

// Config carries everything the service needs to start.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// EthereumEndpoint is the JSON-RPC URL of the Ethereum node. The node
	// must hold the observed account if transfers are to be submitted.
	EthereumEndpoint string `envconfig:"ETHEREUM_ENDPOINT" required:"true"`

	// Account is the hex address whose token activity is tracked.
	Account string `envconfig:"ACCOUNT" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("tokenwatch", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
