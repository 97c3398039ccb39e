package config

import (
	"os"
	"time"
)

// Environment variable names. The master key is expected to arrive through
// the environment (or a config file) rather than argv, so it does not show
// up in process listings.
const (
	EnvEndpointAddr  = "VAULT_ADDRESS"
	EnvDatabaseDSN   = "VAULT_DATABASE_DSN"
	EnvMasterKey     = "VAULT_MASTER_KEY"
	EnvResetTokenTTL = "VAULT_RESET_TOKEN_TTL"
)

// parseEnv overlays Config fields from environment variables. Unset or empty
// variables leave the current value untouched. An unparsable TTL is ignored
// rather than fatal; flags can still override it.
func parseEnv(config *Config) {
	if v := os.Getenv(EnvEndpointAddr); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv(EnvMasterKey); v != "" {
		config.MasterKeyHex = v
	}
	if v := os.Getenv(EnvResetTokenTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ResetTokenTTL = d
		}
	}
}
