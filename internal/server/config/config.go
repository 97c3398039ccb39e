// Package config handles configuration for the vault server, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the vault server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - DatabaseDSN: postgres://... for PostgreSQL (pgx), anything else is
//     treated as a sqlite file path.
//   - MasterKeyHex: hex-encoded 32-byte master key for the cipher envelope.
//     There is no default; an empty key is a startup failure.
//   - ResetTokenTTL: validity window of password-reset tokens.
type Config struct {
	EndpointAddr  string
	DatabaseDSN   string
	MasterKeyHex  string
	ResetTokenTTL time.Duration
}

// LoadDefaults populates Config with development defaults. The master key
// deliberately has none.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = "secure_ledger.db"
	c.MasterKeyHex = ""
	c.ResetTokenTTL = 15 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
