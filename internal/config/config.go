// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the client configuration.
type Config struct {
	GatewayAddr  string // backend gateway host:port
	IdentityAddr string // identity provider host:port; defaults to the gateway
	CACert       string // PEM bundle; empty uses system roots
	Insecure     bool   // plaintext transport, dev only
	Username     string
	Password     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		GatewayAddr:  getEnv("INSUR_GATEWAY_ADDR", "localhost:8443"),
		IdentityAddr: getEnv("INSUR_IDENTITY_ADDR", ""),
		CACert:       getEnv("INSUR_CACERT", ""),
		Insecure:     getEnvBool("INSUR_INSECURE", false),
		Username:     getEnv("INSUR_USERNAME", ""),
		Password:     getEnv("INSUR_PASSWORD", ""),
	}
	if cfg.IdentityAddr == "" {
		cfg.IdentityAddr = cfg.GatewayAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.GatewayAddr == "" {
		return fmt.Errorf("INSUR_GATEWAY_ADDR cannot be empty")
	}
	if c.IdentityAddr == "" {
		return fmt.Errorf("INSUR_IDENTITY_ADDR cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
