package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is the on-disk form. Absent keys leave the current value.
type JsonConfig struct {
	EndpointAddrHTTP     *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC     *string `json:"endpoint_addr_grpc"`
	DatabaseDSN          *string `json:"database_dsn"`
	SecretKey            *string `json:"secret_key"`
	TokenLifetimeMinutes *int    `json:"token_lifetime_minutes"`
	HashConcurrency      *int    `json:"hash_concurrency"`
	LogLevel             *string `json:"log_level"`
}

func parseJson(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.TokenLifetimeMinutes, c.TokenLifetimeMinutes)
	setIf(&config.HashConcurrency, c.HashConcurrency)
	setIf(&config.LogLevel, c.LogLevel)

	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
