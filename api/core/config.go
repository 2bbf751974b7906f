package core

import "time"

type APIConfig struct {
	Port           uint32   `json:"port" default:"10000"`
	PathPrefix     string   `json:"pathPrefix" default:"api"`
	AllowedHeaders []string `json:"allowedHeaders"`
	AllowedOrigins []string `json:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods"`
	APIKeyHeader   string   `json:"apiKeyHeader" default:"x-api-key"`
	APIKeys        []string `json:"apiKeys"`
	// StartRetryMilis is the wait between attempts to bind the port
	StartRetryMilis    uint64 `json:"startRetryMilis" default:"5000"`
	ShutdownTimeoutSec uint64 `json:"shutdownTimeoutSec" default:"5"`
}

func (c APIConfig) StartRetry() time.Duration {
	if c.StartRetryMilis == 0 {
		return time.Second
	}

	return time.Duration(c.StartRetryMilis) * time.Millisecond
}

func (c APIConfig) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSec == 0 {
		return 5 * time.Second
	}

	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
