package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultListen       = "0.0.0.0:8080"
	DefaultClientServer = "127.0.0.1:8080"
	DefaultWriteTimeout = 30 * time.Second
	DefaultLogLevel     = "info"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Client.Server == "" {
		c.Client.Server = DefaultClientServer
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
