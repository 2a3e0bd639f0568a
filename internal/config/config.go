package config

import "time"

// Config is the root configuration for both CLI modes.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server-mode settings.
type ServerConfig struct {
	// Listen is the TCP address for the line protocol.
	Listen string `yaml:"listen"`

	// HTTPListen serves the websocket gateway (/ws) and the health
	// endpoint (/healthz). Empty disables the HTTP surface.
	HTTPListen string `yaml:"http_listen"`

	// IdleTimeout disconnects clients that send nothing for this long
	// (0 = never).
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// WriteTimeout bounds each outbound write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ClientConfig holds client-mode settings.
type ClientConfig struct {
	// Server is the address to connect to.
	Server string `yaml:"server"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
