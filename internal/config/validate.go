package config

import (
	"fmt"
	"log/slog"
)

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be >= 0, got %v", c.Server.IdleTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be >= 0, got %v", c.Server.WriteTimeout)
	}
	if c.Client.Server == "" {
		return fmt.Errorf("client.server is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", l.Level)
	}
}
