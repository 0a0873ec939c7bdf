// Package config loads tool settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Root is the working-copy root. Empty means auto-detect from the
	// current directory.
	Root string

	// APIKey protects the HTTP API when set.
	APIKey string

	// Digits is the default item-number width for new documents.
	Digits int

	// PublishFormat is the default format for published output.
	PublishFormat string
}

func Load() Config {
	return Config{
		Port:          envOr("PORT", "7867"),
		Root:          os.Getenv("DOORSTOP_ROOT"),
		APIKey:        os.Getenv("DOORSTOP_API_KEY"),
		Digits:        envInt("DOORSTOP_DIGITS", 3),
		PublishFormat: envOr("PUBLISH_FORMAT", "html"),
	}
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Digits < 1 || c.Digits > 10 {
		return fmt.Errorf("DOORSTOP_DIGITS must be 1-10, got %d", c.Digits)
	}
	switch c.PublishFormat {
	case "text", "txt", "markdown", "md", "html":
	default:
		return fmt.Errorf("PUBLISH_FORMAT must be text, markdown, or html, got %q", c.PublishFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
