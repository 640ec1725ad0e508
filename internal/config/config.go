// Package config loads and validates the storechat configuration file.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "https://api.nianverse.org/v1/chat",
			TimeoutSeconds: 60,
		},
		Upload: UploadConfig{
			StorageBaseURL: "http://125.212.248.52:3003",
			FolderPrefix:   "CHAT",
			TimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
