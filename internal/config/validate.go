package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.API.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "api.baseUrl",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "api.baseUrl",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.API.BaseURL),
		})
	}

	if cfg.API.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "api.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.API.TimeoutSeconds),
		})
	}

	if cfg.Upload.URL != "" {
		if u, err := url.Parse(cfg.Upload.URL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    "upload.url",
				Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.Upload.URL),
			})
		}
	}

	if cfg.Upload.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "upload.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Upload.TimeoutSeconds),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validHints := []string{"", "individual", "company"}
	if !slices.Contains(validHints, cfg.BusinessTypeHint) {
		issues = append(issues, ValidationIssue{
			Path:    "businessTypeHint",
			Message: fmt.Sprintf("must be \"individual\" or \"company\", got %q", cfg.BusinessTypeHint),
		})
	}

	return issues
}
