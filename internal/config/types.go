package config

// Config is the root configuration for storechat.
type Config struct {
	API              APIConfig     `yaml:"api,omitempty"`
	Upload           UploadConfig  `yaml:"upload,omitempty"`
	Storage          StorageConfig `yaml:"storage,omitempty"`
	Logging          LoggingConfig `yaml:"logging,omitempty"`
	BusinessTypeHint string        `yaml:"businessTypeHint,omitempty"` // optional hint sent on session creation ("individual" | "company")
}

// APIConfig points at the remote chat service.
type APIConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"` // chat API base, e.g. https://api.nianverse.org/v1/chat
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// UploadConfig points at the file upload endpoint.
type UploadConfig struct {
	URL            string `yaml:"url,omitempty"`
	AuthToken      string `yaml:"authToken,omitempty"` // bearer token; supports ${ENV_VAR}
	APIKey         string `yaml:"apiKey,omitempty"`    // api_key header; supports ${ENV_VAR}
	StorageBaseURL string `yaml:"storageBaseUrl,omitempty"` // host for URL construction from path-style responses
	FolderPrefix   string `yaml:"folderPrefix,omitempty"`   // upload folder namespace, default "CHAT"
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// StorageConfig controls local persistence.
type StorageConfig struct {
	Path string `yaml:"path,omitempty"` // sqlite database path; ":memory:" for ephemeral
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
