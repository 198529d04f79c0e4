package config

// Config is the root configuration for Kestrel.
type Config struct {
	Model     ModelConfig     `yaml:"model,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Tools     ToolsConfig     `yaml:"tools,omitempty"`
	Artifacts ArtifactsConfig `yaml:"artifacts,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ModelConfig selects the language model provider and its parameters.
// Provider and parameters are fixed at engine construction time and are
// immutable for the engine's lifetime.
type ModelConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "anthropic" | "mock"
	APIKey      string   `yaml:"apiKey,omitempty"`   // may reference ${ENV_VAR}
	Name        string   `yaml:"name,omitempty"`     // model identifier
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
}

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan"
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// AgentConfig controls the orchestration loop.
type AgentConfig struct {
	Name string `yaml:"name,omitempty"`

	// MaxTurnIterations bounds the generate/act loop per turn. A turn that
	// exceeds the bound aborts with an error instead of looping forever.
	MaxTurnIterations int `yaml:"maxTurnIterations,omitempty"`

	// SystemPrompt is appended to the built-in prompt when set.
	SystemPrompt string `yaml:"systemPrompt,omitempty"`

	// WorkDir is interpolated into the data-analysis prompt so the model
	// knows where artifact files land.
	WorkDir string `yaml:"workDir,omitempty"`
}

// SessionConfig selects the thread store backend.
type SessionConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
	Path  string `yaml:"path,omitempty"`  // sqlite file; defaults under the data dir
}

// ToolsConfig configures the built-in tools.
type ToolsConfig struct {
	// DatabasePath is the SQLite database the query_database tool runs
	// against. Empty disables the tool.
	DatabasePath string `yaml:"databasePath,omitempty"`
}

// ArtifactsConfig configures visualization artifact handling.
type ArtifactsConfig struct {
	// Dir is where generate_visualization writes figure files and where
	// file references found in model output are resolved.
	Dir string `yaml:"dir,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
