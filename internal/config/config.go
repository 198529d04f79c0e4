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
		Model: ModelConfig{
			Provider:  "anthropic",
			Name:      "claude-3-5-haiku-20241022",
			MaxTokens: 4096,
		},
		Server: ServerConfig{
			Port: 8000,
			Bind: "loopback",
		},
		Agent: AgentConfig{
			Name:              "Kestrel",
			MaxTurnIterations: 8,
		},
		Session: SessionConfig{
			Store: "sqlite",
		},
		Artifacts: ArtifactsConfig{
			Dir: "output",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
