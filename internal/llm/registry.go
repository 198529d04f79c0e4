package llm

import (
	"fmt"
	"sync"

	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/logging"
)

// Registry manages model provider clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client // provider name → client
	log     *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Info().Str("provider", name).Msg("registered model provider")
}

// Resolve returns the Client for the given provider name.
func (r *Registry) Resolve(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.clients[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no model provider %q", name)
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}

// NewRegistryFromConfig builds a Registry from the model configuration.
func NewRegistryFromConfig(cfg config.ModelConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	switch cfg.Provider {
	case "anthropic":
		if cfg.APIKey != "" {
			reg.Register("anthropic", NewAnthropicClient(cfg.APIKey, cfg.Name))
		}
	case "mock":
		reg.Register("mock", &MockClient{})
	}

	return reg
}
