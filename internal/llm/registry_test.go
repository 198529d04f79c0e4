package llm

import (
	"testing"

	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolve(t *testing.T) {
	log := logging.New(nil, "silent")
	reg := NewRegistry(log)
	reg.Register("mock", &MockClient{})

	c, err := reg.Resolve("mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())

	_, err = reg.Resolve("nope")
	assert.Error(t, err)
}

func TestNewRegistryFromConfig(t *testing.T) {
	log := logging.New(nil, "silent")

	reg := NewRegistryFromConfig(config.ModelConfig{Provider: "anthropic", APIKey: "k", Name: "m"}, log)
	assert.Equal(t, []string{"anthropic"}, reg.List())

	// No API key: nothing registered.
	reg = NewRegistryFromConfig(config.ModelConfig{Provider: "anthropic"}, log)
	assert.Empty(t, reg.List())

	reg = NewRegistryFromConfig(config.ModelConfig{Provider: "mock"}, log)
	assert.Equal(t, []string{"mock"}, reg.List())
}
