package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/kestrel/internal/domain"
)

func TestDispatchSuccess(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(echoTool{})
	d := NewDispatcher(reg, testLogger())

	result := d.Dispatch(context.Background(), domain.ToolCall{
		ID: "call_1", Name: "echo", Args: `{"text": "hi"}`,
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "call_1", result.CallID)
	assert.JSONEq(t, `{"text": "hi"}`, result.Content)
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(NewToolRegistry(), testLogger())

	result := d.Dispatch(context.Background(), domain.ToolCall{ID: "c", Name: "ghost"})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "unknown tool: ghost")
}

func TestDispatchToolError(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(failTool{})
	d := NewDispatcher(reg, testLogger())

	result := d.Dispatch(context.Background(), domain.ToolCall{ID: "c", Name: "flaky", Args: "{}"})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "backend unavailable")
}

func TestDispatchRepairsNearJSONArgs(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(echoTool{})
	d := NewDispatcher(reg, testLogger())

	// Trailing comma, recovered by the repair pass before dispatch.
	result := d.Dispatch(context.Background(), domain.ToolCall{
		ID: "c", Name: "echo", Args: `{"text": "hi",}`,
	})
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"text": "hi"}`, result.Content)
}

func TestRepairArgs(t *testing.T) {
	assert.Equal(t, "{}", repairArgs(""))
	assert.Equal(t, `{"a": 1}`, repairArgs(`{"a": 1}`))
	assert.JSONEq(t, `{"a": 1}`, repairArgs(`{"a": 1,}`))
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(failTool{})
	reg.Register(echoTool{})

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "echo", defs[0].Name)
	assert.Equal(t, "flaky", defs[1].Name)
	assert.NotEmpty(t, defs[0].InputSchema)
}

func TestBuildSystemPromptSelection(t *testing.T) {
	general := BuildSystemPrompt(PromptConfig{AgentName: "Kestrel", Tools: []Tool{echoTool{}}})
	assert.Contains(t, general, "helpful assistant")
	assert.Contains(t, general, "echo")

	reg := NewToolRegistry()
	reg.Register(queryTool{})
	analysis := BuildSystemPrompt(PromptConfig{
		AgentName: "Kestrel",
		Tools:     reg.All(),
		WorkDir:   "/data",
	})
	assert.Contains(t, analysis, "data analysis assistant")
	assert.Contains(t, analysis, "query_database")
	assert.Contains(t, analysis, "/data")
}

// queryTool stands in for the SQL tool in prompt selection tests.
type queryTool struct{}

func (queryTool) Name() string        { return "query_database" }
func (queryTool) Description() string { return "Runs a read-only SQL query." }
func (queryTool) InputSchema() string { return `{"type": "object"}` }
func (queryTool) Execute(ctx context.Context, args string) (string, error) {
	return "", nil
}
