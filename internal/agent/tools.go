package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonrepair"

	"github.com/kestrelhq/kestrel/internal/domain"
	"github.com/kestrelhq/kestrel/internal/llm"
	"github.com/kestrelhq/kestrel/internal/logging"
)

// Tool is a capability the model can invoke during a turn.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() string

	// Execute runs the tool with the given JSON arguments and returns
	// its textual result.
	Execute(ctx context.Context, args string) (string, error)
}

// ToolRegistry holds the tool catalog supplied at engine construction.
// It is read-only to the turn loop.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool.
func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	return len(r.tools)
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered tools, sorted by name.
func (r *ToolRegistry) All() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, name := range r.Names() {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Definitions returns model-ready tool definitions, sorted by name so
// the catalog sent to the provider is stable.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Dispatcher routes tool calls to registered tools. It is stateless per
// call and fail-soft: an unknown tool or a tool error becomes a
// failure-description result rather than an error, so the turn loop
// stays alive and the model can react to the failure.
type Dispatcher struct {
	tools *ToolRegistry
	log   *logging.Logger
}

// NewDispatcher creates a dispatcher over the given catalog.
func NewDispatcher(tools *ToolRegistry, log *logging.Logger) *Dispatcher {
	return &Dispatcher{tools: tools, log: log.Sub("tools")}
}

// Dispatch invokes one tool call and returns its result. The result's
// IsError flag marks failures; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.ToolCall) domain.ToolResult {
	result := domain.ToolResult{CallID: call.ID, Name: call.Name}

	tool, ok := d.tools.Get(call.Name)
	if !ok {
		d.log.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		result.IsError = true
		result.Content = fmt.Sprintf("unknown tool: %s", call.Name)
		return result
	}

	args := repairArgs(call.Args)

	d.log.Debug().Str("tool", call.Name).Str("callId", call.ID).Msg("executing tool")
	output, err := tool.Execute(ctx, args)
	if err != nil {
		d.log.Warn().Err(err).Str("tool", call.Name).Msg("tool execution failed")
		result.IsError = true
		result.Content = fmt.Sprintf("tool %s failed: %v", call.Name, err)
		return result
	}

	result.Content = output
	return result
}

// repairArgs normalizes argument JSON accumulated from stream fragments.
// Models occasionally emit near-JSON (trailing commas, unquoted keys);
// a repair pass recovers those before the tool sees them.
func repairArgs(args string) string {
	if args == "" {
		return "{}"
	}
	if json.Valid([]byte(args)) {
		return args
	}
	fixed, err := jsonrepair.JSONRepair(args)
	if err != nil {
		return args
	}
	return fixed
}
