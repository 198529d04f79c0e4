// Package llm defines the model invocation boundary: an interface over
// streaming chat-completion providers that surface text and native tool
// calls as incremental chunks.
package llm

import "context"

// Role constants for messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons reported on the chunk that ends an assistant turn.
const (
	FinishToolCalls = "tool_calls" // the assistant stopped to call tools
	FinishEnd       = "end"        // the assistant finished its answer
)

// Message is a single turn in a conversation as sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// ToolCallID is set on tool-result messages and references the call
	// the content answers.
	ToolCallID string `json:"toolCallId,omitempty"`
}

// ToolDefinition describes a tool the model can invoke.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema string `json:"inputSchema"` // JSON Schema string
}

// Request is the input to a Complete or Stream call.
type Request struct {
	Model       string           `json:"model,omitempty"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// Response is the result of a completed (or fully accumulated) generation.
type Response struct {
	Content    string     `json:"content"`
	StopReason string     `json:"stopReason,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	Usage      Usage      `json:"usage"`
	Model      string     `json:"model,omitempty"`
}

// ToolCall is a fully assembled model request to invoke a tool.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"` // JSON string
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// ContentBlock is one element of block-structured message content.
// Only blocks with Type "text" carry consumer-visible text; other block
// types are passed through so consumers can ignore them.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolCallDelta is an incremental piece of a tool call. The first delta
// for a call carries its ID and Name; later deltas for the same Index
// carry argument fragments.
type ToolCallDelta struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  string `json:"args,omitempty"` // partial argument JSON
}

// Chunk is one raw increment of a streaming generation. Exactly one of
// the payload groups is normally populated: Text or Blocks for text
// content, ToolDeltas for tool-call fragments. FinishReason is set on
// the increment that ends the assistant's emission. Raw preserves the
// provider's textual representation for increments whose shape is not
// recognized; consumers degrade to it rather than failing the stream.
type Chunk struct {
	Text         string          `json:"text,omitempty"`
	Blocks       []ContentBlock  `json:"blocks,omitempty"`
	ToolDeltas   []ToolCallDelta `json:"toolDeltas,omitempty"`
	FinishReason string          `json:"finishReason,omitempty"`
	Raw          string          `json:"raw,omitempty"`
}

// StreamEvent is one event on a streaming completion channel.
type StreamEvent struct {
	Type  string `json:"type"`            // "chunk", "done", "error"
	Chunk *Chunk `json:"chunk,omitempty"` // type="chunk"
	Error string `json:"error,omitempty"` // type="error"

	// Response carries the accumulated result (type="done").
	Response *Response `json:"response,omitempty"`
}

// Client is the interface all model providers implement.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of streaming events.
	// The channel is closed after a terminal "done" or "error" event.
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g., "anthropic").
	Name() string
}
