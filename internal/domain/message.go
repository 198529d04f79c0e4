package domain

import "time"

// Role identifies the producer of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a thread's history. Exactly one of the
// following shapes is valid:
//
//   - user text: Role=user, Content set
//   - assistant text: Role=assistant, Content set, no ToolCalls
//   - assistant tool request: Role=assistant, ToolCalls set (Content may
//     carry text emitted before the calls)
//   - tool result: Role=tool, ToolCallID references the call it answers,
//     Content carries the result payload
//
// Messages are append-only: once stored they are never mutated or reordered.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ToolCall is a model request to invoke a named tool.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"` // JSON string accumulated from argument fragments
}

// ToolResult is the outcome of dispatching one tool call. A failed
// invocation still produces a result: IsError is set and Content carries
// the failure description, so the model can see and react to it.
type ToolResult struct {
	CallID  string `json:"callId"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"isError,omitempty"`
}
