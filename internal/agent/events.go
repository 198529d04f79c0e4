package agent

import "github.com/kestrelhq/kestrel/internal/artifact"

// EventType tags one classified stream event.
type EventType string

const (
	// EventText carries a plain text fragment.
	EventText EventType = "text"

	// EventToolCallStart announces a tool call by name, once per call.
	EventToolCallStart EventType = "tool_call_start"

	// EventToolCallArg carries an argument fragment of the current call.
	EventToolCallArg EventType = "tool_call_arg"

	// EventTurnBoundary marks the end of a tool-call batch. Consumers
	// typically render it as a paragraph break.
	EventTurnBoundary EventType = "turn_boundary"

	// EventArtifact carries a visualization figure split out of the text.
	EventArtifact EventType = "artifact"
)

// Event is one unit of the classified, ordered output sequence produced
// during a turn. Ordering matches production order.
type Event struct {
	Type EventType `json:"type"`

	// Text is the fragment for EventText and EventToolCallArg.
	Text string `json:"text,omitempty"`

	// ToolName is set on EventToolCallStart.
	ToolName string `json:"toolName,omitempty"`

	// Artifact is set on EventArtifact.
	Artifact *artifact.Figure `json:"artifact,omitempty"`
}

// EventSink receives events as they are produced. A nil sink discards
// them. Sinks are called from the turn's own goroutine, in order.
type EventSink func(Event)
