package gateway

import (
	"github.com/kestrelhq/kestrel/internal/agent"
	"github.com/kestrelhq/kestrel/internal/artifact"
)

// Record types on the chat stream wire. Each turn produces exactly one
// thread_id record first and exactly one terminal record (complete or
// error) last, with content / tool_call / visualization records between
// them in production order.
const (
	RecordThreadID      = "thread_id"
	RecordContent       = "content"
	RecordToolCall      = "tool_call"
	RecordVisualization = "visualization"
	RecordComplete      = "complete"
	RecordError         = "error"
)

// Record is one tagged record of the chat stream, serialized as a JSON
// line over SSE or as a WebSocket frame.
type Record struct {
	Type          string           `json:"type"`
	ThreadID      string           `json:"thread_id,omitempty"`
	Content       string           `json:"content,omitempty"`
	ToolName      string           `json:"tool_name,omitempty"`
	Visualization *artifact.Figure `json:"visualization_data,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// recordFromEvent maps a classified stream event onto the wire. Argument
// fragments are engine-internal and produce no record; a turn boundary
// becomes a paragraph break.
func recordFromEvent(e agent.Event) (Record, bool) {
	switch e.Type {
	case agent.EventText:
		return Record{Type: RecordContent, Content: e.Text}, true
	case agent.EventToolCallStart:
		return Record{Type: RecordToolCall, ToolName: e.ToolName}, true
	case agent.EventTurnBoundary:
		return Record{Type: RecordContent, Content: "\n\n"}, true
	case agent.EventArtifact:
		return Record{Type: RecordVisualization, Visualization: e.Artifact}, true
	default:
		return Record{}, false
	}
}
