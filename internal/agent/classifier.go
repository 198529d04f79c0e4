package agent

import (
	"github.com/kestrelhq/kestrel/internal/llm"
)

// Classifier re-segments raw model chunks into typed stream events. It is
// single-pass: each chunk is classified as soon as it arrives, with no
// lookahead, so consumers can render incrementally. One classifier serves
// one streaming call; create a fresh one per generation.
type Classifier struct {
	// inToolCall is true between the first tool-call fragment and the
	// turn boundary that ends the batch.
	inToolCall bool

	// started records which call indexes have had their start announced,
	// so ToolCallStart fires exactly once per call even if a provider
	// repeats the name.
	started map[int]bool
}

// NewClassifier creates a classifier for one streaming call.
func NewClassifier() *Classifier {
	return &Classifier{started: make(map[int]bool)}
}

// Classify maps one chunk to zero or more events, in emission order.
// A chunk with no recognizable payload degrades to its raw textual
// representation as text; malformed provider output never aborts a turn.
func (c *Classifier) Classify(chunk *llm.Chunk) []Event {
	if chunk == nil {
		return nil
	}

	var events []Event

	// A finish reason of "tool_calls" concludes the batch. The boundary
	// is emitted before any payload the same chunk might carry.
	if chunk.FinishReason == llm.FinishToolCalls {
		events = append(events, Event{Type: EventTurnBoundary})
		c.inToolCall = false
	}

	recognized := chunk.FinishReason != ""

	for _, d := range chunk.ToolDeltas {
		recognized = true
		if d.Name != "" && !c.started[d.Index] {
			c.started[d.Index] = true
			c.inToolCall = true
			events = append(events, Event{Type: EventToolCallStart, ToolName: d.Name})
		}
		if d.Args != "" {
			events = append(events, Event{Type: EventToolCallArg, Text: d.Args})
		}
	}

	if text, ok := chunkText(chunk); ok {
		recognized = true
		if text != "" {
			events = append(events, Event{Type: EventText, Text: text})
		}
	}

	if !recognized && chunk.Raw != "" {
		events = append(events, Event{Type: EventText, Text: chunk.Raw})
	}

	return events
}

// InToolCall reports whether the classifier is inside a tool-call batch.
func (c *Classifier) InToolCall() bool {
	return c.inToolCall
}

// chunkText extracts the text content of a chunk, handling both
// representations a provider may use: a plain string, or a sequence of
// typed blocks where only "text" blocks contribute. The second return
// is false when the chunk carries no text content at all.
func chunkText(chunk *llm.Chunk) (string, bool) {
	if chunk.Text != "" {
		return chunk.Text, true
	}
	if chunk.Blocks == nil {
		return "", false
	}
	var text string
	for _, b := range chunk.Blocks {
		if b.Type == "text" {
			text += b.Text
		}
	}
	return text, true
}
