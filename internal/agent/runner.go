// Package agent implements the conversation orchestration engine: a
// stateful turn loop that alternates between model generation and tool
// invocation, classifying the model's incremental output into typed
// stream events along the way.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelhq/kestrel/internal/artifact"
	"github.com/kestrelhq/kestrel/internal/domain"
	"github.com/kestrelhq/kestrel/internal/llm"
	"github.com/kestrelhq/kestrel/internal/logging"
)

// DefaultMaxIterations bounds the generate/act loop of one turn.
const DefaultMaxIterations = 8

// State identifies where the turn loop is in its lifecycle.
type State string

const (
	StateGenerating State = "generating"
	StateRouting    State = "routing"
	StateInvoking   State = "invoking"
	StateDone       State = "done"
	StateAborted    State = "aborted"
)

// RunnerConfig configures the turn executor. It is immutable for the
// runner's lifetime.
type RunnerConfig struct {
	AgentName     string
	Model         string
	MaxTokens     int
	Temperature   *float64
	MaxIterations int // generate/act rounds per turn; DefaultMaxIterations when zero
	ExtraPrompt   string
	WorkDir       string

	// ArtifactMarker and ArtifactRoot configure figure file-reference
	// detection; see artifact.NewExtractor.
	ArtifactMarker string
	ArtifactRoot   string
}

// TurnResult is the outcome of one completed or aborted turn.
type TurnResult struct {
	ThreadID string        `json:"threadId"`
	State    State         `json:"state"`
	Response string        `json:"response"`
	Model    string        `json:"model,omitempty"`
	Usage    llm.Usage     `json:"usage"`
	Duration time.Duration `json:"duration"`
}

// Runner drives the generate/act loop for one engine instance. A single
// runner serves all threads; turns on distinct threads may run
// concurrently, while calls for one thread are expected to be sequential.
type Runner struct {
	cfg      RunnerConfig
	client   llm.Client
	store    Store
	tools    *ToolRegistry
	dispatch *Dispatcher
	system   string
	log      *logging.Logger
}

// NewRunner creates a turn executor over the given model client, session
// store, and tool catalog.
func NewRunner(cfg RunnerConfig, client llm.Client, store Store, tools *ToolRegistry, log *logging.Logger) *Runner {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	system := BuildSystemPrompt(PromptConfig{
		AgentName:   cfg.AgentName,
		Tools:       tools.All(),
		WorkDir:     cfg.WorkDir,
		ExtraPrompt: cfg.ExtraPrompt,
	})
	return &Runner{
		cfg:      cfg,
		client:   client,
		store:    store,
		tools:    tools,
		dispatch: NewDispatcher(tools, log),
		system:   system,
		log:      log.Sub("agent"),
	}
}

// Tools returns the runner's tool catalog.
func (r *Runner) Tools() *ToolRegistry {
	return r.tools
}

// Store returns the runner's session store.
func (r *Runner) Store() Store {
	return r.store
}

// Turn runs one full generate/act cycle for a new user message on the
// given thread, emitting classified stream events to sink as they are
// produced. Messages are appended to the store as they are committed;
// on a turn-fatal failure the messages appended so far stay in place
// and the returned result reports StateAborted.
func (r *Runner) Turn(ctx context.Context, threadID, userText string, sink EventSink) (*TurnResult, error) {
	start := time.Now()
	emit := func(e Event) {
		if sink != nil {
			sink(e)
		}
	}

	log := r.log.WithThread(threadID)

	history, err := r.store.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	log.Info().
		Int("historyLen", len(history)).
		Msg("processing message")

	userMsg := domain.Message{Role: domain.RoleUser, Content: userText, Timestamp: time.Now()}
	if err := r.store.Append(ctx, threadID, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	history = append(history, userMsg)

	extractor := artifact.NewExtractor(r.cfg.ArtifactMarker, r.cfg.ArtifactRoot)
	result := &TurnResult{ThreadID: threadID, State: StateGenerating, Model: r.cfg.Model}

	abort := func(err error) (*TurnResult, error) {
		result.State = StateAborted
		result.Duration = time.Since(start)
		return result, err
	}

	for i := 0; ; i++ {
		if i >= r.cfg.MaxIterations {
			log.Warn().
				Int("iterations", i).
				Msg("turn iteration limit exceeded")
			return abort(fmt.Errorf("thread %s after %d iterations: %w", threadID, i, ErrTurnLimit))
		}
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		result.State = StateGenerating
		resp, err := r.generate(ctx, history, extractor, emit)
		if err != nil {
			return abort(err)
		}
		result.Usage.InputTokens += resp.Usage.InputTokens
		result.Usage.OutputTokens += resp.Usage.OutputTokens
		if resp.Model != "" {
			result.Model = resp.Model
		}

		assistant := domain.Message{
			Role:      domain.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: toDomainCalls(resp.ToolCalls),
			Timestamp: time.Now(),
		}
		if err := r.store.Append(ctx, threadID, assistant); err != nil {
			return abort(fmt.Errorf("append assistant message: %w", err))
		}
		history = append(history, assistant)

		result.State = StateRouting
		if len(resp.ToolCalls) == 0 {
			result.State = StateDone
			result.Response = resp.Content
			result.Duration = time.Since(start)
			log.Info().
				Str("model", result.Model).
				Int("inputTokens", result.Usage.InputTokens).
				Int("outputTokens", result.Usage.OutputTokens).
				Dur("duration", result.Duration).
				Msg("turn complete")
			return result, nil
		}

		log.Info().
			Int("toolCalls", len(resp.ToolCalls)).
			Msg("executing tool calls")

		// Invoking: strictly in emission order, never in parallel. Later
		// calls in a batch may depend on earlier calls' side effects.
		result.State = StateInvoking
		for _, call := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return abort(err)
			}
			tr := r.dispatch.Dispatch(ctx, domain.ToolCall{ID: call.ID, Name: call.Name, Args: call.Args})
			toolMsg := domain.Message{
				Role:       domain.RoleTool,
				Content:    tr.Content,
				ToolCallID: tr.CallID,
				Timestamp:  time.Now(),
			}
			if err := r.store.Append(ctx, threadID, toolMsg); err != nil {
				return abort(fmt.Errorf("append tool result: %w", err))
			}
			history = append(history, toolMsg)
		}
		// Back to Generating so the model can react to the results.
	}
}

// generate runs one model invocation, classifying chunks into events and
// routing text through the artifact extractor. It returns the provider's
// accumulated response.
func (r *Runner) generate(ctx context.Context, history []domain.Message, ex *artifact.Extractor, emit func(Event)) (*llm.Response, error) {
	req := llm.Request{
		Model:       r.cfg.Model,
		System:      r.system,
		Messages:    toLLMMessages(history),
		Tools:       r.tools.Definitions(),
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	}

	ch, err := r.client.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model stream: %w", err)
	}

	classifier := NewClassifier()
	var resp *llm.Response

	for evt := range ch {
		switch evt.Type {
		case "chunk":
			for _, e := range classifier.Classify(evt.Chunk) {
				if e.Type != EventText {
					emit(e)
					continue
				}
				text, fig, found := ex.Scan(e.Text)
				if found {
					// The cleaned residual replaces the buffered text;
					// the figure follows as its own event.
					if strings.TrimSpace(text) != "" {
						emit(Event{Type: EventText, Text: text})
					}
					emit(Event{Type: EventArtifact, Artifact: fig})
					continue
				}
				if text != "" {
					emit(Event{Type: EventText, Text: text})
				}
			}
		case "done":
			resp = evt.Response
		case "error":
			return nil, fmt.Errorf("model stream: %s", evt.Error)
		}
	}

	if resp == nil {
		return nil, fmt.Errorf("model stream ended without a response")
	}
	return resp, nil
}

// toDomainCalls converts provider tool calls to stored form.
func toDomainCalls(calls []llm.ToolCall) []domain.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]domain.ToolCall, len(calls))
	for i, c := range calls {
		out[i] = domain.ToolCall{ID: c.ID, Name: c.Name, Args: c.Args}
	}
	return out
}

// toLLMMessages renders stored history in the provider-facing shape.
func toLLMMessages(history []domain.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msg := llm.Message{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, c := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{ID: c.ID, Name: c.Name, Args: c.Args})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
