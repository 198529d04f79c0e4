package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient is a direct HTTP client for the Anthropic messages API.
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropicClient creates a new Anthropic API client.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicMessagesURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Complete sends a non-streaming completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(c.buildRequestBody(req, false))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return result.toResponse(), nil
}

// Stream sends a streaming completion request. Chunks are forwarded as
// they arrive; a terminal "done" event carries the accumulated response.
func (c *AnthropicClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	eventChan := make(chan StreamEvent)

	payload, err := json.Marshal(c.buildRequestBody(req, true))
	if err != nil {
		close(eventChan)
		return eventChan, fmt.Errorf("marshal request: %w", err)
	}

	go c.streamRequest(ctx, eventChan, payload)
	return eventChan, nil
}

func (c *AnthropicClient) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	return httpReq, nil
}

func (c *AnthropicClient) buildRequestBody(req Request, stream bool) map[string]any {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := map[string]any{
		"model":      model,
		"messages":   messagesToAnthropic(req.Messages),
		"max_tokens": maxTokens,
		"stream":     stream,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = map[string]any{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": parseJSONSchema(t.InputSchema),
			}
		}
		body["tools"] = tools
	}
	return body
}

// messagesToAnthropic renders the provider wire form of the history.
// Assistant tool requests become tool_use content blocks; tool results
// become tool_result blocks on a user-role message, which is the form
// the messages API expects.
func messagesToAnthropic(msgs []Message) []map[string]any {
	result := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case len(m.ToolCalls) > 0:
			blocks := make([]map[string]any, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, map[string]any{"type": "text", "text": m.Content})
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Name,
					"input": parseJSONSchema(tc.Args),
				})
			}
			result = append(result, map[string]any{"role": RoleAssistant, "content": blocks})

		case m.Role == RoleTool:
			result = append(result, map[string]any{
				"role": RoleUser,
				"content": []map[string]any{{
					"type":        "tool_result",
					"tool_use_id": m.ToolCallID,
					"content":     m.Content,
				}},
			})

		default:
			result = append(result, map[string]any{"role": m.Role, "content": m.Content})
		}
	}
	return result
}

func (c *AnthropicClient) streamRequest(ctx context.Context, eventChan chan StreamEvent, payload []byte) {
	defer close(eventChan)

	httpReq, err := c.newRequest(ctx, payload)
	if err != nil {
		eventChan <- StreamEvent{Type: "error", Error: err.Error()}
		return
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		eventChan <- StreamEvent{Type: "error", Error: fmt.Sprintf("request failed: %v", err)}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		eventChan <- StreamEvent{Type: "error", Error: fmt.Sprintf("API error (%d): %s", resp.StatusCode, string(body))}
		return
	}

	var (
		fullContent strings.Builder
		usage       Usage
		stopReason  string
		// tool calls under assembly, keyed by content block index
		pending = map[int]*ToolCall{}
	)

	send := func(ev StreamEvent) bool {
		select {
		case eventChan <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := newServerSentEventScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		dataStr := strings.TrimPrefix(line, "data: ")
		if dataStr == "[DONE]" {
			break
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
			continue
		}

		switch event.Type {
		case "message_start":
			if event.Message != nil {
				usage.InputTokens = event.Message.Usage.InputTokens
			}

		case "content_block_start":
			if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
				pending[event.Index] = &ToolCall{ID: event.ContentBlock.ID, Name: event.ContentBlock.Name}
				if !send(StreamEvent{Type: "chunk", Chunk: &Chunk{
					ToolDeltas: []ToolCallDelta{{
						Index: event.Index,
						ID:    event.ContentBlock.ID,
						Name:  event.ContentBlock.Name,
					}},
				}}) {
					return
				}
			}

		case "content_block_delta":
			switch event.Delta.Type {
			case "text_delta":
				fullContent.WriteString(event.Delta.Text)
				if !send(StreamEvent{Type: "chunk", Chunk: &Chunk{Text: event.Delta.Text}}) {
					return
				}
			case "input_json_delta":
				if tc, ok := pending[event.Index]; ok {
					tc.Args += event.Delta.PartialJSON
				}
				if !send(StreamEvent{Type: "chunk", Chunk: &Chunk{
					ToolDeltas: []ToolCallDelta{{Index: event.Index, Args: event.Delta.PartialJSON}},
				}}) {
					return
				}
			}

		case "message_delta":
			if event.Delta.StopReason != "" {
				stopReason = event.Delta.StopReason
				if event.Usage != nil {
					usage.OutputTokens = event.Usage.OutputTokens
				}
				if stopReason == "tool_use" {
					if !send(StreamEvent{Type: "chunk", Chunk: &Chunk{FinishReason: FinishToolCalls}}) {
						return
					}
				}
			}
		}
	}

	// Assemble tool calls in content block order.
	indexes := make([]int, 0, len(pending))
	for i := range pending {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	var toolCalls []ToolCall
	for _, i := range indexes {
		toolCalls = append(toolCalls, *pending[i])
	}

	send(StreamEvent{
		Type: "done",
		Response: &Response{
			Content:    fullContent.String(),
			StopReason: stopReason,
			ToolCalls:  toolCalls,
			Usage:      usage,
			Model:      c.model,
		},
	})
}

func (r *anthropicResponse) toResponse() *Response {
	var content strings.Builder
	var toolCalls []ToolCall

	for _, block := range r.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.Text)
		case "tool_use":
			toolCalls = append(toolCalls, ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: string(block.Input),
			})
		}
	}

	return &Response{
		Content:    content.String(),
		StopReason: r.StopReason,
		ToolCalls:  toolCalls,
		Usage: Usage{
			InputTokens:  r.Usage.InputTokens,
			OutputTokens: r.Usage.OutputTokens,
		},
		Model: r.Model,
	}
}

// API wire structures

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicStreamEvent struct {
	Type         string                 `json:"type"`
	Index        int                    `json:"index,omitempty"`
	Message      *anthropicResponse     `json:"message,omitempty"`
	ContentBlock *anthropicContentBlock `json:"content_block,omitempty"`
	Delta        anthropicStreamDelta   `json:"delta,omitempty"`
	Usage        *anthropicUsage        `json:"usage,omitempty"`
}

type anthropicStreamDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}
