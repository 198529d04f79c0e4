package gateway

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/kestrel/internal/agent"
	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/llm"
	"github.com/kestrelhq/kestrel/internal/logging"
)

func newTestGateway(t *testing.T, scripts [][]llm.StreamEvent) *httptest.Server {
	t.Helper()

	log := logging.New(io.Discard, "error")
	client := &llm.MockClient{Scripts: scripts}
	runner := agent.NewRunner(
		agent.RunnerConfig{Model: "mock-model"},
		client,
		agent.NewMemoryStore(),
		agent.NewToolRegistry(),
		log,
	)

	cfg := config.Defaults()
	s := New(cfg, runner, log)

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	ts := httptest.NewServer(withMiddleware(mux, log, nil))
	t.Cleanup(ts.Close)
	return ts
}

func textScript(text string) []llm.StreamEvent {
	return []llm.StreamEvent{
		{Type: "chunk", Chunk: &llm.Chunk{Text: text}},
		{Type: "done", Response: &llm.Response{Content: text, StopReason: llm.FinishEnd}},
	}
}

// readSSERecords parses data-only SSE lines into records.
func readSSERecords(t *testing.T, body io.Reader) []Record {
	t.Helper()
	var records []Record
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &rec))
		records = append(records, rec)
	}
	return records
}

func postChat(t *testing.T, ts *httptest.Server, req ChatRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChatStreamsTextTurn(t *testing.T) {
	ts := newTestGateway(t, [][]llm.StreamEvent{textScript("hello there")})

	resp := postChat(t, ts, ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	records := readSSERecords(t, resp.Body)
	require.NotEmpty(t, records)

	assert.Equal(t, RecordThreadID, records[0].Type)
	assert.NotEmpty(t, records[0].ThreadID)
	assert.Equal(t, RecordComplete, records[len(records)-1].Type)

	var text strings.Builder
	for _, rec := range records {
		if rec.Type == RecordContent {
			text.WriteString(rec.Content)
		}
	}
	assert.Equal(t, "hello there", text.String())
}

func TestChatStreamsToolCallAndBoundary(t *testing.T) {
	scripts := [][]llm.StreamEvent{
		{
			{Type: "chunk", Chunk: &llm.Chunk{ToolDeltas: []llm.ToolCallDelta{{Index: 0, ID: "c1", Name: "query_database"}}}},
			{Type: "chunk", Chunk: &llm.Chunk{ToolDeltas: []llm.ToolCallDelta{{Index: 0, Args: `{"query": "SELECT 1"}`}}}},
			{Type: "chunk", Chunk: &llm.Chunk{FinishReason: llm.FinishToolCalls}},
			{Type: "done", Response: &llm.Response{
				StopReason: llm.FinishToolCalls,
				ToolCalls:  []llm.ToolCall{{ID: "c1", Name: "query_database", Args: `{"query": "SELECT 1"}`}},
			}},
		},
		textScript("no rows found"),
	}
	ts := newTestGateway(t, scripts)

	resp := postChat(t, ts, ChatRequest{Message: "query something"})
	records := readSSERecords(t, resp.Body)

	var toolCalls []string
	for _, rec := range records {
		if rec.Type == RecordToolCall {
			toolCalls = append(toolCalls, rec.ToolName)
		}
	}
	// The unknown tool fails soft; the stream still completes.
	assert.Equal(t, []string{"query_database"}, toolCalls)
	assert.Equal(t, RecordComplete, records[len(records)-1].Type)
}

func TestChatStreamsVisualization(t *testing.T) {
	figure := `{"data": [{"type": "bar"}], "layout": {"title": "Q1"}}`
	ts := newTestGateway(t, [][]llm.StreamEvent{
		{
			{Type: "chunk", Chunk: &llm.Chunk{Text: figure}},
			{Type: "done", Response: &llm.Response{Content: figure, StopReason: llm.FinishEnd}},
		},
	})

	resp := postChat(t, ts, ChatRequest{Message: "plot it"})
	records := readSSERecords(t, resp.Body)

	var viz int
	for _, rec := range records {
		if rec.Type == RecordVisualization {
			viz++
			require.NotNil(t, rec.Visualization)
			assert.Len(t, rec.Visualization.Data, 1)
		}
	}
	assert.Equal(t, 1, viz)
}

func TestChatTurnErrorEmitsErrorRecord(t *testing.T) {
	ts := newTestGateway(t, [][]llm.StreamEvent{
		{{Type: "error", Error: "provider exploded"}},
	})

	resp := postChat(t, ts, ChatRequest{Message: "hi"})
	records := readSSERecords(t, resp.Body)
	require.NotEmpty(t, records)

	last := records[len(records)-1]
	assert.Equal(t, RecordError, last.Type)
	assert.Contains(t, last.Error, "provider exploded")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	ts := newTestGateway(t, nil)

	resp := postChat(t, ts, ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatReusesSuppliedThreadID(t *testing.T) {
	ts := newTestGateway(t, [][]llm.StreamEvent{textScript("ok")})

	resp := postChat(t, ts, ChatRequest{Message: "hi", ThreadID: "my-thread"})
	records := readSSERecords(t, resp.Body)
	require.NotEmpty(t, records)
	assert.Equal(t, "my-thread", records[0].ThreadID)
}

func TestConversationEndpoint(t *testing.T) {
	ts := newTestGateway(t, [][]llm.StreamEvent{textScript("stored answer")})

	resp := postChat(t, ts, ChatRequest{Message: "remember this", ThreadID: "t-conv"})
	io.Copy(io.Discard, resp.Body)

	convResp, err := http.Get(ts.URL + "/conversations/t-conv")
	require.NoError(t, err)
	defer convResp.Body.Close()
	require.Equal(t, http.StatusOK, convResp.StatusCode)

	var conv ConversationResponse
	require.NoError(t, json.NewDecoder(convResp.Body).Decode(&conv))
	assert.Equal(t, "t-conv", conv.ThreadID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "remember this", conv.Messages[0].Content)
	assert.Equal(t, "stored answer", conv.Messages[1].Content)
}

func TestConversationUnseenThreadIsEmpty(t *testing.T) {
	ts := newTestGateway(t, nil)

	resp, err := http.Get(ts.URL + "/conversations/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var conv ConversationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
	assert.Empty(t, conv.Messages)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestGateway(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}

func TestUnknownRouteReturns404(t *testing.T) {
	ts := newTestGateway(t, nil)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketChat(t *testing.T) {
	ts := newTestGateway(t, [][]llm.StreamEvent{textScript("ws answer")})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "hi"}))

	var records []Record
	for {
		var rec Record
		require.NoError(t, conn.ReadJSON(&rec))
		records = append(records, rec)
		if rec.Type == RecordComplete || rec.Type == RecordError {
			break
		}
	}

	require.NotEmpty(t, records)
	assert.Equal(t, RecordThreadID, records[0].Type)
	assert.Equal(t, RecordComplete, records[len(records)-1].Type)

	var text strings.Builder
	for _, rec := range records {
		if rec.Type == RecordContent {
			text.WriteString(rec.Content)
		}
	}
	assert.Equal(t, "ws answer", text.String())
}
