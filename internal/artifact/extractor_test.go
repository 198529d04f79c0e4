package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const figureJSON = `{"data": [{"type": "bar", "x": [1, 2], "y": [3, 4]}], "layout": {"title": "Q1"}}`

func TestParseFigure(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", figureJSON, false},
		{"empty data array still valid", `{"data": [], "layout": {}}`, false},
		{"missing layout", `{"data": []}`, true},
		{"missing data", `{"layout": {}}`, true},
		{"layout not an object", `{"data": [], "layout": "big"}`, true},
		{"data not an array", `{"data": {"x": 1}, "layout": {}}`, true},
		{"not json", `{data: [}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFigure([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScanWholeBufferPayload(t *testing.T) {
	e := NewExtractor("", "")

	text, fig, found := e.Scan(figureJSON)
	require.True(t, found)
	require.NotNil(t, fig)
	assert.Empty(t, text)
	assert.Len(t, fig.Data, 1)
}

func TestScanFileReference(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "output"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "output", "sales_q1.json"), []byte(figureJSON), 0o644))

	e := NewExtractor("output/", root)

	text, fig, found := e.Scan("see output/sales_q1.json for chart")
	require.True(t, found)
	require.NotNil(t, fig)
	assert.Equal(t, "see  for chart", text)
}

func TestScanFileReferenceMissingFilePassesThrough(t *testing.T) {
	e := NewExtractor("output/", t.TempDir())

	text, fig, found := e.Scan("see output/missing.json for chart")
	assert.False(t, found)
	assert.Nil(t, fig)
	assert.Equal(t, "see output/missing.json for chart", text)
}

func TestScanEmbeddedPayloadWithNestedLayout(t *testing.T) {
	e := NewExtractor("", "")

	// Nested objects inside layout defeat naive non-nested matching.
	payload := `{"data": [{"type": "scatter"}], "layout": {"title": {"text": "Revenue"}, "xaxis": {"type": "date"}}}`
	text, fig, found := e.Scan("Here is the chart: " + payload + " Let me know!")
	require.True(t, found)
	require.NotNil(t, fig)
	assert.Equal(t, "Here is the chart:  Let me know!", text)

	var layout map[string]any
	require.NoError(t, json.Unmarshal(fig.Layout, &layout))
	assert.Contains(t, layout, "xaxis")
}

func TestScanAccumulatesAcrossFragments(t *testing.T) {
	e := NewExtractor("", "")

	first := `{"data": [{"type": "bar"}], `
	text, fig, found := e.Scan(first)
	assert.False(t, found)
	assert.Nil(t, fig)
	assert.Equal(t, first, text)

	text, fig, found = e.Scan(`"layout": {"title": "Q1"}}`)
	require.True(t, found)
	require.NotNil(t, fig)
	assert.Empty(t, text)
}

func TestScanNeverEmitsTwiceForSameSpan(t *testing.T) {
	e := NewExtractor("", "")

	_, fig, found := e.Scan(figureJSON)
	require.True(t, found)
	require.NotNil(t, fig)

	// Same accumulated buffer, no new input: the span was consumed.
	_, fig, found = e.Scan("")
	assert.False(t, found)
	assert.Nil(t, fig)
}

func TestScanParseFailurePassesThrough(t *testing.T) {
	e := NewExtractor("", "")

	// Balanced braces and both keys present, but not valid JSON.
	junk := `{"data": [oops], "layout": {bad}}`
	text, fig, found := e.Scan(junk)
	assert.False(t, found)
	assert.Nil(t, fig)
	assert.Equal(t, junk, text)
}

func TestScanPlainTextPassesThrough(t *testing.T) {
	e := NewExtractor("", "")

	text, fig, found := e.Scan("no charts here, just words")
	assert.False(t, found)
	assert.Nil(t, fig)
	assert.Equal(t, "no charts here, just words", text)
}

func TestScanIgnoresBracesInsideStrings(t *testing.T) {
	e := NewExtractor("", "")

	payload := `{"data": [{"name": "curly {brace} trace"}], "layout": {"title": "ok"}}`
	_, fig, found := e.Scan(payload)
	require.True(t, found)
	require.NotNil(t, fig)
}

func TestBalancedObjectEnd(t *testing.T) {
	tests := []struct {
		s     string
		start int
		want  int
	}{
		{`{}`, 0, 2},
		{`{"a": {"b": 1}}`, 0, 15},
		{`{"a": "}"}`, 0, 10},
		{`{"a": "\"}"}`, 0, 12},
		{`{"open": 1`, 0, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, balancedObjectEnd(tt.s, tt.start), "input %q", tt.s)
	}
}
