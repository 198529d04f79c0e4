package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kestrelhq/kestrel/internal/artifact"
	"github.com/kestrelhq/kestrel/internal/logging"
)

// nameRe restricts figure names to filesystem-safe tokens.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// VisualizationTool materializes a Plotly-style figure supplied by the
// model to a JSON file under the artifacts directory. The returned file
// path is later recognized by the artifact extractor when the model
// mentions it in its answer.
type VisualizationTool struct {
	dir string
	log *logging.Logger
}

// NewVisualizationTool creates the generate_visualization tool writing
// into dir.
func NewVisualizationTool(dir string, log *logging.Logger) *VisualizationTool {
	return &VisualizationTool{dir: dir, log: log.Sub("tools.viz")}
}

func (t *VisualizationTool) Name() string { return "generate_visualization" }

func (t *VisualizationTool) Description() string {
	return "Generate a Plotly visualization from trace data and a layout. " +
		"Saves the figure as JSON and returns the file path. " +
		"Mention the returned path in your answer so the chart is rendered."
}

func (t *VisualizationTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "Short figure name with underscores and no spaces."
			},
			"data": {
				"type": "array",
				"description": "Plotly trace objects.",
				"items": {"type": "object"}
			},
			"layout": {
				"type": "object",
				"description": "Plotly layout object."
			}
		},
		"required": ["name", "data", "layout"]
	}`
}

// Execute writes the figure and reports where it landed.
func (t *VisualizationTool) Execute(ctx context.Context, args string) (string, error) {
	var in struct {
		Name   string            `json:"name"`
		Data   []json.RawMessage `json:"data"`
		Layout json.RawMessage   `json:"layout"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if !nameRe.MatchString(in.Name) {
		return "", fmt.Errorf("invalid figure name %q", in.Name)
	}
	if len(in.Data) == 0 {
		return "", fmt.Errorf("data must contain at least one trace")
	}

	layout := in.Layout
	if len(layout) == 0 {
		layout = json.RawMessage(`{}`)
	}
	fig := artifact.Figure{Data: in.Data, Layout: layout}

	encoded, err := json.MarshalIndent(fig, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding figure: %w", err)
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifacts directory: %w", err)
	}

	path := filepath.Join(t.dir, in.Name+".json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("writing figure: %w", err)
	}

	t.log.Info().Str("name", in.Name).Str("path", path).Msg("figure written")
	return fmt.Sprintf("Visualization '%s' created successfully and saved to %s", in.Name, path), nil
}
