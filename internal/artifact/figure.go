// Package artifact recognizes visualization payloads embedded in model
// text output and splits them out of the text stream.
package artifact

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	errMissingData   = errors.New("artifact: missing or invalid data field")
	errMissingLayout = errors.New("artifact: missing or invalid layout field")
)

// Figure is a visualization payload: an ordered sequence of trace objects
// plus a layout object. Both fields are required.
type Figure struct {
	Data   []json.RawMessage `json:"data"`
	Layout json.RawMessage   `json:"layout"`
}

// ParseFigure parses b as a Figure and validates that it carries a data
// array and a layout object.
func ParseFigure(b []byte) (*Figure, error) {
	var fig Figure
	if err := json.Unmarshal(b, &fig); err != nil {
		return nil, err
	}
	if fig.Data == nil {
		return nil, errMissingData
	}
	if !isJSONObject(fig.Layout) {
		return nil, errMissingLayout
	}
	return &fig, nil
}

func isJSONObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}
