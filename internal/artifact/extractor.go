package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMarker is the directory marker that identifies figure file
// references in model output.
const DefaultMarker = "output/"

// Extractor accumulates the text emitted during one turn and watches for
// a figure to resolve, either referenced by file path or embedded inline.
// Detection is opportunistic: the model is not required to announce
// figures at the protocol level, so candidates that fail to parse are
// treated as plain text and scanning resumes on the next fragment.
type Extractor struct {
	marker string
	root   string // base dir for resolving relative file references
	ref    *regexp.Regexp
	buf    strings.Builder
}

// NewExtractor creates an extractor that recognizes file references
// containing the given directory marker (DefaultMarker when empty),
// resolved relative to root ("." when empty).
func NewExtractor(marker, root string) *Extractor {
	if marker == "" {
		marker = DefaultMarker
	}
	if root == "" {
		root = "."
	}
	return &Extractor{
		marker: marker,
		root:   root,
		ref:    regexp.MustCompile(regexp.QuoteMeta(marker) + `[^\s]+\.json`),
	}
}

// Scan appends a text fragment to the turn buffer and attempts to resolve
// a figure. On a match it returns the cleaned residual text (the buffered
// text with the figure's source span removed), the figure, and true; the
// buffer is consumed, so the same source span can never produce a second
// figure. Otherwise the fragment passes through unchanged.
func (e *Extractor) Scan(fragment string) (string, *Figure, bool) {
	e.buf.WriteString(fragment)

	cleaned, fig := e.resolve(e.buf.String())
	if fig == nil {
		return fragment, nil, false
	}
	e.buf.Reset()
	return cleaned, fig, true
}

// Reset discards any accumulated text. Call between turns.
func (e *Extractor) Reset() {
	e.buf.Reset()
}

// resolve applies the detection rules in precedence order:
// file reference, whole-buffer payload, embedded payload.
func (e *Extractor) resolve(buf string) (string, *Figure) {
	// 1. File reference: a path-like token that exists and parses.
	for _, token := range e.ref.FindAllString(buf, -1) {
		path := token
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fig, err := ParseFigure(data)
		if err != nil {
			continue
		}
		return strings.TrimSpace(strings.ReplaceAll(buf, token, "")), fig
	}

	// 2. The whole buffer is a single figure object.
	trimmed := strings.TrimSpace(buf)
	if strings.HasPrefix(trimmed, `{"data":`) && strings.Contains(trimmed, `"layout":`) {
		if fig, err := ParseFigure([]byte(trimmed)); err == nil {
			return "", fig
		}
	}

	// 3. Embedded figure object inside surrounding text. A bracket-depth
	// scan finds balanced candidates so nested objects inside layout are
	// matched correctly.
	for start := 0; start < len(buf); start++ {
		if buf[start] != '{' {
			continue
		}
		end := balancedObjectEnd(buf, start)
		if end < 0 {
			break // unbalanced: the object is still streaming in
		}
		span := buf[start:end]
		if !strings.Contains(span, `"data"`) || !strings.Contains(span, `"layout"`) {
			start = end - 1
			continue
		}
		fig, err := ParseFigure([]byte(span))
		if err != nil {
			start = end - 1
			continue
		}
		return strings.TrimSpace(buf[:start] + buf[end:]), fig
	}

	return buf, nil
}

// balancedObjectEnd returns the index just past the JSON object opening
// at start, or -1 if the object is not closed within s. String literals
// and escapes are honored so braces inside strings don't count.
func balancedObjectEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
