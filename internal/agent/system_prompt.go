package agent

import (
	"fmt"
	"strings"
	"time"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	AgentName   string
	Tools       []Tool
	WorkDir     string
	ExtraPrompt string
}

// BuildSystemPrompt constructs the system prompt for the model. When the
// catalog contains data-analysis tools a specialized analysis prompt is
// used; otherwise the general assistant prompt applies. The tool catalog
// and working directory are interpolated into the prompt body.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	name := cfg.AgentName
	if name == "" {
		name = "Kestrel"
	}

	if hasAnalysisTools(cfg.Tools) {
		fmt.Fprintf(&b, "You are %s, a data analysis assistant.\n\n", name)
		b.WriteString("You help users explore datasets, run SQL queries, and build visualizations.\n")
		b.WriteString("Work step by step: inspect the data before querying it, and query before plotting.\n")
		b.WriteString("When a question calls for a chart, produce the figure with the visualization tool\n")
		b.WriteString("and mention the generated file in your answer.\n")
		b.WriteString("Report query results faithfully; if a query fails, explain the failure and adjust.\n")
	} else {
		fmt.Fprintf(&b, "You are %s, a helpful assistant.\n\n", name)
		b.WriteString("Answer concisely and accurately. If you don't know something, say so\n")
		b.WriteString("rather than guessing.\n")
	}

	fmt.Fprintf(&b, "\nCurrent date: %s\n", time.Now().Format("2006-01-02"))

	if cfg.WorkDir != "" {
		fmt.Fprintf(&b, "Working directory: %s\n", cfg.WorkDir)
	}

	if len(cfg.Tools) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, t := range cfg.Tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		}
	}

	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}

// hasAnalysisTools reports whether the catalog includes the data tools
// that warrant the analysis prompt.
func hasAnalysisTools(tools []Tool) bool {
	for _, t := range tools {
		name := t.Name()
		if strings.Contains(name, "query_database") || strings.Contains(name, "visualization") {
			return true
		}
	}
	return false
}
