// Package modelfile renders Ollama Modelfiles. The output is only ever
// emitted, never parsed back.
package modelfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parameter is a single PARAMETER line.
type Parameter struct {
	Key   string
	Value string
}

// Spec is the content of a Modelfile. Empty sections are omitted by Render.
type Spec struct {
	// Comment is written as the first line, prefixed with "# ".
	Comment    string
	From       string
	Parameters []Parameter
	System     string
	Template   string
}

const defaultSystem = "You are an AI assistant specialized in explaining machine learning concepts clearly and concisely. You provide accurate, educational responses about ML topics."

// Llama 3 chat template. The {{ }} actions are Ollama's, not ours.
const llama3Template = `{{ if .System }}<|start_header_id|>system<|end_header_id|>

{{ .System }}<|eot_id|>{{ end }}{{ if .Prompt }}<|start_header_id|>user<|end_header_id|>

{{ .Prompt }}<|eot_id|>{{ end }}<|start_header_id|>assistant<|end_header_id|>

`

// Default returns the demo Modelfile for the given base model.
func Default(baseModel string) Spec {
	return Spec{
		Comment: "Ollama Modelfile for LoRA Demo",
		From:    baseModel,
		Parameters: []Parameter{
			{"temperature", "0.7"},
			{"top_p", "0.9"},
			{"top_k", "40"},
		},
		System:   defaultSystem,
		Template: llama3Template,
	}
}

// Render emits the Modelfile text.
func Render(s Spec) string {
	var b strings.Builder
	if s.Comment != "" {
		fmt.Fprintf(&b, "# %s\n", s.Comment)
	}
	fmt.Fprintf(&b, "FROM %s\n", s.From)
	if len(s.Parameters) > 0 {
		b.WriteString("\n# Set custom parameters\n")
		for _, p := range s.Parameters {
			fmt.Fprintf(&b, "PARAMETER %s %s\n", p.Key, p.Value)
		}
	}
	if s.System != "" {
		b.WriteString("\n# Custom system prompt for the fine-tuned model\n")
		fmt.Fprintf(&b, "SYSTEM \"\"\"%s\"\"\"\n", s.System)
	}
	if s.Template != "" {
		b.WriteString("\n# Template for consistent formatting\n")
		fmt.Fprintf(&b, "TEMPLATE \"\"\"%s\"\"\"\n", s.Template)
	}
	return b.String()
}

// Write stores content at path, creating parent directories.
func Write(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("modelfile: create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("modelfile: write %s: %w", path, err)
	}
	return nil
}
