package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

// TextCompleter is the one-shot LLM contract consumed by LLM-backed tools:
// prompt in, generated text out. Callers must defensively parse the text.
type TextCompleter interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
}

// Call is a tool invocation requested by the model.
type Call struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// Result is the outcome of dispatching a Call. Data always carries a payload:
// on failure it holds an "error" field so the model can react instead of the
// loop crashing.
type Result struct {
	ToolUseID string         `json:"tool_use_id,omitempty"`
	ToolName  string         `json:"tool_name"`
	Data      map[string]any `json:"data"`
	Err       error          `json:"-"`
}

// InvalidArgumentError reports tool arguments that failed validation. It is
// fed back to the model as a tool-error message so it can retry with
// corrected arguments.
type InvalidArgumentError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %q: invalid argument: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %q: invalid argument %q: %s", e.Tool, e.Field, e.Reason)
}

// ToolExecutionError wraps any failure raised inside a tool handler, caught
// at the dispatch boundary.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
