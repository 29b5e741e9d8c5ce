package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dietagent/tools/storage"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a new tool registry wired with the core diet tools.
// Additional tools (e.g. report generation) can be passed in by the caller.
func NewRegistry(llm TextCompleter, stores storage.StoreCatalogState, prices storage.PriceTableState, extra ...Tool) (*Registry, error) {
	cache := newLookupCache()

	all := []Tool{
		NewBMICalculator(),
		NewPreferencesExtract(llm),
		NewDietPlan(llm),
		NewStoreSearch(stores, cache),
		NewRecipeSearch(cache),
		NewCouponSearch(cache),
		NewPriceSearch(prices, cache),
	}
	all = append(all, extra...)

	tools := make(map[string]Tool, len(all))
	for _, t := range all {
		if _, exists := tools[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		tools[t.Name()] = t
	}

	registry := Registry(tools)
	return &registry, nil
}

// GetTools returns all tools in the registry as a slice
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Dispatch looks up the named tool, validates the call input against its
// schema, and runs it under the given timeout. Every call produces a Result:
// failures become an "error" payload rather than escaping the registry
// boundary, so the orchestration loop always has an outcome to feed back.
func (r Registry) Dispatch(ctx context.Context, call Call, timeout time.Duration) Result {
	res := Result{ToolUseID: call.ToolUseID, ToolName: call.Name}

	tool, err := r.GetTool(call.Name)
	if err != nil {
		res.Err = err
		res.Data = map[string]any{"error": fmt.Sprintf("tool %q not found: %v", call.Name, err)}
		return res
	}

	if err := validateInput(call.Name, tool.InputSchema(), call.Input); err != nil {
		res.Err = err
		res.Data = map[string]any{"error": err.Error()}
		return res
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	data, err := runTool(ctx, tool, call.Input)
	if err != nil {
		res.Err = err
		res.Data = map[string]any{"error": err.Error()}
		return res
	}

	res.Data = data
	return res
}

// runTool executes the handler, converting panics and errors into
// ToolExecutionError.
func runTool(ctx context.Context, tool Tool, input map[string]any) (data map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("REGISTRY: Tool handler panicked", "tool", tool.Name(), "panic", rec)
			data = nil
			err = &ToolExecutionError{Tool: tool.Name(), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	data, err = tool.Run(ctx, input)
	if err != nil {
		// Preserve argument errors raised inside handlers (e.g. BMI bounds).
		if _, ok := err.(*InvalidArgumentError); ok {
			return nil, err
		}
		return nil, &ToolExecutionError{Tool: tool.Name(), Err: err}
	}
	return data, nil
}
