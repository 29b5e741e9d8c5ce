package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"dietagent/tools/storage"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool is a minimal Tool whose behavior the tests script.
type fakeTool struct {
	name   string
	schema *jsonschema.Schema
	run    func(ctx context.Context, input map[string]any) (map[string]any, error)
}

func (f *fakeTool) Name() string                     { return f.name }
func (f *fakeTool) Title() string                    { return f.name }
func (f *fakeTool) Description() string              { return "test tool" }
func (f *fakeTool) InputSchema() *jsonschema.Schema  { return f.schema }
func (f *fakeTool) OutputSchema() *jsonschema.Schema { return nil }
func (f *fakeTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	return f.run(ctx, input)
}

func newTestRegistry(t *testing.T, extra ...Tool) *Registry {
	t.Helper()
	registry, err := NewRegistry(
		&stubCompleter{text: "{}"},
		storage.NewTestStoreCatalogStateWithError(),
		storage.NewTestPriceTableStateWithError(),
		extra...,
	)
	require.NoError(t, err)
	return registry
}

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	dup := &fakeTool{
		name: "calculate_bmi",
		run: func(ctx context.Context, input map[string]any) (map[string]any, error) {
			return nil, nil
		},
	}

	_, err := NewRegistry(
		&stubCompleter{text: "{}"},
		storage.NewTestStoreCatalogStateWithError(),
		storage.NewTestPriceTableStateWithError(),
		dup,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool name")
}

func TestRegistryGetTool(t *testing.T) {
	registry := newTestRegistry(t)

	tool, err := registry.GetTool("calculate_bmi")
	require.NoError(t, err)
	assert.Equal(t, "calculate_bmi", tool.Name())

	_, err = registry.GetTool("no_such_tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistryGetTools(t *testing.T) {
	registry := newTestRegistry(t)

	names := map[string]bool{}
	for _, tool := range registry.GetTools() {
		names[tool.Name()] = true
	}

	for _, want := range []string{
		"calculate_bmi",
		"extract_preferences",
		"plan_diet",
		"search_nearby_stores",
		"search_recipes",
		"search_coupons",
		"search_product_prices",
	} {
		assert.True(t, names[want], "registry should contain %s", want)
	}
}

func TestRegistryDispatch(t *testing.T) {
	tests := []struct {
		name          string
		call          Call
		expectErr     bool
		expectedData  map[string]any
		errorContains string
	}{
		{
			name: "successful call",
			call: Call{
				Name:      "calculate_bmi",
				Input:     map[string]any{"weight": 80.0, "height": 2.0},
				ToolUseID: "id-1",
			},
			expectedData: map[string]any{"bmi": 20.0, "category": "normal"},
		},
		{
			name: "preference extraction call",
			call: Call{
				Name:      "extract_preferences",
				Input:     map[string]any{"user_input": "I want a vegetarian diet"},
				ToolUseID: "id-6",
			},
			expectedData: map[string]any{"preferences": map[string]any{}},
		},
		{
			name: "preference extraction rejects misnamed argument",
			call: Call{
				Name:      "extract_preferences",
				Input:     map[string]any{"text": "I want a vegetarian diet"},
				ToolUseID: "id-7",
			},
			expectErr:     true,
			errorContains: `"user_input"`,
		},
		{
			name:          "unknown tool",
			call:          Call{Name: "summon_chef", Input: map[string]any{}, ToolUseID: "id-2"},
			expectErr:     true,
			errorContains: "not found",
		},
		{
			name: "schema validation failure",
			call: Call{
				Name:      "calculate_bmi",
				Input:     map[string]any{"weight": "heavy", "height": 1.8},
				ToolUseID: "id-3",
			},
			expectErr:     true,
			errorContains: "expected number",
		},
		{
			name: "missing required argument",
			call: Call{
				Name:      "calculate_bmi",
				Input:     map[string]any{"weight": 80.0},
				ToolUseID: "id-4",
			},
			expectErr:     true,
			errorContains: "required argument missing",
		},
		{
			name: "handler argument error",
			call: Call{
				Name:      "calculate_bmi",
				Input:     map[string]any{"weight": -5.0, "height": 1.8},
				ToolUseID: "id-5",
			},
			expectErr:     true,
			errorContains: "greater than zero",
		},
	}

	registry := newTestRegistry(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := registry.Dispatch(context.Background(), tt.call, time.Second)

			assert.Equal(t, tt.call.ToolUseID, res.ToolUseID)
			assert.Equal(t, tt.call.Name, res.ToolName)

			if tt.expectErr {
				require.Error(t, res.Err)
				errMsg, ok := res.Data["error"].(string)
				require.True(t, ok, "failed dispatch must carry an error payload")
				assert.Contains(t, errMsg, tt.errorContains)
				return
			}

			require.NoError(t, res.Err)
			assert.Equal(t, tt.expectedData, res.Data)
		})
	}
}

func TestRegistryDispatchRecoversPanics(t *testing.T) {
	panicky := &fakeTool{
		name: "panicky",
		run: func(ctx context.Context, input map[string]any) (map[string]any, error) {
			panic("boom")
		},
	}
	registry := newTestRegistry(t, panicky)

	res := registry.Dispatch(context.Background(), Call{Name: "panicky", Input: map[string]any{}}, time.Second)

	require.Error(t, res.Err)
	var execErr *ToolExecutionError
	require.ErrorAs(t, res.Err, &execErr)
	assert.Equal(t, "panicky", execErr.Tool)
	assert.Contains(t, res.Data["error"], "panic: boom")
}

func TestRegistryDispatchWrapsHandlerErrors(t *testing.T) {
	cause := errors.New("backend down")
	failing := &fakeTool{
		name: "failing",
		run: func(ctx context.Context, input map[string]any) (map[string]any, error) {
			return nil, cause
		},
	}
	registry := newTestRegistry(t, failing)

	res := registry.Dispatch(context.Background(), Call{Name: "failing", Input: map[string]any{}}, time.Second)

	require.Error(t, res.Err)
	var execErr *ToolExecutionError
	require.ErrorAs(t, res.Err, &execErr)
	assert.ErrorIs(t, res.Err, cause)
}

func TestRegistryDispatchAppliesTimeout(t *testing.T) {
	slow := &fakeTool{
		name: "slow",
		run: func(ctx context.Context, input map[string]any) (map[string]any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
				return map[string]any{"done": true}, nil
			}
		},
	}
	registry := newTestRegistry(t, slow)

	start := time.Now()
	res := registry.Dispatch(context.Background(), Call{Name: "slow", Input: map[string]any{}}, 20*time.Millisecond)

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
