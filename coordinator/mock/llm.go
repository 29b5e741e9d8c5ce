// Package mock provides a deterministic LLM gateway for tests and offline
// runs. It walks a fixed script: extract preferences, plan the diet, then
// answer in text.
package mock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dietagent/coordinator"
	"dietagent/tools"
)

// Step is one scripted model response.
type Step struct {
	Content   string
	ToolCalls []tools.Call
	Err       error
}

// LLMClient replays scripted steps in order. Once the script is exhausted it
// keeps returning the final step, so round-limit behavior can be exercised
// by scripting a tool call as the last step.
type LLMClient struct {
	steps []Step
	pos   int
}

func NewLLMClient(steps ...Step) *LLMClient {
	if len(steps) == 0 {
		steps = DefaultScript("I want a balanced diet")
	}
	return &LLMClient{steps: steps}
}

// DefaultScript is the canonical happy path: extract preferences from the
// user's text, request a plan, then answer.
func DefaultScript(userText string) []Step {
	return []Step{
		{
			ToolCalls: []tools.Call{{
				Name:      "extract_preferences",
				Input:     map[string]any{"user_input": userText},
				ToolUseID: uuid.NewString(),
			}},
		},
		{
			ToolCalls: []tools.Call{{
				Name:      "plan_diet",
				Input:     map[string]any{"preferences": map[string]any{}},
				ToolUseID: uuid.NewString(),
			}},
		},
		{
			Content: "Here is a plan based on your preferences. Let me know if you'd like adjustments.",
		},
	}
}

func (c *LLMClient) Invoke(ctx context.Context, prompt coordinator.Prompt) (coordinator.Response, error) {
	if len(c.steps) == 0 {
		return coordinator.Response{}, fmt.Errorf("mock: no scripted steps")
	}

	step := c.steps[c.pos]
	if c.pos < len(c.steps)-1 {
		c.pos++
	}

	slog.Info("LLM_CLIENT: Mock invoked", "step", c.pos, "messages_len", len(prompt.Messages))

	if step.Err != nil {
		return coordinator.Response{}, step.Err
	}

	// Mint fresh IDs per invocation so repeated runs of the final step
	// never reuse a tool-use ID.
	calls := make([]tools.Call, len(step.ToolCalls))
	copy(calls, step.ToolCalls)
	for i := range calls {
		calls[i].ToolUseID = uuid.NewString()
	}

	return coordinator.Response{Content: step.Content, ToolCalls: calls}, nil
}
