package coordinator

import (
	"context"
	"fmt"
)

// Completer adapts an LLMClient to the one-shot prompt-in, text-out contract
// the LLM-backed tools consume. No tools are offered, so the model can only
// answer in text.
type Completer struct {
	llm LLMClient
}

func NewCompleter(llm LLMClient) *Completer {
	return &Completer{llm: llm}
}

func (c *Completer) CompleteText(ctx context.Context, prompt string) (string, error) {
	res, err := c.llm.Invoke(ctx, Prompt{
		Messages: []Message{NewTextMessage(RoleUser, prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return res.Content, nil
}
