package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"dietagent"
	"dietagent/tools"
)

// ErrRoundLimit is returned when the model is still requesting tools at the
// round cap. The accompanying text is the best partial answer available.
var ErrRoundLimit = errors.New("round limit reached before a final answer")

// LLMClient is the backend gateway contract. Implementations translate the
// neutral prompt into their wire format and back.
type LLMClient interface {
	Invoke(ctx context.Context, prompt Prompt) (Response, error)
}

// ToolDispatcher executes tool calls. *tools.Registry satisfies it.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call tools.Call, timeout time.Duration) tools.Result
}

// Coordinator drives the model/tool orchestration loop for a conversation
// turn. It is safe for concurrent use across sessions; each session's own
// mutex serializes turns within that conversation.
type Coordinator struct {
	llm         LLMClient
	dispatcher  ToolDispatcher
	maxRounds   int
	toolTimeout time.Duration
	logger      dietagent.TurnLogger
}

// NewCoordinator initializes a new coordinator.
func NewCoordinator(llm LLMClient, dispatcher ToolDispatcher, maxRounds int, toolTimeout time.Duration, logger dietagent.TurnLogger) *Coordinator {
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &Coordinator{
		llm:         llm,
		dispatcher:  dispatcher,
		maxRounds:   maxRounds,
		toolTimeout: toolTimeout,
		logger:      logger,
	}
}

// ProcessTurn appends the user's input to the session and runs model/tool
// rounds until the model answers in plain text or the round cap is hit. The
// session history is append-only; nothing is rewritten on failure.
func (c *Coordinator) ProcessTurn(ctx context.Context, session *Session, input string) (string, error) {
	ctx, span := otel.Tracer(dietagent.TracerNameCoordinator).Start(ctx, "Coordinator.ProcessTurn")
	defer span.End()

	session.mu.Lock()
	defer session.mu.Unlock()

	slog.Info("COORDINATOR: Starting turn", "session_id", session.ID, "input_len", len(input))

	session.append(NewTextMessage(RoleUser, input))

	var lastContent string

	for round := 1; round <= c.maxRounds; round++ {
		prompt := session.prompt()
		roundLog := dietagent.RoundLog{Round: round, Timestamp: time.Now()}

		if b, merr := json.Marshal(prompt); merr == nil {
			roundLog.LLMInput = string(b)
			slog.Info("COORDINATOR: Sending prompt to LLM",
				"round", round,
				"messages_count", len(prompt.Messages),
				"tools_count", len(prompt.Tools),
				"prompt_size_bytes", len(b),
			)
		}

		res, err := c.llm.Invoke(ctx, prompt)
		if err != nil {
			roundLog.Error = err.Error()
			c.logRound(roundLog)
			return "", fmt.Errorf("invoke failed: %w", err)
		}
		roundLog.LLMOutput = res

		slog.Info("COORDINATOR: LLM response received",
			"round", round,
			"content_length", len(res.Content),
			"tool_calls", len(res.ToolCalls),
		)

		if res.Content != "" {
			lastContent = res.Content
		}

		// No tool calls: the content is the final answer for this turn.
		if len(res.ToolCalls) == 0 {
			session.append(NewTextMessage(RoleAssistant, res.Content))
			c.logRound(roundLog)
			return res.Content, nil
		}

		// Record the assistant message with its tool_use parts before the
		// results, keeping the history replayable by any backend.
		assistantMsg := Message{Role: RoleAssistant, Content: MessageParts{}}
		if res.Content != "" {
			assistantMsg.Content = append(assistantMsg.Content, MessagePart{Type: "text", Text: res.Content})
		}
		for _, call := range res.ToolCalls {
			slog.Info("COORDINATOR: Handling tool call", "name", call.Name, "round", round)
			assistantMsg.Content = append(assistantMsg.Content, MessagePart{
				Type:      "tool_use",
				ToolUseID: call.ToolUseID,
				ToolName:  call.Name,
				Data:      call.Input,
			})
		}
		session.append(assistantMsg)

		results := c.dispatchAll(ctx, res.ToolCalls)
		session.append(NewToolResultMessage(results))

		for i, result := range results {
			tlog := dietagent.ToolCallLog{Name: result.ToolName, Input: res.ToolCalls[i].Input, Output: result.Data}
			if result.Err != nil {
				tlog.Error = result.Err.Error()
			}
			roundLog.ToolCalls = append(roundLog.ToolCalls, tlog)
		}
		c.logRound(roundLog)
	}

	slog.Warn("COORDINATOR: Round limit reached", "session_id", session.ID, "max_rounds", c.maxRounds)
	if lastContent != "" {
		session.append(NewTextMessage(RoleAssistant, lastContent))
	}
	return lastContent, ErrRoundLimit
}

// dispatchAll runs sibling tool calls concurrently and returns results in
// request order regardless of completion order.
func (c *Coordinator) dispatchAll(ctx context.Context, calls []tools.Call) []tools.Result {
	results := make([]tools.Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call tools.Call) {
			defer wg.Done()
			results[i] = c.dispatcher.Dispatch(ctx, call, c.toolTimeout)
		}(i, call)
	}
	wg.Wait()

	for i := range results {
		if results[i].ToolName == "" {
			results[i].ToolName = calls[i].Name
		}
	}
	return results
}

func (c *Coordinator) logRound(round dietagent.RoundLog) {
	if c.logger == nil {
		return
	}
	if err := c.logger.LogRound(round); err != nil {
		slog.Error("Failed to log coordination round", "error", err, "round", round.Round)
	}
}
