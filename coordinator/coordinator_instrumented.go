package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dietagent"
	"dietagent/tools"
)

// InstrumentedCoordinator is an instrumented version of the Coordinator with
// full turn, round, and tool metrics.
type InstrumentedCoordinator struct {
	llm         LLMClient
	dispatcher  ToolDispatcher
	maxRounds   int
	toolTimeout time.Duration
	logger      dietagent.TurnLogger
	tracer      trace.Tracer
	meter       metric.Meter
}

// NewInstrumentedCoordinator initializes a new instrumented coordinator.
func NewInstrumentedCoordinator(llm LLMClient, dispatcher ToolDispatcher, maxRounds int, toolTimeout time.Duration, logger dietagent.TurnLogger, tracer trace.Tracer, meter metric.Meter) *InstrumentedCoordinator {
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &InstrumentedCoordinator{
		llm:         llm,
		dispatcher:  dispatcher,
		maxRounds:   maxRounds,
		toolTimeout: toolTimeout,
		logger:      logger,
		tracer:      tracer,
		meter:       meter,
	}
}

// ProcessTurn mirrors Coordinator.ProcessTurn with full instrumentation.
func (c *InstrumentedCoordinator) ProcessTurn(ctx context.Context, session *Session, input string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "InstrumentedCoordinator.ProcessTurn")
	defer span.End()

	turnsCounter, _ := c.meter.Int64Counter("coordinator_turns_total",
		metric.WithDescription("Total number of conversation turns started"))
	turnsCompletedCounter, _ := c.meter.Int64Counter("coordinator_turns_completed_total",
		metric.WithDescription("Total number of turns that ended with a final answer"))
	turnsFailedCounter, _ := c.meter.Int64Counter("coordinator_turns_failed_total",
		metric.WithDescription("Total number of turns that failed"))
	roundLimitCounter, _ := c.meter.Int64Counter("coordinator_round_limit_total",
		metric.WithDescription("Total number of turns cut off at the round limit"))
	roundsCounter, _ := c.meter.Int64Counter("coordinator_rounds_total",
		metric.WithDescription("Total number of model/tool rounds"))
	toolCallsCounter, _ := c.meter.Int64Counter("tool_calls_total",
		metric.WithDescription("Total number of tool calls executed"))
	toolCallsFailedCounter, _ := c.meter.Int64Counter("tool_calls_failed_total",
		metric.WithDescription("Total number of tool calls that failed"))

	promptSizeGauge, _ := c.meter.Int64Gauge("prompt_size_bytes",
		metric.WithDescription("Size of the prompt sent to the model in bytes"))
	messagesInConversationGauge, _ := c.meter.Int64Gauge("messages_in_conversation",
		metric.WithDescription("Number of messages in the current conversation"))

	turnDurationHist, _ := c.meter.Float64Histogram("turn_duration_seconds",
		metric.WithDescription("Total duration of a conversation turn in seconds"))
	roundDurationHist, _ := c.meter.Float64Histogram("round_duration_seconds",
		metric.WithDescription("Duration of individual model/tool rounds in seconds"))
	llmResponseTimeHist, _ := c.meter.Float64Histogram("llm_response_time_seconds",
		metric.WithDescription("Time taken to receive a model response in seconds"))
	toolExecutionTimeHist, _ := c.meter.Float64Histogram("tool_execution_time_seconds",
		metric.WithDescription("Time taken to execute a round's tool calls in seconds"))

	turnsCounter.Add(ctx, 1)

	session.mu.Lock()
	defer session.mu.Unlock()

	slog.Info("COORDINATOR: Starting instrumented turn", "session_id", session.ID, "input_len", len(input))

	session.append(NewTextMessage(RoleUser, input))

	turnStart := time.Now()
	var lastContent string

	for round := 1; round <= c.maxRounds; round++ {
		roundStart := time.Now()
		ctx, roundSpan := c.tracer.Start(ctx, fmt.Sprintf("InstrumentedCoordinator.ProcessTurn.Round.%d", round))

		roundsCounter.Add(ctx, 1)
		prompt := session.prompt()
		roundLog := dietagent.RoundLog{Round: round, Timestamp: time.Now()}

		if b, merr := json.Marshal(prompt); merr == nil {
			roundLog.LLMInput = string(b)
			promptSizeGauge.Record(ctx, int64(len(b)))
			messagesInConversationGauge.Record(ctx, int64(len(prompt.Messages)))
			roundSpan.AddEvent("Sending prompt to LLM", trace.WithAttributes(
				attribute.Int("round", round),
				attribute.Int("messages_count", len(prompt.Messages)),
				attribute.Int("tools_count", len(prompt.Tools)),
				attribute.Int("prompt_size_bytes", len(b)),
			))
		}

		llmStart := time.Now()
		res, err := c.llm.Invoke(ctx, prompt)
		llmResponseTimeHist.Record(ctx, time.Since(llmStart).Seconds())

		if err != nil {
			roundLog.Error = err.Error()
			c.logRound(roundLog)
			turnsFailedCounter.Add(ctx, 1)
			roundSpan.SetStatus(codes.Error, "LLM invoke failed")
			roundSpan.RecordError(err)
			roundSpan.End()
			return "", fmt.Errorf("invoke failed: %w", err)
		}
		roundLog.LLMOutput = res

		if res.Content != "" {
			lastContent = res.Content
		}

		if len(res.ToolCalls) == 0 {
			session.append(NewTextMessage(RoleAssistant, res.Content))
			c.logRound(roundLog)
			turnsCompletedCounter.Add(ctx, 1)
			roundDurationHist.Record(ctx, time.Since(roundStart).Seconds())
			turnDurationHist.Record(ctx, time.Since(turnStart).Seconds())
			roundSpan.End()
			return res.Content, nil
		}

		assistantMsg := Message{Role: RoleAssistant, Content: MessageParts{}}
		if res.Content != "" {
			assistantMsg.Content = append(assistantMsg.Content, MessagePart{Type: "text", Text: res.Content})
		}
		for _, call := range res.ToolCalls {
			assistantMsg.Content = append(assistantMsg.Content, MessagePart{
				Type:      "tool_use",
				ToolUseID: call.ToolUseID,
				ToolName:  call.Name,
				Data:      call.Input,
			})
		}
		session.append(assistantMsg)

		toolStart := time.Now()
		results := c.dispatchAll(ctx, res.ToolCalls)
		toolExecutionTimeHist.Record(ctx, time.Since(toolStart).Seconds())
		session.append(NewToolResultMessage(results))

		toolCallsCounter.Add(ctx, int64(len(results)))
		for i, result := range results {
			tlog := dietagent.ToolCallLog{Name: result.ToolName, Input: res.ToolCalls[i].Input, Output: result.Data}
			if result.Err != nil {
				tlog.Error = result.Err.Error()
				toolCallsFailedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", result.ToolName)))
			}
			roundLog.ToolCalls = append(roundLog.ToolCalls, tlog)
		}
		c.logRound(roundLog)
		roundDurationHist.Record(ctx, time.Since(roundStart).Seconds())
		roundSpan.End()
	}

	roundLimitCounter.Add(ctx, 1)
	turnDurationHist.Record(ctx, time.Since(turnStart).Seconds())
	span.SetStatus(codes.Error, "round limit reached")

	slog.Warn("COORDINATOR: Round limit reached", "session_id", session.ID, "max_rounds", c.maxRounds)
	if lastContent != "" {
		session.append(NewTextMessage(RoleAssistant, lastContent))
	}
	return lastContent, ErrRoundLimit
}

func (c *InstrumentedCoordinator) dispatchAll(ctx context.Context, calls []tools.Call) []tools.Result {
	inner := Coordinator{dispatcher: c.dispatcher, toolTimeout: c.toolTimeout}
	return inner.dispatchAll(ctx, calls)
}

func (c *InstrumentedCoordinator) logRound(round dietagent.RoundLog) {
	if c.logger == nil {
		return
	}
	if err := c.logger.LogRound(round); err != nil {
		slog.Error("Failed to log coordination round", "error", err, "round", round.Round)
	}
}
