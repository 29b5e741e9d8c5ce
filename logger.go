package dietagent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TurnLogger is the interface for recording orchestration rounds.
type TurnLogger interface {
	LogRound(round RoundLog) error
}

// NewTurnLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify specific logs produced with various models.
func NewTurnLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// RoundLog represents a single model/tool round within a turn.
type RoundLog struct {
	Round     int           `json:"round"`
	Timestamp time.Time     `json:"timestamp"`
	LLMInput  string        `json:"llm_input,omitempty"`
	LLMOutput any           `json:"llm_output"`
	ToolCalls []ToolCallLog `json:"tool_calls,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ToolCallLog represents a tool execution within a round
type ToolCallLog struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
	Error  string         `json:"error,omitempty"`
}

// FileTurnLogger logs to a file, accumulating rounds and flushing at the end
type FileTurnLogger struct {
	rounds []RoundLog
	writer io.Writer
}

// NewFileTurnLogger creates a new file-based turn logger
func NewFileTurnLogger(writer io.Writer) *FileTurnLogger {
	return &FileTurnLogger{
		rounds: make([]RoundLog, 0),
		writer: writer,
	}
}

// LogRound logs a round to the buffer (does not flush immediately)
func (ftl *FileTurnLogger) LogRound(round RoundLog) error {
	ftl.rounds = append(ftl.rounds, round)
	return nil
}

// Flush flushes all accumulated rounds to the writer
func (ftl *FileTurnLogger) Flush() error {
	if ftl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"turn_session": map[string]any{
			"timestamp": time.Now(),
			"rounds":    ftl.rounds,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal turn log: %w", err)
	}

	if _, err := ftl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write turn log: %w", err)
	}

	// Clear the buffer after successful write
	ftl.rounds = ftl.rounds[:0]
	return nil
}

// NoOpTurnLogger is a logger that discards all log entries
type NoOpTurnLogger struct{}

// NewNoOpTurnLogger creates a new no-op turn logger
func NewNoOpTurnLogger() *NoOpTurnLogger {
	return &NoOpTurnLogger{}
}

// LogRound discards the round log (no-op)
func (nop *NoOpTurnLogger) LogRound(round RoundLog) error {
	return nil
}

// StdoutTurnLogger logs each round as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutTurnLogger struct{}

// NewStdoutTurnLogger creates a new stdout-based turn logger
func NewStdoutTurnLogger() *StdoutTurnLogger {
	return &StdoutTurnLogger{}
}

// LogRound writes the round as a JSON line to os.Stdout
func (l *StdoutTurnLogger) LogRound(round RoundLog) error {
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
