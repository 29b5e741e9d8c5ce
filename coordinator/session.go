package coordinator

import (
	"sync"

	"github.com/google/uuid"

	"dietagent"
)

// Session holds one conversation's append-only history and its tool specs.
// A mutex serializes turns so concurrent callers cannot interleave one
// conversation's history; separate sessions proceed independently.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []Message
	tools    []ToolSpec
}

// NewSession seeds a conversation with the system prompt and the registry's
// tool specs.
func NewSession(tp dietagent.ToolProvider) *Session {
	registered := tp.GetTools()

	specs := make([]ToolSpec, 0, len(registered))
	for _, tool := range registered {
		specs = append(specs, ToolSpec{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}

	return &Session{
		ID:       uuid.NewString(),
		messages: []Message{NewTextMessage(RoleSystem, systemPrompt)},
		tools:    specs,
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(msgs ...Message) {
	s.messages = append(s.messages, msgs...)
}

func (s *Session) prompt() Prompt {
	return Prompt{Messages: s.messages, Tools: s.tools}
}
