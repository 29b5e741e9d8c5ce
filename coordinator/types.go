package coordinator

import (
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"dietagent/tools"
)

// Message roles used in the conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type MessagePart struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type MessageParts []MessagePart

func (mp MessageParts) Join() string {
	var result string
	for _, part := range mp {
		if part.Type == "text" {
			result += part.Text
		}
	}
	return result
}

type Message struct {
	Role    string       `json:"role"`
	Content MessageParts `json:"content"`
}

// NewTextMessage builds a plain text message for the given role.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: MessageParts{{Type: "text", Text: text}},
	}
}

// NewToolResultMessage packs dispatched tool results into the user-role
// message the model expects them in, preserving request order.
func NewToolResultMessage(results []tools.Result) Message {
	var parts MessageParts
	for _, result := range results {
		parts = append(parts, MessagePart{
			Type:      "tool_result",
			ToolUseID: result.ToolUseID,
			ToolName:  result.ToolName,
			Data:      result.Data,
		})
	}
	return Message{
		Role:    RoleUser,
		Content: parts,
	}
}

// ToolSpec is the backend-neutral description of a callable tool.
type ToolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// Prompt is the full model input for one round: conversation so far plus the
// available tools.
type Prompt struct {
	Messages []Message  `json:"messages"`
	Tools    []ToolSpec `json:"tools,omitempty"`
}

// Response represents the model's response structure.
type Response struct {
	Content   string       `json:"content,omitempty"`
	ToolCalls []tools.Call `json:"tool_calls,omitempty"`
}

// ParseModelOutput extracts embedded tool calls from free-form model text.
// Models without formal tool calling emit {"tool_calls":[...]} objects inside
// their text response; this splits those out from the remaining content.
func (r *Response) ParseModelOutput() error {
	if r.Content == "" {
		return nil
	}

	s := strings.TrimSpace(r.Content)
	if s == "" {
		r.Content = ""
		r.ToolCalls = nil
		return nil
	}

	var content strings.Builder
	var calls []tools.Call

	i := 0
	for i < len(s) {
		start := strings.IndexByte(s[i:], '{')
		if start == -1 {
			content.WriteString(s[i:])
			break
		}
		start += i

		if start > i {
			content.WriteString(s[i:start])
		}

		// Walk to the matching closing brace, string-aware.
		braceCount := 0
		end := start
		inString := false
		escaped := false

		for end < len(s) {
			char := s[end]

			if escaped {
				escaped = false
				end++
				continue
			}

			if char == '\\' && inString {
				escaped = true
				end++
				continue
			}

			if char == '"' {
				inString = !inString
			} else if !inString {
				if char == '{' {
					braceCount++
				} else if char == '}' {
					braceCount--
					if braceCount == 0 {
						break
					}
				}
			}
			end++
		}

		if braceCount != 0 || end >= len(s) {
			content.WriteString(s[start:])
			break
		}

		jsonObj := s[start : end+1]

		var probe struct {
			ToolCalls []tools.Call `json:"tool_calls"`
		}
		if err := json.Unmarshal([]byte(jsonObj), &probe); err == nil && len(probe.ToolCalls) > 0 {
			calls = append(calls, probe.ToolCalls...)
		} else {
			content.WriteString(jsonObj)
		}

		i = end + 1
	}

	r.Content = strings.TrimSpace(content.String())
	r.ToolCalls = calls

	return nil
}
