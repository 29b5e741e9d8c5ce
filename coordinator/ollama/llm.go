package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"dietagent"
	"dietagent/coordinator"
	"dietagent/tools"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

// Client is the Ollama /api/chat gateway. It speaks Ollama's native tool
// calling format and mints tool-use IDs locally since the API has none.
type Client struct {
	endpoint   string
	model      string
	httpClient dietagent.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   dietagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("base endpoint is required")
	}
	if opts.ModelID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: httpClient,
		endpoint:   opts.BaseEndpoint + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384, // safe default; raise if your machine can handle it
		},
	}, nil
}

type wireToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Name      string         `json:"name,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	// other metadata omitted but available
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Invoke sends the prompt to the Ollama API. Embedded {"tool_calls":[...]}
// objects in the content are parsed out for models without native tool
// calling support.
func (c *Client) Invoke(ctx context.Context, prompt coordinator.Prompt) (coordinator.Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(prompt.Messages))

	msgs := buildMessages(prompt)

	wireTools, err := buildTools(prompt.Tools)
	if err != nil {
		return coordinator.Response{}, err
	}

	reqBody := wireRequest{
		Model:    c.model,
		Messages: msgs,
		Tools:    wireTools,
		Stream:   false,
		Options:  c.options,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return coordinator.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return coordinator.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return coordinator.Response{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return coordinator.Response{}, fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body", string(body))
		return coordinator.Response{Content: string(body)}, nil
	}

	if len(wr.Message.ToolCalls) > 0 {
		calls := make([]tools.Call, 0, len(wr.Message.ToolCalls))
		for _, call := range wr.Message.ToolCalls {
			input := call.Function.Arguments
			if input == nil {
				input = map[string]any{}
			}
			calls = append(calls, tools.Call{
				Name:      call.Function.Name,
				Input:     input,
				ToolUseID: uuid.NewString(),
			})
		}
		return coordinator.Response{Content: wr.Message.Content, ToolCalls: calls}, nil
	}

	// Some models embed tool calls in text instead of using the native field.
	res := coordinator.Response{Content: wr.Message.Content}
	if err := res.ParseModelOutput(); err != nil {
		return coordinator.Response{Content: wr.Message.Content}, nil
	}
	for i := range res.ToolCalls {
		if res.ToolCalls[i].ToolUseID == "" {
			res.ToolCalls[i].ToolUseID = uuid.NewString()
		}
	}
	return res, nil
}

// buildMessages flattens the neutral history into Ollama chat messages.
// Tool results become role=tool messages with the payload as a JSON string.
func buildMessages(prompt coordinator.Prompt) []wireMessage {
	messages := make([]wireMessage, 0, len(prompt.Messages))

	for _, m := range prompt.Messages {
		switch m.Role {
		case coordinator.RoleSystem:
			messages = append(messages, wireMessage{
				Role:    "system",
				Content: m.Content.Join(),
			})

		case coordinator.RoleAssistant:
			messages = append(messages, wireMessage{
				Role:    "assistant",
				Content: assistantContent(m),
			})

		case coordinator.RoleUser:
			// Tool results travel as user messages in the neutral model;
			// unpack them into native tool-role messages here.
			var pending []wireMessage
			var text string
			for _, part := range m.Content {
				switch part.Type {
				case "text":
					text += part.Text
				case "tool_result":
					payload, _ := json.Marshal(part.Data)
					pending = append(pending, wireMessage{
						Role:    "tool",
						Name:    part.ToolName,
						Content: string(payload),
					})
				}
			}
			if text != "" {
				messages = append(messages, wireMessage{Role: "user", Content: text})
			}
			messages = append(messages, pending...)

		default:
			slog.Warn("ollama: unknown role, coercing to user", "role", m.Role)
			messages = append(messages, wireMessage{
				Role:    "user",
				Content: m.Content.Join(),
			})
		}
	}

	return messages
}

// assistantContent renders an assistant message, echoing its tool_use parts
// as JSON so the history stays meaningful to models without native tool use.
func assistantContent(m coordinator.Message) string {
	var text string
	var calls []map[string]any
	for _, part := range m.Content {
		switch part.Type {
		case "text":
			text += part.Text
		case "tool_use":
			calls = append(calls, map[string]any{
				"name":  part.ToolName,
				"input": part.Data,
			})
		}
	}
	if len(calls) == 0 {
		return text
	}
	payload, _ := json.Marshal(map[string]any{"tool_calls": calls})
	if text == "" {
		return string(payload)
	}
	return text + "\n" + string(payload)
}

func buildTools(specs []coordinator.ToolSpec) ([]wireTool, error) {
	out := make([]wireTool, 0, len(specs))
	for _, spec := range specs {
		schemaJSON, err := json.Marshal(spec.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool schema for %s: %w", spec.Name, err)
		}
		var params map[string]any
		if err := json.Unmarshal(schemaJSON, &params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tool schema for %s: %w", spec.Name, err)
		}
		out = append(out, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		})
	}
	return out, nil
}
