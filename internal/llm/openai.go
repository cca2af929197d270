package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model request to invoke one tool.  Arguments is the raw
// JSON argument object produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is a chat message exchanged with the model.  Assistant messages
// may carry tool calls; tool messages carry the result of one call and must
// reference it via ToolCallID.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Tool describes one callable function exposed to the model.  Parameters is
// a JSON-schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Client is the conversational model boundary.  The agent treats language
// understanding as a black box behind this interface; tests substitute a
// scripted implementation.
type Client interface {
	Chat(ctx context.Context, messages []Message, tools []Tool) (Message, error)
}

// OpenAIClient calls the OpenAI chat completion API with function calling
// enabled.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient constructs an OpenAI-backed client.  An empty model falls
// back to a modern small default.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

// Chat sends the message history and tool definitions to the model and
// returns the assistant's next message, which either answers in text or
// requests tool calls.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	if c.client == nil {
		return Message{}, errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, toOpenAIMessage(m))
	}
	oaTools := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		oaTools = append(oaTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Tools:       oaTools,
		Temperature: 0.2,
	})
	if err != nil {
		return Message{}, err
	}
	if len(resp.Choices) == 0 {
		return Message{Role: RoleAssistant}, nil
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	role := m.Role
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
	default:
		// coerce anything unknown to user
		role = RoleUser
	}
	out := openai.ChatCompletionMessage{
		Role:       role,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) Message {
	out := Message{
		Role:       m.Role,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}
