package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/csprime/csprime/internal/domain"
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter talks to OpenRouter's OpenAI-compatible chat completions API.
type OpenRouter struct {
	client *openai.Client
}

// NewOpenRouter creates an OpenRouter adapter. An empty baseURL selects the
// public endpoint.
func NewOpenRouter(apiKey, baseURL string) *OpenRouter {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	return &OpenRouter{client: openai.NewClientWithConfig(config)}
}

// Provider implements Client.
func (o *OpenRouter) Provider() string { return "openrouter" }

// Generate implements Client.
func (o *OpenRouter) Generate(ctx context.Context, req Request) (string, error) {
	history := Window(req.History, req.HistoryWindow)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemContext,
	})
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   int(req.MaxOutputTokens),
	})
	if err != nil {
		return "", Classify(o.Provider(), err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindUnknown, Provider: o.Provider(), Err: errors.New("response has no choices")}
	}
	answer := resp.Choices[0].Message.Content
	if answer == "" {
		return "", &Error{Kind: KindUnknown, Provider: o.Provider(), Err: errors.New("response has empty content")}
	}
	return answer, nil
}
