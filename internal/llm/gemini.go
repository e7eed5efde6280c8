package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/csprime/csprime/internal/domain"
)

// Gemini talks to the Gemini API via the official genai SDK.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini adapter authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Provider implements Client.
func (g *Gemini) Provider() string { return "gemini" }

// Generate implements Client.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	history := Window(req.History, req.HistoryWindow)
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Text, geminiRole(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemContext, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   req.MaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", Classify(g.Provider(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &Error{Kind: KindUnknown, Provider: g.Provider(), Err: errors.New("response has no candidates")}
	}
	answer := extractText(resp.Candidates[0].Content)
	if answer == "" {
		return "", &Error{Kind: KindUnknown, Provider: g.Provider(), Err: errors.New("response has no text part")}
	}
	return answer, nil
}

// geminiRole maps a conversation role onto the genai role vocabulary.
func geminiRole(r domain.Role) genai.Role {
	if r == domain.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func extractText(c *genai.Content) string {
	for _, p := range c.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}
