package broker

import (
	"context"
	"testing"

	"github.com/csprime/csprime/internal/config"
)

func TestBuildCandidatesPrefersGemini(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKey: "gem-key",
			Models: []string{"gemini-2.5-flash", "gemini-2.0-flash"},
		},
		OpenRouter: config.OpenRouterConfig{
			APIKey: "or-key",
			Models: []string{"some/model"},
		},
	}
	candidates, err := BuildCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildCandidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected one candidate per gemini model, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Client.Provider() != "gemini" {
			t.Errorf("provider = %q, want gemini; openrouter must be suppressed", c.Client.Provider())
		}
		if c.Condensed {
			t.Error("gemini candidates use the full context variant")
		}
	}
	if candidates[0].Model != "gemini-2.5-flash" {
		t.Errorf("configuration order defines precedence, first model = %q", candidates[0].Model)
	}
}

func TestBuildCandidatesFallsBackToOpenRouter(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Gemini: config.GeminiConfig{Models: []string{"gemini-2.5-flash"}},
		OpenRouter: config.OpenRouterConfig{
			APIKey: "or-key",
			Models: []string{"some/model"},
		},
	}
	candidates, err := BuildCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildCandidates failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Client.Provider() != "openrouter" {
		t.Errorf("provider = %q, want openrouter", c.Client.Provider())
	}
	if !c.Condensed {
		t.Error("openrouter candidates use the condensed context variant")
	}
	if c.HistoryWindow >= 20 {
		t.Errorf("openrouter history window = %d, want smaller than the session cap", c.HistoryWindow)
	}
}

func TestBuildCandidatesWithoutCredentials(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Gemini:     config.GeminiConfig{Models: []string{"gemini-2.5-flash"}},
		OpenRouter: config.OpenRouterConfig{Models: []string{"some/model"}},
	}
	candidates, err := BuildCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildCandidates failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates without credentials, got %d", len(candidates))
	}
}
