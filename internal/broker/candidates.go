package broker

import (
	"context"
	"fmt"

	"github.com/csprime/csprime/internal/config"
	"github.com/csprime/csprime/internal/llm"
)

// Candidate is one invocable backend option: a provider client plus the
// model and generation parameters fixed for it at startup. List position
// is precedence.
type Candidate struct {
	Client          llm.Client
	Model           string
	Condensed       bool // use the size-capped context variant
	HistoryWindow   int
	MaxOutputTokens int32
	Temperature     float32
}

// BuildCandidates constructs the prioritized candidate list from the
// credentials present at startup.
//
// Policy: when the operator has configured a Gemini key, only Gemini
// candidates (one per configured model) enter the list — the OpenRouter
// key being present as well does not add silent fallback to a second
// quota-limited provider. OpenRouter candidates are built only when the
// Gemini key is absent. Model alternates within the selected provider are
// always permitted. An empty list means no credential was configured at
// all; the broker reports that as a configuration failure per request.
func BuildCandidates(ctx context.Context, cfg *config.Config) ([]Candidate, error) {
	if cfg.Gemini.APIKey != "" {
		client, err := llm.NewGemini(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("build gemini candidates: %w", err)
		}
		candidates := make([]Candidate, 0, len(cfg.Gemini.Models))
		for _, model := range cfg.Gemini.Models {
			candidates = append(candidates, Candidate{
				Client:          client,
				Model:           model,
				HistoryWindow:   20,
				MaxOutputTokens: 2048,
				Temperature:     0.7,
			})
		}
		return candidates, nil
	}

	if cfg.OpenRouter.APIKey != "" {
		client := llm.NewOpenRouter(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL)
		candidates := make([]Candidate, 0, len(cfg.OpenRouter.Models))
		for _, model := range cfg.OpenRouter.Models {
			candidates = append(candidates, Candidate{
				Client:          client,
				Model:           model,
				Condensed:       true,
				HistoryWindow:   8,
				MaxOutputTokens: 1024,
				Temperature:     0.7,
			})
		}
		return candidates, nil
	}

	return nil, nil
}
