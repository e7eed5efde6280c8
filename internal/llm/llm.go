// Package llm adapts heterogeneous inference providers to a single
// request/response contract and classifies their failures into the
// categories the broker acts on.
package llm

import (
	"context"

	"github.com/csprime/csprime/internal/domain"
)

// Request carries one generation call. The broker fills the generation
// parameters from the selected candidate's configuration; they are not
// caller-adjustable.
type Request struct {
	Model           string
	SystemContext   string
	History         []domain.Turn
	Message         string
	HistoryWindow   int
	MaxOutputTokens int32
	Temperature     float32
}

// Client is implemented once per provider. Generate returns the answer
// text, or an error classified via this package's taxonomy. Implementations
// are read-only with respect to session state.
type Client interface {
	// Provider names the backend for logging and error reporting.
	Provider() string

	// Generate submits the prompt and returns the model's answer.
	Generate(ctx context.Context, req Request) (string, error)
}

// Window truncates history to its most recent n turns. Each provider has
// its own input budget, so the window is enforced here rather than at the
// session store's cap.
func Window(history []domain.Turn, n int) []domain.Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
