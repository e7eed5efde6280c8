// Package broker orchestrates chat exchanges: it resolves the session,
// builds the knowledge context, walks the candidate list with retries, and
// records completed exchanges. It is the only component that mutates the
// session store.
package broker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/csprime/csprime/internal/catalog"
	"github.com/csprime/csprime/internal/domain"
	"github.com/csprime/csprime/internal/llm"
	"github.com/csprime/csprime/internal/prompt"
	"github.com/csprime/csprime/internal/session"
)

var (
	// ErrEmptyQuery rejects blank or missing messages before any backend work.
	ErrEmptyQuery = errors.New("query is required")
	// ErrNoBackend means no provider credential was configured at startup.
	ErrNoBackend = errors.New("no inference backend configured")
)

// Answer is the single outcome of a successful exchange.
type Answer struct {
	Text      string
	SessionID string
}

// Broker coordinates one chat exchange per call. Safe for concurrent use.
type Broker struct {
	candidates   []Candidate
	store        *session.Store
	catalog      *catalog.Catalog
	policy       RetryPolicy
	newSessionID func() string
}

// New creates a broker over the given prioritized candidates.
func New(candidates []Candidate, store *session.Store, cat *catalog.Catalog, policy RetryPolicy) *Broker {
	return &Broker{
		candidates:   candidates,
		store:        store,
		catalog:      cat,
		policy:       policy,
		newSessionID: uuid.NewString,
	}
}

// VerboseErrors reports whether surfaced failures may carry provider
// detail. That is the case only when the operator explicitly selected the
// alternate provider, where the extra diagnostics aid debugging without
// leaking detail in default deployments.
func (b *Broker) VerboseErrors() bool {
	return len(b.candidates) > 0 && b.candidates[0].Client.Provider() == "openrouter"
}

// Ask runs one exchange. On success the (user, assistant) pair is appended
// to the session; on any failure the session is left untouched and exactly
// one classified error is returned.
func (b *Broker) Ask(ctx context.Context, query, sessionID string) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, ErrEmptyQuery
	}
	if len(b.candidates) == 0 {
		return Answer{}, ErrNoBackend
	}

	if sessionID == "" {
		sessionID = b.newSessionID()
	}
	history := b.store.Get(sessionID)

	// Both context variants are pure functions of the immutable catalog;
	// build each at most once per request.
	var full, condensed string
	contextFor := func(c Candidate) string {
		if c.Condensed {
			if condensed == "" {
				condensed = prompt.CondensedContext(b.catalog)
			}
			return condensed
		}
		if full == "" {
			full = prompt.SystemContext(b.catalog)
		}
		return full
	}

	var lastErr error
	for _, cand := range b.candidates {
		req := llm.Request{
			Model:           cand.Model,
			SystemContext:   contextFor(cand),
			History:         history,
			Message:         query,
			HistoryWindow:   cand.HistoryWindow,
			MaxOutputTokens: cand.MaxOutputTokens,
			Temperature:     cand.Temperature,
		}

		var answer string
		err := b.policy.Do(ctx, func(ctx context.Context) error {
			text, genErr := cand.Client.Generate(ctx, req)
			if genErr == nil {
				answer = text
			}
			return genErr
		})
		if err == nil {
			b.store.Append(sessionID,
				domain.Turn{Role: domain.RoleUser, Text: query},
				domain.Turn{Role: domain.RoleAssistant, Text: answer},
			)
			slog.Info("chat exchange completed",
				"provider", cand.Client.Provider(),
				"model", cand.Model,
				"session_id", sessionID,
			)
			return Answer{Text: answer, SessionID: sessionID}, nil
		}

		lastErr = err
		slog.Warn("candidate failed",
			"provider", cand.Client.Provider(),
			"model", cand.Model,
			"kind", llm.ErrKind(err),
			"error", err,
		)
		// A trust failure is a local misconfiguration; trying further
		// candidates over the same transport would only mask it.
		if llm.ErrKind(err) == llm.KindTrust {
			break
		}
	}
	return Answer{}, lastErr
}
