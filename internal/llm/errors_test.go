package llm

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/csprime/csprime/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, KindTransient},
		{"openai 503", &openai.APIError{HTTPStatusCode: 503}, KindTransient},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401}, KindAuth},
		{"openai 403", &openai.APIError{HTTPStatusCode: 403}, KindAuth},
		{"openai 400", &openai.APIError{HTTPStatusCode: 400}, KindUnknown},
		{"genai 429", genai.APIError{Code: 429}, KindTransient},
		{"genai 500", genai.APIError{Code: 500}, KindTransient},
		{"genai 401", genai.APIError{Code: 401}, KindAuth},
		{"unknown CA", x509.UnknownAuthorityError{}, KindTrust},
		{"wrapped unknown CA", fmt.Errorf("do request: %w", x509.UnknownAuthorityError{}), KindTrust},
		{"rate limit text", errors.New("provider said: rate limit exceeded"), KindTransient},
		{"quota text", errors.New("quota exhausted for project"), KindTransient},
		{"api key text", errors.New("the API key is invalid"), KindAuth},
		{"connection reset", errors.New("read tcp: connection reset by peer"), KindTransient},
		{"opaque", errors.New("something odd happened"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify("test", tt.err)
			if got := ErrKind(classified); got != tt.want {
				t.Errorf("Classify(%v) kind = %v, want %v", tt.err, got, tt.want)
			}
			// genai.APIError carries non-comparable fields, so errors.Is
			// cannot match it by equality; check those via errors.As.
			var want genai.APIError
			if errors.As(tt.err, &want) {
				var got genai.APIError
				if !errors.As(classified, &got) || got.Code != want.Code {
					t.Errorf("classified error does not carry the original genai failure")
				}
			} else if !errors.Is(classified, tt.err) {
				t.Errorf("classified error does not wrap the original")
			}
		})
	}
}

func TestErrKindDefaultsToUnknown(t *testing.T) {
	t.Parallel()

	if got := ErrKind(errors.New("bare")); got != KindUnknown {
		t.Errorf("ErrKind(bare error) = %v, want KindUnknown", got)
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	if !IsTransient(Classify("p", errors.New("429 too many requests"))) {
		t.Error("429 should be transient")
	}
	if IsTransient(Classify("p", errors.New("the API key is invalid"))) {
		t.Error("auth failure must not be transient")
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "a"},
		{Role: domain.RoleAssistant, Text: "b"},
		{Role: domain.RoleUser, Text: "c"},
		{Role: domain.RoleAssistant, Text: "d"},
	}

	if got := Window(history, 2); len(got) != 2 || got[0].Text != "c" {
		t.Errorf("Window(4, 2) = %v, want most recent two turns", got)
	}
	if got := Window(history, 10); len(got) != 4 {
		t.Errorf("Window(4, 10) should keep everything, got %d", len(got))
	}
	if got := Window(history, 0); len(got) != 4 {
		t.Errorf("Window with no limit should keep everything, got %d", len(got))
	}
}
