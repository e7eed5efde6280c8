package llm

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Kind categorises a provider failure for the broker's policy decisions.
type Kind int

const (
	// KindUnknown covers provider failures with no better category. The
	// candidate is abandoned without retry but the next one may be tried.
	KindUnknown Kind = iota
	// KindTransient marks failures expected to be retry-recoverable:
	// timeouts, rate limits, quota signals, 5xx responses.
	KindTransient
	// KindAuth marks a credential rejected by the provider. Never retried.
	KindAuth
	// KindTrust marks a secure-channel verification failure. Never retried,
	// and reported distinctly so a local trust misconfiguration is not
	// mistaken for provider rate limiting.
	KindTrust
)

// Error wraps a provider failure with its classification.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind extracts the classification from err, defaulting to KindUnknown.
func ErrKind(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err should trigger the retry policy.
func IsTransient(err error) bool { return ErrKind(err) == KindTransient }

// Classify wraps a raw provider error with its category. Typed errors from
// the provider SDKs and the TLS stack are preferred; substring matching is
// the fallback because neither SDK exposes sentinel errors for every
// failure mode.
func Classify(provider string, err error) error {
	return &Error{Kind: classify(err), Provider: provider, Err: err}
}

func classify(err error) Kind {
	if isTrustError(err) {
		return KindTrust
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindFromStatus(apiErr.HTTPStatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return kindFromStatus(genaiErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key", "unauthorized", "unauthenticated", "permission denied", "invalid credential"):
		return KindAuth
	case containsAny(msg, "rate limit", "quota", "429"),
		containsAny(msg, "500", "502", "503", "504", "unavailable", "overloaded"),
		containsAny(msg, "connection reset", "timeout", "temporary"):
		return KindTransient
	}
	return KindUnknown
}

func kindFromStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429 || status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

func isTrustError(err error) bool {
	var (
		certVerify *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		invalid    x509.CertificateInvalidError
		hostname   x509.HostnameError
		noRoots    x509.SystemRootsError
	)
	return errors.As(err, &certVerify) ||
		errors.As(err, &unknownCA) ||
		errors.As(err, &invalid) ||
		errors.As(err, &hostname) ||
		errors.As(err, &noRoots)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
