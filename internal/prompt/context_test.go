package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/csprime/csprime/internal/catalog"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}
	return c
}

func TestSystemContextIsDeterministic(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	first := SystemContext(c)
	for i := 0; i < 5; i++ {
		if got := SystemContext(c); got != first {
			t.Fatalf("SystemContext output differs between calls")
		}
	}
}

func TestCondensedContextIsDeterministic(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	first := CondensedContext(c)
	for i := 0; i < 5; i++ {
		if got := CondensedContext(c); got != first {
			t.Fatalf("CondensedContext output differs between calls")
		}
	}
}

func TestSystemContextContainsAllModules(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	full := SystemContext(c)
	for _, m := range c.Modules() {
		if !strings.Contains(full, m.Code) {
			t.Errorf("full context missing module %s", m.Code)
		}
		if !strings.Contains(full, m.Overview) {
			t.Errorf("full context truncated overview of %s", m.Code)
		}
	}
}

func TestCondensedContextIsSmaller(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	full := SystemContext(c)
	condensed := CondensedContext(c)
	if len(condensed) >= len(full) {
		t.Errorf("condensed context (%d bytes) not smaller than full (%d bytes)",
			len(condensed), len(full))
	}
	for _, m := range c.Modules() {
		if !strings.Contains(condensed, m.Code) {
			t.Errorf("condensed context missing module %s", m.Code)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"at limit", "exact", 5, "exact"},
		{"over limit", "truncate me", 8, "truncate…"},
		{"zero limit", "anything", 0, ""},
		{"multibyte", "Ollscoil Mhá Nuad", 12, "Ollscoil Mhá…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.limit)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestCondensedOverviewRespectsLimit(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	for _, m := range c.Modules() {
		got := Truncate(m.Overview, CondensedOverviewLimit)
		runes := []rune(got)
		if strings.HasSuffix(got, "…") {
			runes = runes[:len(runes)-1]
		}
		if len(runes) > CondensedOverviewLimit {
			t.Errorf("%s condensed overview exceeds the %d-rune limit: %d runes",
				m.Code, CondensedOverviewLimit, len(runes))
		}
		if len([]rune(m.Overview)) > CondensedOverviewLimit && !strings.HasSuffix(got, "…") {
			t.Errorf("%s truncated overview does not end with ellipsis", m.Code)
		}
	}
}
