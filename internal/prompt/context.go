// Package prompt builds the knowledge context injected ahead of user
// messages so model answers stay grounded in the published curriculum.
// Both builders are pure functions of the catalog: identical input yields
// byte-identical output.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/csprime/csprime/internal/catalog"
)

// CondensedOverviewLimit caps the overview field in the condensed context,
// in runes. Backends with small input budgets get this variant.
const CondensedOverviewLimit = 160

const preamble = `You are a helpful AI assistant for the CSPrime website, a platform for Computer Science students at Maynooth University, Ireland.

CSPrime helps students explore Computer Science modules, see how topics in one module connect to other modules, and plan their degree pathway.

Answer questions about the modules listed below, explain how topics connect across modules, help with programming concepts, and give study guidance. Reference modules by their codes (e.g. CS210). Be friendly and encouraging, be honest about the limits of your knowledge, and point students to official university resources for anything not covered here.`

// SystemContext renders the full knowledge context: one block per module
// plus the topic connection listing.
func SystemContext(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n## Module Information\n")
	for _, m := range c.Modules() {
		fmt.Fprintf(&b, "\n**%s: %s**\n", m.Code, m.Title)
		fmt.Fprintf(&b, "- Year: %d\n", m.Year)
		fmt.Fprintf(&b, "- Credits: %s\n", m.Credits)
		fmt.Fprintf(&b, "- Semester: %s\n", m.Semester)
		fmt.Fprintf(&b, "- Department: %s\n", m.Department)
		fmt.Fprintf(&b, "- Overview: %s\n", m.Overview)
		fmt.Fprintf(&b, "- Learning Outcomes: %s\n", strings.Join(m.LearningOutcomes, "; "))
	}
	b.WriteString("\n## Topic Connections\n")
	writeTopicLines(&b, c, "  - %s → %s\n", ", ")
	return b.String()
}

// CondensedContext renders a size-capped variant: one line per module with
// the overview truncated to CondensedOverviewLimit runes, and compact topic
// edges. Used for backends with small input-size budgets.
func CondensedContext(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n## Modules\n")
	for _, m := range c.Modules() {
		fmt.Fprintf(&b, "%s %s (Y%d, %s credits, S%s): %s\n",
			m.Code, m.Title, m.Year, m.Credits, m.Semester,
			Truncate(m.Overview, CondensedOverviewLimit))
	}
	b.WriteString("\n## Topic Connections\n")
	writeTopicLines(&b, c, "%s→%s\n", ",")
	return b.String()
}

func writeTopicLines(b *strings.Builder, c *catalog.Catalog, format, sep string) {
	for _, m := range c.Modules() {
		topics := c.Relations(m.Code)
		if len(topics) == 0 {
			continue
		}
		names := make([]string, 0, len(topics))
		for topic := range topics {
			names = append(names, topic)
		}
		sort.Strings(names)
		fmt.Fprintf(b, "%s:\n", m.Code)
		for _, topic := range names {
			fmt.Fprintf(b, format, topic, strings.Join(topics[topic], sep))
		}
	}
}

// Truncate shortens s to at most limit runes, appending an ellipsis when
// content was cut. The cut never splits a multibyte character.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
