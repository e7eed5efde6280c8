// Package catalog loads the static curriculum datasets and answers queries
// over them. The datasets are embedded at build time and validated once at
// startup; after Load succeeds the catalog is immutable and safe for
// concurrent use without synchronisation.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/csprime/csprime/internal/domain"
)

//go:embed data/module_info.json data/module_topic_relations.json
var dataFS embed.FS

// Catalog holds the loaded module and topic-relation datasets.
type Catalog struct {
	modules   map[string]domain.Module
	codes     []string // module codes in sorted order, for deterministic iteration
	relations domain.TopicRelations
}

// Load parses and validates the embedded datasets. Malformed entries are a
// build/configuration error, so Load fails hard rather than skipping them.
func Load() (*Catalog, error) {
	rawModules, err := dataFS.ReadFile("data/module_info.json")
	if err != nil {
		return nil, fmt.Errorf("read module dataset: %w", err)
	}
	modules := make(map[string]domain.Module)
	if err := json.Unmarshal(rawModules, &modules); err != nil {
		return nil, fmt.Errorf("parse module dataset: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("module dataset is empty")
	}

	codes := make([]string, 0, len(modules))
	for code, m := range modules {
		if err := validateModule(code, m); err != nil {
			return nil, err
		}
		m.Code = code
		modules[code] = m
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rawRelations, err := dataFS.ReadFile("data/module_topic_relations.json")
	if err != nil {
		return nil, fmt.Errorf("read topic relation dataset: %w", err)
	}
	relations := make(domain.TopicRelations)
	if err := json.Unmarshal(rawRelations, &relations); err != nil {
		return nil, fmt.Errorf("parse topic relation dataset: %w", err)
	}
	for code, topics := range relations {
		if _, ok := modules[code]; !ok {
			return nil, fmt.Errorf("topic relations reference unknown module %q", code)
		}
		for topic, related := range topics {
			for _, rel := range related {
				if _, ok := modules[rel]; !ok {
					return nil, fmt.Errorf("topic %q of %s references unknown module %q", topic, code, rel)
				}
			}
		}
	}

	return &Catalog{modules: modules, codes: codes, relations: relations}, nil
}

func validateModule(code string, m domain.Module) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("module dataset contains an empty code")
	}
	if m.Title == "" {
		return fmt.Errorf("module %s has no title", code)
	}
	if m.Year < 1 || m.Year > 4 {
		return fmt.Errorf("module %s has invalid year %d", code, m.Year)
	}
	if _, err := strconv.ParseFloat(m.Credits, 64); err != nil {
		return fmt.Errorf("module %s has non-numeric credits %q", code, m.Credits)
	}
	return nil
}

// Modules returns all modules ordered by code.
func (c *Catalog) Modules() []domain.Module {
	out := make([]domain.Module, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.modules[code])
	}
	return out
}

// Get looks up a module by code. Lookup is case-insensitive so URL slugs
// like "cs210" resolve.
func (c *Catalog) Get(code string) (domain.Module, bool) {
	m, ok := c.modules[strings.ToUpper(code)]
	return m, ok
}

// Relations returns the topic relations taught by the given module, or nil
// if the module has none recorded.
func (c *Catalog) Relations(code string) map[string][]string {
	return c.relations[strings.ToUpper(code)]
}

// TopicRelations returns the full topic-relation dataset.
func (c *Catalog) TopicRelations() domain.TopicRelations {
	return c.relations
}

// Filter selects modules matching the given criteria. Zero values mean
// "any". Keyword matches the module code or overview case-insensitively,
// or any learning outcome verbatim.
type Filter struct {
	Keyword  string
	Year     int
	Semester string
}

// FilterModules returns the modules matching f, ordered by code.
func (c *Catalog) FilterModules(f Filter) []domain.Module {
	var out []domain.Module
	for _, code := range c.codes {
		m := c.modules[code]
		if f.Year != 0 && m.Year != f.Year {
			continue
		}
		if f.Semester != "" && f.Semester != "0" && m.Semester != f.Semester {
			continue
		}
		if f.Keyword != "" && !matchesKeyword(m, f.Keyword) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesKeyword(m domain.Module, keyword string) bool {
	lower := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(m.Code), lower) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Overview), lower) {
		return true
	}
	for _, outcome := range m.LearningOutcomes {
		if strings.Contains(outcome, keyword) {
			return true
		}
	}
	return false
}

// Topics returns the distinct topic names across all modules, ordered by
// first appearance when walking modules in code order.
func (c *Catalog) Topics() []string {
	var topics []string
	seen := make(map[string]bool)
	for _, code := range c.codes {
		topicNames := make([]string, 0, len(c.relations[code]))
		for topic := range c.relations[code] {
			topicNames = append(topicNames, topic)
		}
		sort.Strings(topicNames)
		for _, topic := range topicNames {
			if !seen[topic] {
				seen[topic] = true
				topics = append(topics, topic)
			}
		}
	}
	return topics
}

// TopicGroup lists the modules connected through one topic: the modules
// that teach it followed by the modules that build on it.
type TopicGroup struct {
	Topic   string   `json:"topic"`
	Modules []string `json:"modules"`
}

// TopicModules expands every topic into its group of connected modules,
// in the same order as Topics.
func (c *Catalog) TopicModules() []TopicGroup {
	groups := make([]TopicGroup, 0)
	for _, topic := range c.Topics() {
		var mods []string
		seen := make(map[string]bool)
		add := func(code string) {
			if !seen[code] {
				seen[code] = true
				mods = append(mods, code)
			}
		}
		for _, code := range c.codes {
			related, ok := c.relations[code][topic]
			if !ok {
				continue
			}
			add(code)
			for _, rel := range related {
				add(rel)
			}
		}
		groups = append(groups, TopicGroup{Topic: topic, Modules: mods})
	}
	return groups
}

// Analytics summarises the catalog for the analytics dashboard.
type Analytics struct {
	TotalModules  int             `json:"total_modules"`
	TotalTopics   int             `json:"total_topics"`
	ByYear        map[int]int     `json:"modules_by_year"`
	BySemester    map[string]int  `json:"modules_by_semester"`
	ByDepartment  map[string]int  `json:"modules_by_department"`
	CreditsByYear map[int]float64 `json:"credits_by_year"`
}

// Summarise computes aggregate statistics over the module dataset.
func (c *Catalog) Summarise() Analytics {
	a := Analytics{
		TotalModules:  len(c.modules),
		TotalTopics:   len(c.Topics()),
		ByYear:        make(map[int]int),
		BySemester:    make(map[string]int),
		ByDepartment:  make(map[string]int),
		CreditsByYear: make(map[int]float64),
	}
	for _, code := range c.codes {
		m := c.modules[code]
		a.ByYear[m.Year]++
		a.BySemester[m.Semester]++
		a.ByDepartment[m.Department]++
		credits, _ := strconv.ParseFloat(m.Credits, 64)
		a.CreditsByYear[m.Year] += credits
	}
	return a
}
