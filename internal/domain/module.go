// Package domain holds the core types shared across the CSPrime service.
package domain

// Module describes a single curriculum module as published in the static
// module dataset.
type Module struct {
	Code             string   `json:"code"`
	Title            string   `json:"title"`
	Credits          string   `json:"credits"`
	Semester         string   `json:"semester"`
	Department       string   `json:"department"`
	Overview         string   `json:"overview"`
	LearningOutcomes []string `json:"learningOutcomes"`
	Year             int      `json:"year"`
}

// TopicRelations maps a topic name taught in one module to the module codes
// that build on it. Keyed per module in the dataset: module code -> topic ->
// related module codes.
type TopicRelations map[string]map[string][]string
