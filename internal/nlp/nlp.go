// Package nlp provides named-entity recognition backends used to enrich
// parsed résumés.
package nlp

import (
	"context"
	"strings"
)

const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
)

// Entity is a labelled span of text. Start and End are character offsets.
type Entity struct {
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Recognizer finds people and organizations in a text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Classifier runs token classification over a text and returns grouped entities.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Entity, error)
}

// Filter returns the texts of entities with the given label, de-duplicated
// and in first-seen order.
func Filter(entities []Entity, label string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, e := range entities {
		if e.Label != label {
			continue
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
