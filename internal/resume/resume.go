// Package resume builds structured résumé data from extracted text.
package resume

import (
	"github.com/spigell/resume-screener/internal/nlp"
	"github.com/spigell/resume-screener/internal/taxonomy"
)

const (
	// MaxTextChars bounds the résumé text kept in RawText and used for scoring.
	MaxTextChars = 20000
	// MaxNERChars bounds the text handed to the entity recognizer.
	MaxNERChars = 15000
	// ChunkChars is the size of the pieces sent to the token classifier.
	ChunkChars = 2000
)

// BasicFields are the identity and contact details of the candidate.
// Email and Phone are empty when not found.
type BasicFields struct {
	Names []string `json:"names"`
	Orgs  []string `json:"orgs"`
	Email string   `json:"email,omitempty"`
	Phone string   `json:"phone,omitempty"`
}

// ParsedResume is the result of parsing one résumé. It is not modified after
// Parse returns.
type ParsedResume struct {
	RawText           string            `json:"raw_text"`
	BasicFields       BasicFields       `json:"basic_fields"`
	Sections          map[string]string `json:"sections"`
	ExtractedEntities []nlp.Entity      `json:"extracted_entities"`
	Skills            []taxonomy.Match  `json:"skills"`
}

// TopSkills returns up to k canonical skill names in the order they were found.
// A non-positive k returns all of them.
func (p *ParsedResume) TopSkills(k int) []string {
	if p == nil {
		return nil
	}
	n := len(p.Skills)
	if k > 0 && k < n {
		n = k
	}
	out := make([]string, 0, n)
	for _, s := range p.Skills[:n] {
		out = append(out, s.Skill)
	}
	return out
}

func newParsedResume(text string) *ParsedResume {
	return &ParsedResume{
		RawText: text,
		BasicFields: BasicFields{
			Names: []string{},
			Orgs:  []string{},
		},
		Sections:          map[string]string{},
		ExtractedEntities: []nlp.Entity{},
		Skills:            []taxonomy.Match{},
	}
}
