package nlp

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const nameLines = 5

var (
	orgPattern = regexp.MustCompile(
		`\b(?:University|Institute|College) of(?:[ \t]+[A-Z][\w&'-]*)+` +
			`|\b(?:[A-Z][\w&'.-]*[ \t]+){0,4}(?:Inc|LLC|Ltd|Corp|Corporation|Company|GmbH|University|College|Institute|Technologies|Labs|Group|Bank|Systems|Solutions|Software)\b\.?`,
	)

	headerWords = map[string]struct{}{
		"experience": {}, "education": {}, "skills": {}, "projects": {},
		"summary": {}, "profile": {}, "objective": {}, "contact": {},
		"certifications": {}, "languages": {}, "references": {}, "work": {},
		"professional": {}, "technical": {}, "curriculum": {}, "vitae": {},
		"resume": {}, "employment": {}, "history": {}, "interests": {},
	}
)

// RuleRecognizer is an offline recognizer based on layout and spelling
// heuristics. A person is a short capitalized line near the top of the
// document; an organization is a capitalized phrase ending in a company or
// school suffix.
type RuleRecognizer struct{}

func NewRuleRecognizer() *RuleRecognizer {
	return &RuleRecognizer{}
}

func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities := personLines(text)

	for _, loc := range orgPattern.FindAllStringIndex(text, -1) {
		name := strings.TrimSpace(text[loc[0]:loc[1]])
		if name == "" {
			continue
		}
		start := utf8.RuneCountInString(text[:loc[0]])
		entities = append(entities, Entity{
			Label:      LabelOrg,
			Text:       name,
			Confidence: 1.0,
			Start:      start,
			End:        start + utf8.RuneCountInString(name),
		})
	}

	return entities, nil
}

func personLines(text string) []Entity {
	var entities []Entity

	offset := 0
	seen := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineStart := offset
		offset += utf8.RuneCountInString(line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if seen > nameLines {
			break
		}

		if !looksLikeName(trimmed) {
			continue
		}

		lead := utf8.RuneCountInString(line[:strings.Index(line, trimmed)])
		start := lineStart + lead
		entities = append(entities, Entity{
			Label:      LabelPerson,
			Text:       trimmed,
			Confidence: 1.0,
			Start:      start,
			End:        start + utf8.RuneCountInString(trimmed),
		})
	}

	return entities
}

func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	if orgPattern.MatchString(line) {
		return false
	}

	for _, word := range words {
		if _, ok := headerWords[strings.ToLower(word)]; ok {
			return false
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) {
			return false
		}
		for _, r := range word {
			if unicode.IsLetter(r) || r == '-' || r == '\'' || r == '.' {
				continue
			}
			return false
		}
	}

	return true
}
