// Package taxonomy maps free-text skill mentions onto canonical skill names.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Skill is a canonical skill together with the lowercase phrases that denote it.
type Skill struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases" yaml:"aliases"`
}

// Match is a canonical skill found in a text.
type Match struct {
	Skill      string  `json:"canonical_skill"`
	Phrase     string  `json:"matched_phrase"`
	Confidence float64 `json:"confidence"`
}

// Taxonomy is an ordered, read-only skill table. It is safe for concurrent use.
type Taxonomy struct {
	skills   []Skill
	patterns [][][]string
}

var defaultSkills = []Skill{
	{Name: "Python", Aliases: []string{"python", "py"}},
	{Name: "Java", Aliases: []string{"java"}},
	{Name: "C++", Aliases: []string{"c++", "cpp"}},
	{Name: "SQL", Aliases: []string{"sql"}},
	{Name: "PostgreSQL", Aliases: []string{"postgresql", "postgres"}},
	{Name: "MongoDB", Aliases: []string{"mongodb"}},
	{Name: "Cloud Computing", Aliases: []string{"aws", "azure", "gcp"}},
	{Name: "Docker", Aliases: []string{"docker"}},
	{Name: "Kubernetes", Aliases: []string{"kubernetes", "k8s"}},
	{Name: "Web Frameworks", Aliases: []string{"fastapi", "flask", "django", "react"}},
	{Name: "Data Science", Aliases: []string{"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch"}},
	{Name: "Natural Language Processing", Aliases: []string{"nlp"}},
	{Name: "Computer Vision", Aliases: []string{"computer vision", "cv"}},
	{Name: "JavaScript", Aliases: []string{"javascript", "js"}},
	{Name: "Web Development", Aliases: []string{"html", "css"}},
	{Name: "Version Control", Aliases: []string{"git"}},
	{Name: "Operating Systems", Aliases: []string{"linux"}},
	{Name: "Big Data", Aliases: []string{"spark", "hadoop"}},
	{Name: "Data Analysis", Aliases: []string{"data analysis"}},
	{Name: "ETL", Aliases: []string{"etl"}},
	{Name: "API Development", Aliases: []string{"rest api", "microservices"}},
}

// Default returns the built-in skill table.
func Default() *Taxonomy {
	t, err := New(defaultSkills)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy is invalid: %v", err))
	}
	return t
}

// New builds a taxonomy from skills, keeping their order. Aliases are
// lowercased and de-duplicated per skill.
func New(skills []Skill) (*Taxonomy, error) {
	if len(skills) == 0 {
		return nil, errors.New("taxonomy must contain at least one skill")
	}

	t := &Taxonomy{
		skills:   make([]Skill, 0, len(skills)),
		patterns: make([][][]string, 0, len(skills)),
	}
	seen := make(map[string]struct{}, len(skills))

	for i, skill := range skills {
		name := strings.TrimSpace(skill.Name)
		if name == "" {
			return nil, fmt.Errorf("skill #%d has an empty name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("skill %q is listed twice", name)
		}
		seen[name] = struct{}{}

		aliases := make([]string, 0, len(skill.Aliases))
		patterns := make([][]string, 0, len(skill.Aliases))
		known := make(map[string]struct{}, len(skill.Aliases))
		for _, alias := range skill.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" {
				continue
			}
			if _, dup := known[alias]; dup {
				continue
			}
			known[alias] = struct{}{}

			aliases = append(aliases, alias)
			patterns = append(patterns, tokenWords(tokenize(alias)))
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("skill %q has no aliases", name)
		}

		t.skills = append(t.skills, Skill{Name: name, Aliases: aliases})
		t.patterns = append(t.patterns, patterns)
	}

	return t, nil
}

// Skills returns a copy of the skill table.
func (t *Taxonomy) Skills() []Skill {
	out := make([]Skill, len(t.skills))
	for i, s := range t.skills {
		out[i] = Skill{Name: s.Name, Aliases: append([]string(nil), s.Aliases...)}
	}
	return out
}

// Len returns the number of canonical skills.
func (t *Taxonomy) Len() int {
	return len(t.skills)
}

// Match finds canonical skills mentioned in text. A skill matches when one of
// its aliases appears as a whole phrase, ignoring case. Each skill is reported
// once, with the phrase as written at its earliest occurrence, and results are
// ordered by that occurrence.
func (t *Taxonomy) Match(text string) []Match {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []Match{}
	}
	words := tokenWords(tokens)

	type hit struct {
		order int
		start int
		end   int
	}

	hits := make([]hit, 0)
	for i, patterns := range t.patterns {
		best := hit{order: i, start: -1}
		for _, pattern := range patterns {
			pos := indexPhrase(words, pattern, best.start)
			if pos < 0 {
				continue
			}
			if best.start < 0 || pos < best.start {
				best.start = pos
				best.end = pos + len(pattern) - 1
			}
		}
		if best.start >= 0 {
			hits = append(hits, best)
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].start < hits[b].start
	})

	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, Match{
			Skill:      t.skills[h.order].Name,
			Phrase:     text[tokens[h.start].start:tokens[h.end].end],
			Confidence: 1.0,
		})
	}

	return matches
}

// indexPhrase returns the first token index where pattern starts, searching
// only before limit when limit is non-negative.
func indexPhrase(words, pattern []string, limit int) int {
	if len(pattern) == 0 {
		return -1
	}
	last := len(words) - len(pattern)
	if limit >= 0 && limit-1 < last {
		last = limit - 1
	}
	for i := 0; i <= last; i++ {
		if words[i] != pattern[0] {
			continue
		}
		matched := true
		for j := 1; j < len(pattern); j++ {
			if words[i+j] != pattern[j] {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}
