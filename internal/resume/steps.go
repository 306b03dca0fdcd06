package resume

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/resume-screener/internal/nlp"
	"github.com/spigell/resume-screener/internal/utils"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[\s\-]?)?(\(?\d{2,4}\)?[\s\-]?)?\d{3,4}[\s\-]?\d{3,4}`)
)

// Section is a résumé heading and the amount of text kept after it.
type Section struct {
	Name   string
	Window int
}

// Sections lists the headings looked up in the text.
var Sections = []Section{
	{Name: "experience", Window: 4000},
	{Name: "education", Window: 2000},
	{Name: "projects", Window: 2000},
}

type namesStep struct{}

func (s *namesStep) Name() string { return "names" }

func (s *namesStep) IsEnabled(deps Deps) bool { return deps.Recognizer != nil }

func (s *namesStep) Apply(ctx context.Context, deps Deps, text string, doc *ParsedResume) (Stat, error) {
	entities, err := deps.Recognizer.Recognize(ctx, utils.Truncate(text, MaxNERChars))
	if err != nil {
		return Stat{}, err
	}

	doc.BasicFields.Names = nlp.Filter(entities, nlp.LabelPerson)
	doc.BasicFields.Orgs = nlp.Filter(entities, nlp.LabelOrg)

	return Stat{Found: len(doc.BasicFields.Names) + len(doc.BasicFields.Orgs)}, nil
}

type contactsStep struct{}

func (s *contactsStep) Name() string { return "contacts" }

func (s *contactsStep) IsEnabled(Deps) bool { return true }

func (s *contactsStep) Apply(_ context.Context, _ Deps, text string, doc *ParsedResume) (Stat, error) {
	found := 0
	if email := emailPattern.FindString(text); email != "" {
		doc.BasicFields.Email = email
		found++
	}
	if phone := phonePattern.FindString(text); phone != "" {
		doc.BasicFields.Phone = phone
		found++
	}
	return Stat{Found: found}, nil
}

type sectionsStep struct{}

func (s *sectionsStep) Name() string { return "sections" }

func (s *sectionsStep) IsEnabled(Deps) bool { return true }

func (s *sectionsStep) Apply(_ context.Context, _ Deps, text string, doc *ParsedResume) (Stat, error) {
	sections := FindSections(text)
	doc.Sections = sections
	return Stat{Found: len(sections)}, nil
}

// FindSections returns, for every known heading present in text, the text
// starting at its first case-insensitive occurrence and spanning the heading's
// window.
func FindSections(text string) map[string]string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	sections := make(map[string]string, len(Sections))
	for _, section := range Sections {
		idx := indexRunes(lower, []rune(section.Name))
		if idx < 0 {
			continue
		}
		end := min(idx+section.Window, len(runes))
		sections[section.Name] = string(runes[idx:end])
	}

	return sections
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

type entitiesStep struct{}

func (s *entitiesStep) Name() string { return "entities" }

func (s *entitiesStep) IsEnabled(deps Deps) bool { return deps.Classifier != nil }

func (s *entitiesStep) Apply(ctx context.Context, deps Deps, text string, doc *ParsedResume) (Stat, error) {
	chunks := Chunk(text, ChunkChars)

	merged := make([]nlp.Entity, 0)
	seen := make(map[string]struct{})
	failed := 0
	var lastErr error

	for _, chunk := range chunks {
		entities, err := deps.Classifier.Classify(ctx, chunk.Text)
		if err != nil {
			if ctx.Err() != nil {
				return Stat{}, ctx.Err()
			}
			failed++
			lastErr = err
			deps.Logger.Warn("token classification failed for chunk",
				zap.Int("offset", chunk.Offset),
				zap.Error(err),
			)
			continue
		}

		for _, e := range entities {
			key := e.Label + "\x00" + strings.ToLower(strings.TrimSpace(e.Text))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			e.Start += chunk.Offset
			e.End += chunk.Offset
			merged = append(merged, e)
		}
	}

	if len(chunks) > 0 && failed == len(chunks) {
		return Stat{}, errors.Join(errors.New("token classifier is unavailable"), lastErr)
	}

	doc.ExtractedEntities = merged
	return Stat{Found: len(merged)}, nil
}

// TextChunk is a piece of text and its character offset in the source.
type TextChunk struct {
	Text   string
	Offset int
}

// Chunk splits text into consecutive pieces of at most size characters.
func Chunk(text string, size int) []TextChunk {
	runes := []rune(text)
	if len(runes) == 0 || size <= 0 {
		return nil
	}

	chunks := make([]TextChunk, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, TextChunk{Text: string(runes[start:end]), Offset: start})
	}
	return chunks
}

type skillsStep struct{}

func (s *skillsStep) Name() string { return "skills" }

func (s *skillsStep) IsEnabled(deps Deps) bool { return deps.Taxonomy != nil }

func (s *skillsStep) Apply(_ context.Context, deps Deps, text string, doc *ParsedResume) (Stat, error) {
	doc.Skills = deps.Taxonomy.Match(text)
	return Stat{Found: len(doc.Skills)}, nil
}
