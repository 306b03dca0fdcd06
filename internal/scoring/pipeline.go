package scoring

import (
	"context"
	"strings"

	"github.com/spigell/resume-screener/internal/resume"
)

// TextExtractor converts an uploaded file into text.
type TextExtractor interface {
	Extract(data []byte, filename string) string
}

// ResumeParser turns text into structured résumé data.
type ResumeParser interface {
	Parse(ctx context.Context, raw string) *resume.ParsedResume
}

// Report is everything produced for one uploaded résumé.
type Report struct {
	Resume *resume.ParsedResume `json:"resume"`
	Result *Result              `json:"result"`
}

// Pipeline runs extraction, parsing and screening for one upload.
type Pipeline struct {
	extractor TextExtractor
	parser    ResumeParser
	screener  *Screener
}

func NewPipeline(extractor TextExtractor, parser ResumeParser, screener *Screener) *Pipeline {
	return &Pipeline{extractor: extractor, parser: parser, screener: screener}
}

// Run screens the uploaded file against the job. The parsed résumé text,
// already cut to its maximum length, is what gets scored.
func (p *Pipeline) Run(ctx context.Context, data []byte, filename, jobTitle, jobDescription string) (*Report, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrNoJobDescription
	}

	text := p.extractor.Extract(data, filename)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	parsed := p.parser.Parse(ctx, text)

	result, err := p.screener.Screen(ctx, Request{
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		ResumeText:     parsed.RawText,
	})
	if err != nil {
		return nil, err
	}

	return &Report{Resume: parsed, Result: result}, nil
}
