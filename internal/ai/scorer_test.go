package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	panicValue any
	model      string
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.panicValue != nil {
		panic(s.panicValue)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	if s.model == "" {
		return "stub-model"
	}
	return s.model
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		raw           string
		ok            bool
		score         float64
		justification string
		errReason     string
	}{
		{
			name:          "prose around json and clamp high",
			raw:           `Here is my answer: {"score": 15, "justification": "great fit"}`,
			ok:            true,
			score:         10,
			justification: "great fit",
		},
		{
			name:          "clamp low",
			raw:           `{"score": -3, "justification": "no overlap"}`,
			ok:            true,
			score:         1,
			justification: "no overlap",
		},
		{
			name:          "string score rounded",
			raw:           "```json\n{\"score\": \"7.456\", \"justification\": \"solid\"}\n```",
			ok:            true,
			score:         7.46,
			justification: "solid",
		},
		{
			name:          "explanation key",
			raw:           `{"score": 6, "explanation": "partial match"}`,
			ok:            true,
			score:         6,
			justification: "partial match",
		},
		{
			name:          "missing justification falls back to raw",
			raw:           ` {"score": 8} `,
			ok:            true,
			score:         8,
			justification: `{"score": 8}`,
		},
		{
			name:      "no braces",
			raw:       "The candidate is a good fit, 8 out of 10.",
			errReason: ErrJSONParseFailed,
		},
		{
			name:      "reversed braces",
			raw:       "} nothing {",
			errReason: ErrJSONParseFailed,
		},
		{
			name:      "invalid json",
			raw:       `{"score": 8, "justification": }`,
			errReason: ErrJSONParseFailed,
		},
		{
			name:      "missing score",
			raw:       `{"justification": "fine"}`,
			errReason: ErrJSONParseFailed,
		},
		{
			name:      "null score",
			raw:       `{"score": null}`,
			errReason: ErrJSONParseFailed,
		},
		{
			name:      "non numeric score",
			raw:       `{"score": "eight", "justification": "fine"}`,
			errReason: ErrInvalidScoreValue,
		},
		{
			name:      "empty string score",
			raw:       `{"score": "", "justification": "fine"}`,
			errReason: ErrInvalidScoreValue,
		},
		{
			name:      "blank string score",
			raw:       `{"score": "  "}`,
			errReason: ErrInvalidScoreValue,
		},
		{
			name:          "padded string score",
			raw:           `{"score": " 7 ", "justification": "ok"}`,
			ok:            true,
			score:         7,
			justification: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseResponse(tt.raw)
			if got.Raw != tt.raw {
				t.Fatalf("expected raw output to be preserved, got %q", got.Raw)
			}

			if !tt.ok {
				if got.OK {
					t.Fatalf("expected failure, got %+v", got)
				}
				if got.Error != tt.errReason {
					t.Fatalf("expected error %q, got %q", tt.errReason, got.Error)
				}
				if got.Score != nil {
					t.Fatalf("expected no score, got %v", *got.Score)
				}
				return
			}

			if !got.OK {
				t.Fatalf("expected success, got error %q", got.Error)
			}
			if got.Score == nil || *got.Score != tt.score {
				t.Fatalf("expected score %v, got %v", tt.score, got.Score)
			}
			if got.Justification != tt.justification {
				t.Fatalf("expected justification %q, got %q", tt.justification, got.Justification)
			}
		})
	}
}

func TestBuildPromptTruncates(t *testing.T) {
	desc := strings.Repeat("d", MaxJobDescriptionChars+100)
	resume := strings.Repeat("r", MaxResumeChars+100)

	prompt := BuildPrompt("  Backend Engineer ", desc, resume)

	if !strings.Contains(prompt, "Job title: Backend Engineer\n") {
		t.Fatalf("expected trimmed job title in prompt")
	}
	if strings.Count(prompt, "d") < MaxJobDescriptionChars {
		t.Fatalf("expected job description in prompt")
	}
	if strings.Contains(prompt, strings.Repeat("d", MaxJobDescriptionChars+1)) {
		t.Fatalf("expected job description to be truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("r", MaxResumeChars)) {
		t.Fatalf("expected resume in prompt")
	}
	if strings.Contains(prompt, strings.Repeat("r", MaxResumeChars+1)) {
		t.Fatalf("expected resume to be truncated")
	}
	if !strings.Contains(prompt, "score <integer 1-10>") {
		t.Fatalf("expected scoring instruction in prompt")
	}
}

func TestScorerUsesFirstWorkingBackend(t *testing.T) {
	gemini := &stubGenerator{err: errors.New("quota exceeded"), model: "gemini-2.5-flash"}
	local := &stubGenerator{response: `{"score": 7, "justification": "good"}`}

	scorer := NewScorer(zap.NewNop(), 0, Plan(ModeGemini,
		Backend{Name: "gemini", Generator: gemini},
		Backend{Name: "local", Generator: local},
	)...)

	result := scorer.Score(context.Background(), "Engineer", "Go and Docker", "Docker expert")
	if !result.OK {
		t.Fatalf("expected success, got %+v", result)
	}
	if *result.Score != 7 || result.Backend != "local" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Attempts) != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", len(result.Attempts))
	}
	if got := result.Attempts[0]; got.Backend != "gemini" || got.Model != "gemini-2.5-flash" || got.Error != "quota exceeded" {
		t.Fatalf("unexpected attempt: %+v", got)
	}
	if gemini.lastPrompt != local.lastPrompt || local.lastPrompt == "" {
		t.Fatalf("expected the same prompt to be sent to both backends")
	}
}

func TestScorerLocalModeSkipsGemini(t *testing.T) {
	gemini := &stubGenerator{response: `{"score": 9, "justification": "x"}`}
	local := &stubGenerator{response: `{"score": 3, "justification": "y"}`}

	scorer := NewScorer(nil, 0, Plan(ModeLocal,
		Backend{Name: "gemini", Generator: gemini},
		Backend{Name: "local", Generator: local},
	)...)

	result := scorer.Score(context.Background(), "t", "d", "r")
	if !result.OK || *result.Score != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gemini.calls != 0 {
		t.Fatalf("expected gemini not to be called, got %d calls", gemini.calls)
	}
}

func TestScorerParseFailureDoesNotTryNextBackend(t *testing.T) {
	gemini := &stubGenerator{response: "I think 8"}
	local := &stubGenerator{response: `{"score": 3, "justification": "y"}`}

	result := NewScorer(nil, 0,
		Backend{Name: "gemini", Generator: gemini},
		Backend{Name: "local", Generator: local},
	).Score(context.Background(), "t", "d", "r")

	if result.OK || result.Error != ErrJSONParseFailed || result.Raw != "I think 8" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if local.calls != 0 {
		t.Fatalf("expected local backend not to be called")
	}
}

func TestScorerAllBackendsFail(t *testing.T) {
	result := NewScorer(nil, 0,
		Backend{Name: "gemini", Generator: &stubGenerator{err: errors.New("no api key")}},
		Backend{Name: "local", Generator: &stubGenerator{err: errors.New("connection refused")}},
	).Score(context.Background(), "t", "d", "r")

	if result.OK || result.Error != "connection refused" || result.Raw != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(result.Attempts))
	}

	empty := NewScorer(nil, 0).Score(context.Background(), "t", "d", "r")
	if empty.OK || empty.Error == "" {
		t.Fatalf("expected failure without backends, got %+v", empty)
	}
}

func TestScorerRecoversFromPanic(t *testing.T) {
	result := NewScorer(nil, 0,
		Backend{Name: "local", Generator: &stubGenerator{panicValue: "tokenizer exploded"}},
	).Score(context.Background(), "t", "d", "r")

	if result.OK || result.Error != "tokenizer exploded" || result.Raw != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeLocal, "local": ModeLocal, " Gemini ": ModeGemini}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("openai"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestLazyGenerator(t *testing.T) {
	builds := 0
	gen := Lazy("flan-t5-small", func(context.Context) (Generator, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("model server not ready")
		}
		return &stubGenerator{response: "ok"}, nil
	})

	if gen.Model() != "flan-t5-small" {
		t.Fatalf("unexpected model: %s", gen.Model())
	}
	if _, err := gen.GenerateContent(context.Background(), "p"); err == nil {
		t.Fatalf("expected build error")
	}
	for i := 0; i < 2; i++ {
		out, err := gen.GenerateContent(context.Background(), "p")
		if err != nil || out != "ok" {
			t.Fatalf("unexpected output %q, %v", out, err)
		}
	}
	if builds != 2 {
		t.Fatalf("expected 2 builds, got %d", builds)
	}
}

func TestLazyGeneratorNilBuild(t *testing.T) {
	gen := Lazy("flan-t5-small", func(context.Context) (Generator, error) {
		return nil, nil
	})

	if _, err := gen.GenerateContent(context.Background(), "p"); err == nil {
		t.Fatalf("expected an error for a nil generator")
	}
}
