// Package ai scores how well a résumé fits a job with a language model.
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces a completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Backend is a named generator in the scorer's attempt list.
type Backend struct {
	Name      string
	Generator Generator
}

// Mode selects which backends the scorer tries.
type Mode string

const (
	// ModeLocal uses only the locally hosted model.
	ModeLocal Mode = "LOCAL"
	// ModeGemini tries Gemini first and falls back to the local model.
	ModeGemini Mode = "GEMINI"
)

// ParseMode accepts a mode name in any case. An empty name selects ModeLocal.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeGemini:
		return ModeGemini, nil
	default:
		return "", fmt.Errorf("unknown llm mode %q (expected %s or %s)", s, ModeLocal, ModeGemini)
	}
}

// Plan returns the ordered attempt list for mode.
func Plan(mode Mode, gemini, local Backend) []Backend {
	if mode == ModeGemini {
		return []Backend{gemini, local}
	}
	return []Backend{local}
}

// Attempt records a backend that failed to produce output.
type Attempt struct {
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	Error   string `json:"error"`
}

// ScoreResult is the outcome of a scoring request. Score is nil when the
// model gave no usable score; Justification is never empty when OK is true.
type ScoreResult struct {
	OK            bool      `json:"ok"`
	Score         *float64  `json:"score,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Raw           string    `json:"raw_model_output"`
	Error         string    `json:"error,omitempty"`
	Backend       string    `json:"backend,omitempty"`
	Attempts      []Attempt `json:"attempts,omitempty"`
}

const (
	// ErrJSONParseFailed is reported when the model output holds no JSON object with a score.
	ErrJSONParseFailed = "json_parse_failed"
	// ErrInvalidScoreValue is reported when the score is not a number.
	ErrInvalidScoreValue = "invalid_score_value"
)
