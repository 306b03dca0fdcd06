package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/utils"
	"go.uber.org/zap"
)

const (
	// MaxJobDescriptionChars bounds the job description placed in the prompt.
	MaxJobDescriptionChars = 8000
	// MaxResumeChars bounds the résumé text placed in the prompt.
	MaxResumeChars = 15000

	minScore = 1
	maxScore = 10

	defaultMaxLogLength = 200
)

//go:embed prompt.md
var promptTemplate string

// Scorer asks language models for a fit score, trying backends in order.
type Scorer struct {
	backends  []Backend
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(logger *zap.Logger, maxLogLength int, backends ...Backend) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		backends:  backends,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score rates the résumé against the job. It does not return errors: every
// failure is described by a result with OK set to false.
func (s *Scorer) Score(ctx context.Context, jobTitle, jobDescription, resumeText string) (result ScoreResult) {
	var attempts []Attempt
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("llm scoring panicked", zap.Any("panic", r))
			result = ScoreResult{OK: false, Error: fmt.Sprint(r), Attempts: attempts}
		}
	}()

	prompt := BuildPrompt(jobTitle, jobDescription, resumeText)

	if len(s.backends) == 0 {
		return ScoreResult{Error: "no llm backend configured"}
	}

	var lastErr error
	for _, backend := range s.backends {
		if backend.Generator == nil {
			continue
		}
		log := logger.WithBackend(s.logger, "generator", backend.Name, backend.Generator.Model())

		log.Debug("llm generate content request",
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
		)

		raw, err := backend.Generator.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = err
			attempts = append(attempts, Attempt{
				Backend: backend.Name,
				Model:   backend.Generator.Model(),
				Error:   err.Error(),
			})
			log.Warn("llm backend failed", zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		log.Debug("llm generate content response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)

		result = parseResponse(raw)
		result.Backend = backend.Name
		result.Attempts = attempts
		if !result.OK {
			log.Warn("llm response rejected", zap.String("reason", result.Error))
		}
		return result
	}

	if lastErr == nil {
		lastErr = errors.New("no llm backend configured")
	}

	return ScoreResult{OK: false, Error: lastErr.Error(), Attempts: attempts}
}

// BuildPrompt fills the scoring template, cutting the job description and
// the résumé to their limits.
func BuildPrompt(jobTitle, jobDescription, resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job title: {{JOB_TITLE}}\n\nJob description:\n{{JOB_DESCRIPTION}}\n\nCandidate resume:\n{{RESUME}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", strings.TrimSpace(jobTitle),
		"{{JOB_DESCRIPTION}}", utils.Truncate(jobDescription, MaxJobDescriptionChars),
		"{{RESUME}}", utils.Truncate(resumeText, MaxResumeChars),
	)
	return replacer.Replace(template)
}

type verdict struct {
	Score         *float64 `mapstructure:"score"`
	Justification any      `mapstructure:"justification"`
	Explanation   any      `mapstructure:"explanation"`
}

func parseResponse(raw string) ScoreResult {
	failed := func(reason string) ScoreResult {
		return ScoreResult{OK: false, Error: reason, Raw: raw}
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return failed(ErrJSONParseFailed)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return failed(ErrJSONParseFailed)
	}

	value, present := data["score"]
	if !present || value == nil {
		return failed(ErrJSONParseFailed)
	}
	// Weak decoding reads "" as 0.
	if str, ok := value.(string); ok {
		str = strings.TrimSpace(str)
		if str == "" {
			return failed(ErrInvalidScoreValue)
		}
		data["score"] = str
	}

	var v verdict
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &v,
	})
	if err != nil {
		return failed(ErrInvalidScoreValue)
	}
	if err := decoder.Decode(data); err != nil || v.Score == nil {
		return failed(ErrInvalidScoreValue)
	}
	if math.IsNaN(*v.Score) || math.IsInf(*v.Score, 0) {
		return failed(ErrInvalidScoreValue)
	}

	score := Round2(Clamp(*v.Score, minScore, maxScore))

	justification := coerceString(v.Justification)
	if justification == "" {
		justification = coerceString(v.Explanation)
	}
	if justification == "" {
		justification = strings.TrimSpace(raw)
	}

	return ScoreResult{
		OK:            true,
		Score:         &score,
		Justification: justification,
		Raw:           raw,
	}
}

// extractJSON returns the text from the first '{' to the last '}'.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
