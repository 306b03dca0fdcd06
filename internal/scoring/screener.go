// Package scoring produces the final fit score for a résumé, using the
// language model when it answers and embedding similarity otherwise.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/embedding"
	"go.uber.org/zap"
)

const (
	MethodLLM    = "llm"
	MethodCosine = "cosine"
)

var (
	ErrNoText           = errors.New("no text could be extracted from the uploaded file")
	ErrNoJobDescription = errors.New("no job description provided")
)

// LLMScorer rates a résumé against a job with a language model.
type LLMScorer interface {
	Score(ctx context.Context, jobTitle, jobDescription, resumeText string) ai.ScoreResult
}

// Embedder returns unit-length text embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Request is a single screening job.
type Request struct {
	JobTitle       string
	JobDescription string `validate:"notblank"`
	ResumeText     string `validate:"notblank"`
}

// Result is the final screening outcome. Similarity and LLMError are set only
// for the cosine method; RawModelOutput only for the llm method.
type Result struct {
	Method         string       `json:"method"`
	Score          float64      `json:"score"`
	Justification  string       `json:"justification"`
	RawModelOutput string       `json:"raw_model_output,omitempty"`
	Backend        string       `json:"backend,omitempty"`
	Similarity     *float64     `json:"similarity,omitempty"`
	LLMError       string       `json:"llm_error,omitempty"`
	Attempts       []ai.Attempt `json:"attempts,omitempty"`
}

// Screener combines the LLM scorer with the embedding fallback.
type Screener struct {
	llm      LLMScorer
	embedder Embedder
	logger   *zap.Logger
	validate *validator.Validate
}

func NewScreener(llm LLMScorer, embedder Embedder, logger *zap.Logger) *Screener {
	if logger == nil {
		logger = zap.NewNop()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or a nil function.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &Screener{
		llm:      llm,
		embedder: embedder,
		logger:   logger,
		validate: validate,
	}
}

// Screen validates req, asks the LLM scorer and, when it fails, falls back to
// embedding similarity once. Only validation problems are returned as errors.
func (s *Screener) Screen(ctx context.Context, req Request) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	var llmResult ai.ScoreResult
	if s.llm != nil {
		llmResult = s.llm.Score(ctx, req.JobTitle, req.JobDescription, req.ResumeText)
	} else {
		llmResult = ai.ScoreResult{Error: "llm scorer is disabled"}
	}

	if llmResult.OK && llmResult.Score != nil {
		s.logger.Info("scored by llm",
			zap.String("backend", llmResult.Backend),
			zap.Float64("score", *llmResult.Score),
		)
		return &Result{
			Method:         MethodLLM,
			Score:          *llmResult.Score,
			Justification:  llmResult.Justification,
			RawModelOutput: llmResult.Raw,
			Backend:        llmResult.Backend,
			Attempts:       llmResult.Attempts,
		}, nil
	}

	s.logger.Warn("llm scoring failed, falling back to embedding similarity",
		zap.String("llm_error", llmResult.Error),
	)

	sim := s.similarity(ctx, req.ResumeText, req.JobDescription)
	score := ScoreFromSimilarity(sim)

	s.logger.Info("scored by embedding similarity",
		zap.Float64("similarity", sim),
		zap.Float64("score", score),
	)

	return &Result{
		Method:        MethodCosine,
		Score:         score,
		Justification: fmt.Sprintf("Cosine similarity: %.4f. LLM error: %s", sim, llmResult.Error),
		Similarity:    &sim,
		LLMError:      llmResult.Error,
		Attempts:      llmResult.Attempts,
	}, nil
}

func (s *Screener) check(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	failed := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Field()] = true
	}

	switch {
	case failed["JobDescription"]:
		return ErrNoJobDescription
	case failed["ResumeText"]:
		return ErrNoText
	default:
		return fmt.Errorf("validate request: %w", err)
	}
}

// similarity embeds both texts and returns their cosine similarity clamped to
// [0, 1]. A text that cannot be embedded counts as missing, giving 0.
func (s *Screener) similarity(ctx context.Context, resumeText, jobDescription string) float64 {
	if s.embedder == nil {
		s.logger.Warn("no embedder configured, similarity is 0")
		return 0
	}

	resumeVec := s.embed(ctx, "resume", resumeText)
	jobVec := s.embed(ctx, "job_description", jobDescription)

	sim, err := embedding.CosineStrict(resumeVec, jobVec)
	if err != nil {
		s.logger.Warn("cannot compare embeddings", zap.Error(err))
		return 0
	}

	return ai.Clamp(sim, 0, 1)
}

func (s *Screener) embed(ctx context.Context, what, text string) []float64 {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embedding failed", zap.String("text", what), zap.Error(err))
		return nil
	}
	return vec
}

// ScoreFromSimilarity maps a similarity in [0, 1] onto the 1-10 scale.
func ScoreFromSimilarity(sim float64) float64 {
	sim = ai.Clamp(sim, 0, 1)
	return ai.Round2(1 + 9*sim)
}
