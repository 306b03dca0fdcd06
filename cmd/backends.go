package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/ai/local"
	"github.com/spigell/resume-screener/internal/embedding"
	"github.com/spigell/resume-screener/internal/lazy"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/modelapi"
	"github.com/spigell/resume-screener/internal/nlp"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/scoring"
	"github.com/spigell/resume-screener/internal/secrets"
	"github.com/spigell/resume-screener/internal/taxonomy"
	"github.com/spigell/resume-screener/internal/textextract"

	"go.uber.org/zap"
)

// backends builds model clients from the configuration. Anything that loads
// a model or dials a server is created on first use and kept for the life
// of the process.
type backends struct {
	cfg    *Config
	logger *zap.Logger

	embeddings *lazy.Value[*embedding.Service]
	apiKey     *lazy.Value[string]
}

func newBackends(cfg *Config, log *zap.Logger) *backends {
	b := &backends{cfg: cfg, logger: log}

	b.apiKey = lazy.New(func(context.Context) (string, error) {
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return "", fmt.Errorf("%w (set GEMINI_API_KEY or gemini.api-key-file)", err)
		}
		return key, nil
	})

	b.embeddings = lazy.New(func(ctx context.Context) (*embedding.Service, error) {
		backend, err := b.embeddingBackend(ctx)
		if err != nil {
			return nil, err
		}
		logger.WithBackend(log, "embedder", backend.Name(), cfg.Embedding.Model).Debug("embedding backend ready")
		return embedding.NewService(backend, cfg.Embedding.Dimensions, log), nil
	})

	return b
}

func (b *backends) embeddingBackend(ctx context.Context) (embedding.Backend, error) {
	cfg := b.cfg.Embedding
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "hash":
		return embedding.NewHashBackend(cfg.Dimensions), nil
	case "local", "ollama":
		endpoint := cfg.Endpoint
		if strings.TrimSpace(endpoint) == "" {
			endpoint = b.cfg.LLM.Endpoint
		}
		client := modelapi.New(b.logger, endpoint, "", b.cfg.LLM.Timeout)
		return embedding.NewOllamaBackend(client, cfg.Model), nil
	case "gemini":
		key, err := b.apiKey.Get(ctx)
		if err != nil {
			return nil, err
		}
		return embedding.NewGeminiBackend(ctx, key, b.cfg.Gemini.EmbeddingModel, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (expected hash, local or gemini)", cfg.Provider)
	}
}

// Embed satisfies scoring.Embedder on top of the lazily created service.
func (b *backends) Embed(ctx context.Context, text string) ([]float64, error) {
	svc, err := b.embeddings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

func (b *backends) scorer() (*ai.Scorer, error) {
	mode, err := ai.ParseMode(b.cfg.LLM.Mode)
	if err != nil {
		return nil, err
	}

	geminiCfg := b.cfg.Gemini
	if mode == ai.ModeGemini {
		key, err := secrets.LoadOptional(secrets.Source{Value: geminiCfg.APIKey, File: geminiCfg.APIKeyFile})
		if err == nil && key == "" {
			b.logger.Warn("gemini mode without an api key, every request will fall back to the local model")
		}
	}

	geminiBackend := ai.Backend{
		Name: "gemini",
		Generator: ai.Lazy(geminiCfg.Model, func(ctx context.Context) (ai.Generator, error) {
			key, err := b.apiKey.Get(ctx)
			if err != nil {
				return nil, err
			}
			return gemini.NewGenerator(ctx, key, gemini.Options{
				Model:      geminiCfg.Model,
				MaxRetries: geminiCfg.MaxRetries,
				MaxTokens:  b.cfg.LLM.MaxTokens,
			}, b.logger)
		}),
	}

	llmCfg := b.cfg.LLM
	localBackend := ai.Backend{
		Name: "local",
		Generator: ai.Lazy(llmCfg.Model, func(context.Context) (ai.Generator, error) {
			client := modelapi.New(b.logger, llmCfg.Endpoint, "", llmCfg.Timeout)
			return local.NewGenerator(client, llmCfg.Model, llmCfg.MaxTokens), nil
		}),
	}

	b.logger.Debug("llm backends planned", zap.String("mode", string(mode)))

	return ai.NewScorer(b.logger, geminiCfg.MaxLogLength, ai.Plan(mode, geminiBackend, localBackend)...), nil
}

func (b *backends) recognizer() (nlp.Recognizer, error) {
	cfg := b.cfg.NLP
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "rules":
		return nlp.NewRuleRecognizer(), nil
	case "http":
		if strings.TrimSpace(cfg.Endpoint) == "" {
			return nil, fmt.Errorf("nlp.endpoint is required for the http recognizer")
		}
		return nlp.NewHTTPRecognizer(modelapi.New(b.logger, cfg.Endpoint, "", b.cfg.LLM.Timeout), cfg.Model), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown nlp provider %q (expected rules, http or none)", cfg.Provider)
	}
}

// classifier returns nil when no token classification endpoint is configured.
// A {model} placeholder in the endpoint is replaced with the classifier model.
func (b *backends) classifier() nlp.Classifier {
	cfg := b.cfg.NLP
	if strings.TrimSpace(cfg.ClassifierEndpoint) == "" {
		return nil
	}
	endpoint := strings.ReplaceAll(cfg.ClassifierEndpoint, "{model}", cfg.ClassifierModel)
	client := modelapi.New(b.logger, endpoint, cfg.ClassifierToken, b.cfg.LLM.Timeout)
	return nlp.NewHTTPClassifier(client)
}

func (b *backends) taxonomy() (*taxonomy.Taxonomy, error) {
	path := strings.TrimSpace(b.cfg.Skills.TaxonomyFile)
	if path == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(path)
}

func (b *backends) parser() (*resume.Parser, error) {
	recognizer, err := b.recognizer()
	if err != nil {
		return nil, err
	}
	tax, err := b.taxonomy()
	if err != nil {
		return nil, err
	}

	return resume.NewParser(resume.Deps{
		Logger:     b.logger,
		Recognizer: recognizer,
		Classifier: b.classifier(),
		Taxonomy:   tax,
	}, nil), nil
}

func (b *backends) pipeline() (*scoring.Pipeline, error) {
	parser, err := b.parser()
	if err != nil {
		return nil, err
	}
	scorer, err := b.scorer()
	if err != nil {
		return nil, err
	}

	screener := scoring.NewScreener(scorer, b, b.logger)
	return scoring.NewPipeline(textextract.New(b.logger), parser, screener), nil
}
