package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no Gemini embedding model is configured.
const DefaultGeminiModel = "gemini-embedding-001"

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiBackend embeds texts with the Gemini API.
type GeminiBackend struct {
	models contentEmbedder
	model  string
	dims   int32
}

// NewGeminiBackend creates a Gemini embedder. A positive dims asks the API
// for reduced output dimensionality.
func NewGeminiBackend(ctx context.Context, apiKey, model string, dims int) (*GeminiBackend, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiBackend(client.Models, model, dims), nil
}

func newGeminiBackend(models contentEmbedder, model string, dims int) *GeminiBackend {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiBackend{models: models, model: model, dims: int32(max(dims, 0))}
}

func (g *GeminiBackend) Name() string { return "gemini" }

func (g *GeminiBackend) Model() string { return g.model }

func (g *GeminiBackend) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	cfg := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if g.dims > 0 {
		cfg.OutputDimensionality = genai.Ptr(g.dims)
	}

	resp, err := g.models.EmbedContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, errors.New("gemini api returned no embeddings")
	}

	out := make([][]float64, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil {
			out = append(out, nil)
			continue
		}
		vec := make([]float64, len(emb.Values))
		for i, v := range emb.Values {
			vec[i] = float64(v)
		}
		out = append(out, vec)
	}

	return out, nil
}
