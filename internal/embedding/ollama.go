package embedding

import (
	"context"
	"errors"
	"strings"

	"github.com/spigell/resume-screener/internal/modelapi"
)

// DefaultLocalModel is the Ollama name of all-MiniLM-L6-v2.
const DefaultLocalModel = "all-minilm"

// OllamaBackend embeds texts through the Ollama /api/embed endpoint.
type OllamaBackend struct {
	client *modelapi.Client
	model  string
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func NewOllamaBackend(client *modelapi.Client, model string) *OllamaBackend {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultLocalModel
	}
	return &OllamaBackend{client: client, model: model}
}

func (o *OllamaBackend) Name() string { return "ollama" }

func (o *OllamaBackend) Model() string { return o.model }

func (o *OllamaBackend) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	var resp embedResponse
	if err := o.client.PostJSON(ctx, "/api/embed", embedRequest{Model: o.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("ollama returned no embeddings")
	}
	return resp.Embeddings, nil
}
