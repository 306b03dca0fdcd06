// Package local generates completions with a locally hosted model served over
// the Ollama HTTP API.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-screener/internal/modelapi"
)

const (
	// DefaultModel is the small instruction-tuned model used when none is configured.
	DefaultModel = "flan-t5-small"
	// DefaultEndpoint is the address of a local Ollama server.
	DefaultEndpoint = "http://localhost:11434"

	defaultMaxTokens = 256
)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generator calls /api/generate without streaming.
type Generator struct {
	client    *modelapi.Client
	model     string
	maxTokens int
}

func NewGenerator(client *modelapi.Client, model string, maxTokens int) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Generator{client: client, model: model, maxTokens: maxTokens}
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Options: generateOptions{
			NumPredict: g.maxTokens,
		},
	}

	var resp generateResponse
	if err := g.client.PostJSON(ctx, "/api/generate", req, &resp); err != nil {
		return "", fmt.Errorf("local generate: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("local generate: %s", resp.Error)
	}

	output := strings.TrimSpace(resp.Response)
	if output == "" {
		return "", errors.New("local model returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	return g.model
}
