package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-screener/internal/modelapi"
)

// HTTPRecognizer calls an entity recognition service speaking the spaCy
// style protocol: POST {"text", "model"} answered by {"ents": [...]}.
type HTTPRecognizer struct {
	client *modelapi.Client
	model  string
}

type recognizeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type recognizeResponse struct {
	Ents []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"ents"`
}

func NewHTTPRecognizer(client *modelapi.Client, model string) *HTTPRecognizer {
	return &HTTPRecognizer{client: client, model: strings.TrimSpace(model)}
}

func (r *HTTPRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	var resp recognizeResponse
	if err := r.client.PostJSON(ctx, "", recognizeRequest{Text: text, Model: r.model}, &resp); err != nil {
		return nil, fmt.Errorf("recognize entities: %w", err)
	}

	entities := make([]Entity, 0, len(resp.Ents))
	for _, ent := range resp.Ents {
		entities = append(entities, Entity{
			Label:      strings.ToUpper(strings.TrimSpace(ent.Label)),
			Text:       ent.Text,
			Confidence: 1.0,
			Start:      ent.Start,
			End:        ent.End,
		})
	}

	return entities, nil
}

// HTTPClassifier calls a token classification endpoint in the Hugging Face
// inference format: POST {"inputs": text} answered by a list of grouped
// entities.
type HTTPClassifier struct {
	client *modelapi.Client
}

type classifyRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type classifiedToken struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

func NewHTTPClassifier(client *modelapi.Client) *HTTPClassifier {
	return &HTTPClassifier{client: client}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]Entity, error) {
	req := classifyRequest{
		Inputs:     text,
		Parameters: map[string]any{"aggregation_strategy": "simple"},
	}

	var resp []classifiedToken
	if err := c.client.PostJSON(ctx, "", req, &resp); err != nil {
		return nil, fmt.Errorf("classify tokens: %w", err)
	}

	entities := make([]Entity, 0, len(resp))
	for _, tok := range resp {
		label := tok.EntityGroup
		if label == "" {
			label = tok.Entity
		}
		label = strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")

		word := strings.TrimSpace(strings.ReplaceAll(tok.Word, "##", ""))
		if label == "" || word == "" {
			continue
		}

		entities = append(entities, Entity{
			Label:      label,
			Text:       word,
			Confidence: tok.Score,
			Start:      tok.Start,
			End:        tok.End,
		})
	}

	return entities, nil
}
