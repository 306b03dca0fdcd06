package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/resume-screener/internal/nlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *Config {
	return &Config{
		LLM:       &LLMConfig{Mode: "LOCAL", Model: "flan-t5-small", MaxTokens: 256, Endpoint: "http://127.0.0.1:1", Timeout: time.Second},
		Gemini:    &GeminiConfig{Model: "gemini-2.5-flash", MaxRetries: 1},
		Embedding: &EmbeddingConfig{Provider: "hash"},
		NLP:       &NLPConfig{Provider: "rules"},
		Skills:    &SkillsConfig{TopK: 8},
	}
}

func TestBackendsEmbedWithHashProvider(t *testing.T) {
	b := newBackends(testConfig(), zap.NewNop())

	vec, err := b.Embed(context.Background(), "python developer")
	require.NoError(t, err)
	assert.Len(t, vec, 384)

	zero, err := b.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 384), zero)
}

func TestBackendsUnknownProviders(t *testing.T) {
	cfg := testConfig()
	cfg.Embedding.Provider = "word2vec"
	cfg.NLP.Provider = "stanza"
	cfg.LLM.Mode = "openai"

	b := newBackends(cfg, zap.NewNop())

	_, err := b.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "unknown embedding provider")

	_, err = b.recognizer()
	assert.ErrorContains(t, err, "unknown nlp provider")

	_, err = b.scorer()
	assert.ErrorContains(t, err, "unknown llm mode")
}

func TestBackendsGeminiWithoutKeyFallsBackToLocal(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Mode = "gemini"

	scorer, err := newBackends(cfg, zap.NewNop()).scorer()
	require.NoError(t, err)

	result := scorer.Score(context.Background(), "Engineer", "Go", "Go developer")
	assert.False(t, result.OK)
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, "gemini", result.Attempts[0].Backend)
	assert.Contains(t, result.Attempts[0].Error, "gemini api key")
	assert.Equal(t, "local", result.Attempts[1].Backend)
}

func TestBackendsRecognizerAndClassifier(t *testing.T) {
	cfg := testConfig()
	b := newBackends(cfg, zap.NewNop())

	rec, err := b.recognizer()
	require.NoError(t, err)
	assert.IsType(t, &nlp.RuleRecognizer{}, rec)
	assert.Nil(t, b.classifier())

	cfg.NLP.Provider = "none"
	rec, err = b.recognizer()
	require.NoError(t, err)
	assert.Nil(t, rec)

	cfg.NLP.Provider = "http"
	_, err = b.recognizer()
	assert.Error(t, err)

	cfg.NLP.ClassifierEndpoint = "http://127.0.0.1:1/models/{model}"
	cfg.NLP.ClassifierModel = "dslim/bert-base-NER"
	cls, ok := b.classifier().(*nlp.HTTPClassifier)
	require.True(t, ok)
	assert.NotNil(t, cls)
}

func TestBackendsTaxonomyFile(t *testing.T) {
	cfg := testConfig()
	b := newBackends(cfg, zap.NewNop())

	tax, err := b.taxonomy()
	require.NoError(t, err)
	assert.Equal(t, 21, tax.Len())

	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - name: Go\n    aliases: [go, golang]\n"), 0o600))
	cfg.Skills.TaxonomyFile = path

	tax, err = b.taxonomy()
	require.NoError(t, err)
	assert.Equal(t, 1, tax.Len())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "LLM_MAX_TOKENS", envKey("llm.max-tokens"))
	assert.Equal(t, "GEMINI_API_KEY_FILE", envKey("gemini.api-key-file"))
}
