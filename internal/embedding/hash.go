package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultHashDimensions matches the size of the MiniLM sentence embeddings.
const DefaultHashDimensions = 384

// HashBackend is an offline embedder based on feature hashing of lowercase
// word unigrams and bigrams. It is deterministic and needs no model server.
type HashBackend struct {
	dims int
}

func NewHashBackend(dims int) *HashBackend {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashBackend{dims: dims}
}

func (h *HashBackend) Name() string { return "hash" }

func (h *HashBackend) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, h.vector(text))
	}
	return out, nil
}

func (h *HashBackend) vector(text string) []float64 {
	vec := make([]float64, h.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	for i, word := range words {
		h.add(vec, word, 1)
		if i > 0 {
			h.add(vec, words[i-1]+" "+word, 0.5)
		}
	}

	return vec
}

func (h *HashBackend) add(vec []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
