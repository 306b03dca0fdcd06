// Package embedding turns texts into unit-length vectors and compares them.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-screener/internal/lazy"
	"go.uber.org/zap"
)

const probeText = "dimension probe"

// Backend produces raw, not necessarily normalized, vectors for texts.
type Backend interface {
	Name() string
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Service wraps a backend and guarantees unit-length output.
type Service struct {
	backend Backend
	logger  *zap.Logger
	dims    *lazy.Value[int]
}

// NewService creates a service over backend. A positive dims fixes the
// vector size; otherwise it is learned from the backend on first need.
func NewService(backend Backend, dims int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{backend: backend, logger: logger}
	s.dims = lazy.New(func(ctx context.Context) (int, error) {
		if dims > 0 {
			return dims, nil
		}
		vectors, err := backend.EmbedTexts(ctx, []string{probeText})
		if err != nil {
			return 0, fmt.Errorf("probe %s dimensions: %w", backend.Name(), err)
		}
		if len(vectors) != 1 || len(vectors[0]) == 0 {
			return 0, fmt.Errorf("probe %s dimensions: empty embedding", backend.Name())
		}
		logger.Debug("embedding dimensions probed",
			zap.String("backend", backend.Name()),
			zap.Int("dimensions", len(vectors[0])),
		)
		return len(vectors[0]), nil
	})

	return s
}

// Dimensions returns the size of vectors produced by the service.
func (s *Service) Dimensions(ctx context.Context) (int, error) {
	return s.dims.Get(ctx)
}

// Embed returns the unit-length embedding of text. Blank text yields a zero
// vector without calling the backend for it; a zero vector from the backend is
// returned unchanged.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in order, applying the same rules as Embed to every row.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	pending := make([]string, 0, len(texts))
	index := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pending = append(pending, text)
		index = append(index, i)
	}

	dims := 0
	if len(pending) > 0 {
		vectors, err := s.backend.EmbedTexts(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("%s embeddings: %w", s.backend.Name(), err)
		}
		if len(vectors) != len(pending) {
			return nil, fmt.Errorf("%s embeddings: got %d vectors for %d texts", s.backend.Name(), len(vectors), len(pending))
		}
		for j, vec := range vectors {
			if len(vec) == 0 {
				return nil, fmt.Errorf("%s embeddings: empty vector for text #%d", s.backend.Name(), index[j]+1)
			}
			if dims == 0 {
				dims = len(vec)
			}
			out[index[j]] = Normalize(vec)
		}
	}

	if len(pending) < len(texts) {
		if dims == 0 {
			var err error
			dims, err = s.Dimensions(ctx)
			if err != nil {
				return nil, err
			}
		}
		for i := range out {
			if out[i] == nil {
				out[i] = make([]float64, dims)
			}
		}
	}

	return out, nil
}

// Normalize scales vec to unit length in place and returns it. A zero vector
// is returned as is.
func Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// ErrDimensionMismatch is reported by CosineStrict for vectors of different sizes.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Cosine returns the cosine similarity of a and b, or 0 when either vector is
// missing, their sizes differ or one of them has zero length.
func Cosine(a, b []float64) float64 {
	sim, err := CosineStrict(a, b)
	if err != nil {
		return 0
	}
	return sim
}

// CosineStrict is Cosine with the size mismatch reported as an error.
func CosineStrict(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0, nil
	}

	return dot / denom, nil
}
