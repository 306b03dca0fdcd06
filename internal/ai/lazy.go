package ai

import (
	"context"
	"errors"

	"github.com/spigell/resume-screener/internal/lazy"
)

type lazyGenerator struct {
	model string
	value *lazy.Value[Generator]
}

// Lazy returns a generator that is built on its first call and shared
// afterwards. A failed build is reported as a generation error and retried
// on the next call.
func Lazy(model string, build func(ctx context.Context) (Generator, error)) Generator {
	return &lazyGenerator{model: model, value: lazy.New(build)}
}

func (l *lazyGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	gen, err := l.value.Get(ctx)
	if err != nil {
		return "", err
	}
	if gen == nil {
		return "", errors.New("generator was not created")
	}
	return gen.GenerateContent(ctx, prompt)
}

func (l *lazyGenerator) Model() string {
	return l.model
}
