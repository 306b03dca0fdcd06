package resume

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/resume-screener/internal/nlp"
	"github.com/spigell/resume-screener/internal/taxonomy"
	"github.com/spigell/resume-screener/internal/utils"
	"go.uber.org/zap"
)

// Step is a single extraction applied to the résumé text. Steps receive the
// full text, not the truncated copy kept in ParsedResume.RawText. A step
// writes its part of the result only when it succeeds.
type Step interface {
	Name() string
	IsEnabled(deps Deps) bool
	Apply(ctx context.Context, deps Deps, text string, doc *ParsedResume) (Stat, error)
}

// Deps aggregates the backends shared by all extraction steps. Recognizer
// and Classifier are optional.
type Deps struct {
	Logger     *zap.Logger
	Recognizer nlp.Recognizer
	Classifier nlp.Classifier
	Taxonomy   *taxonomy.Taxonomy
}

// Stat describes the outcome of a step.
type Stat struct {
	Found int
}

// Parser runs the extraction steps over résumé text.
type Parser struct {
	deps  Deps
	steps []Step
}

// DefaultSteps returns the extraction steps in execution order.
func DefaultSteps() []Step {
	return []Step{
		&namesStep{},
		&contactsStep{},
		&sectionsStep{},
		&entitiesStep{},
		&skillsStep{},
	}
}

// NewParser creates a parser. Nil steps select DefaultSteps and a nil
// taxonomy selects the built-in one.
func NewParser(deps Deps, steps []Step) *Parser {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Taxonomy == nil {
		deps.Taxonomy = taxonomy.Default()
	}
	if steps == nil {
		steps = DefaultSteps()
	}
	return &Parser{deps: deps, steps: steps}
}

// Parse extracts structured data from raw. It never fails: a step that errors
// leaves its part of the result empty and the remaining steps still run.
func (p *Parser) Parse(ctx context.Context, raw string) *ParsedResume {
	doc := newParsedResume(utils.Truncate(raw, MaxTextChars))

	for _, step := range p.steps {
		if !step.IsEnabled(p.deps) {
			p.deps.Logger.Debug("extraction step disabled", zap.String("name", step.Name()))
			continue
		}

		start := time.Now()
		stat, err := p.apply(ctx, step, raw, doc)
		if err != nil {
			p.deps.Logger.Warn("extraction step failed",
				zap.String("name", step.Name()),
				zap.Error(err),
			)
			continue
		}

		p.deps.Logger.Debug("extraction step",
			zap.String("name", step.Name()),
			zap.Int("found", stat.Found),
			zap.Duration("took", time.Since(start)),
		)
	}

	return doc
}

func (p *Parser) apply(ctx context.Context, step Step, text string, doc *ParsedResume) (stat Stat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return step.Apply(ctx, p.deps, text, doc)
}
