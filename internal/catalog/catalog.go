// Package catalog synthesizes the fixed set of assessment modules served to candidates.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/stemsi/exstem-prep/internal/model"
)

const (
	// ModuleCount is the number of modules in a synthesized catalog.
	ModuleCount = 28
	// QuestionsPerModule is the fixed length of every module.
	QuestionsPerModule = 12
)

// ErrModuleNotFound is returned when a module id is not part of the catalog.
var ErrModuleNotFound = errors.New("module not found")

// Options controls synthesis. Seeded catalogs are reproducible across processes.
type Options struct {
	Seeded bool
	Seed   uint64
}

// Catalog is the immutable, ordered set of modules.
type Catalog struct {
	modules []model.Module
	byID    map[string]int
}

// New wraps already-built modules into a Catalog.
func New(modules []model.Module) *Catalog {
	c := &Catalog{
		modules: modules,
		byID:    make(map[string]int, len(modules)),
	}
	for i := range modules {
		c.byID[modules[i].ID] = i
	}
	return c
}

// Synthesize builds the default catalog.
func Synthesize(opts Options) *Catalog {
	return New(Build(opts, ModuleCount, QuestionsPerModule))
}

// Build produces n modules of m questions each.
func Build(opts Options, n, m int) []model.Module {
	rng := newRand(opts)

	modules := make([]model.Module, 0, n)
	for i := 0; i < n; i++ {
		p := profiles[i%len(profiles)]
		id := fmt.Sprintf("mod-%02d", i+1)

		questions := make([]model.Question, 0, m)
		for j := 0; j < m; j++ {
			cat := model.Categories[(i+j)%len(model.Categories)]
			questions = append(questions, buildQuestion(rng, fmt.Sprintf("%s-q%02d", id, j+1), cat))
		}

		modules = append(modules, model.Module{
			ID:               id,
			Title:            fmt.Sprintf("%s #%d", p.Label, i/len(profiles)+1),
			Source:           p.Label,
			Icon:             p.Icon,
			EstimatedMinutes: p.Minutes,
			PassingScore:     passingScores[p.Tier],
			Questions:        questions,
			Tags:             append([]string(nil), p.Tags...),
			Tier:             p.Tier,
		})
	}
	return modules
}

func buildQuestion(rng *rand.Rand, id string, cat model.Category) model.Question {
	t := templates[cat]

	args := make([]any, len(t.Params))
	for k, r := range t.Params {
		args[k] = r.Min + rng.IntN(r.Max-r.Min+1)
	}

	options := t.Options
	correct := rng.IntN(model.OptionCount)
	options[correct] = t.Canonical

	return model.Question{
		ID:            id,
		Category:      cat,
		Topic:         t.Topics[rng.IntN(len(t.Topics))],
		Difficulty:    difficulties[rng.IntN(len(difficulties))],
		Prompt:        fmt.Sprintf(t.Prompt, args...),
		Options:       options,
		CorrectOption: correct,
		Explanation:   t.Explanation,
		Tips:          append([]string(nil), t.Tips...),
	}
}

func newRand(opts Options) *rand.Rand {
	if opts.Seeded {
		return rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Modules returns the catalog in order. The slice must not be modified.
func (c *Catalog) Modules() []model.Module {
	return c.modules
}

// Get returns the module with the given id.
func (c *Catalog) Get(id string) (*model.Module, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("get module %q: %w", id, ErrModuleNotFound)
	}
	return &c.modules[i], nil
}

// Summaries lists every module without its questions.
func (c *Catalog) Summaries() []model.ModuleSummary {
	out := make([]model.ModuleSummary, len(c.modules))
	for i := range c.modules {
		out[i] = c.modules[i].Summary()
	}
	return out
}
