package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stemsi/exstem-prep/internal/model"
)

func TestSynthesizeShape(t *testing.T) {
	c := Synthesize(Options{Seeded: true, Seed: 7})

	if got := len(c.Modules()); got != ModuleCount {
		t.Fatalf("expected %d modules, got %d", ModuleCount, got)
	}

	seen := make(map[string]bool)
	for _, m := range c.Modules() {
		if len(m.Questions) != QuestionsPerModule {
			t.Errorf("module %s: expected %d questions, got %d", m.ID, QuestionsPerModule, len(m.Questions))
		}
		for _, q := range m.Questions {
			if seen[q.ID] {
				t.Errorf("duplicate question id %s", q.ID)
			}
			seen[q.ID] = true

			if q.CorrectOption < 0 || q.CorrectOption >= model.OptionCount {
				t.Errorf("question %s: correct option %d out of range", q.ID, q.CorrectOption)
			}
			if q.Options[q.CorrectOption] != templates[q.Category].Canonical {
				t.Errorf("question %s: correct slot %q is not the canonical answer", q.ID, q.Options[q.CorrectOption])
			}
		}
	}
}

func TestSynthesizeCyclesCategories(t *testing.T) {
	mods := Build(Options{Seeded: true, Seed: 1}, 2, len(model.Categories))

	for i, m := range mods {
		for j, q := range m.Questions {
			want := model.Categories[(i+j)%len(model.Categories)]
			if q.Category != want {
				t.Errorf("module %d question %d: expected %s, got %s", i, j, want, q.Category)
			}
		}
	}
}

func TestSeededCatalogIsReproducible(t *testing.T) {
	a := Build(Options{Seeded: true, Seed: 42}, 4, 12)
	b := Build(Options{Seeded: true, Seed: 42}, 4, 12)

	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical catalogs for the same seed")
	}

	c := Build(Options{Seeded: true, Seed: 43}, 4, 12)
	if reflect.DeepEqual(a, c) {
		t.Fatal("expected different catalogs for different seeds")
	}
}

func TestGet(t *testing.T) {
	c := Synthesize(Options{Seeded: true, Seed: 3})

	m, err := c.Get("mod-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "mod-05" {
		t.Errorf("expected mod-05, got %s", m.ID)
	}

	if _, err := c.Get("missing"); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestPaperHidesAnswers(t *testing.T) {
	c := Synthesize(Options{Seeded: true, Seed: 9})
	m, _ := c.Get("mod-01")

	paper := m.Paper()
	if len(paper.Questions) != len(m.Questions) {
		t.Fatalf("expected %d questions, got %d", len(m.Questions), len(paper.Questions))
	}
	if paper.QuestionCount != QuestionsPerModule {
		t.Errorf("expected question count %d, got %d", QuestionsPerModule, paper.QuestionCount)
	}
}
