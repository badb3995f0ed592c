package metrics

import (
	"testing"

	"github.com/stemsi/exstem-prep/internal/model"
)

func testModule() *model.Module {
	return &model.Module{
		ID: "m",
		Questions: []model.Question{
			{ID: "q1", Category: model.CategoryQuantitative, CorrectOption: 0},
			{ID: "q2", Category: model.CategoryQuantitative, CorrectOption: 1},
			{ID: "q3", Category: model.CategoryLogical, CorrectOption: 2},
			{ID: "q4", Category: model.CategoryVerbal, CorrectOption: 3},
		},
	}
}

func TestAccuracyUsesAnsweredDenominator(t *testing.T) {
	m := testModule()

	if got := Accuracy(m, map[string]int{}); got != 0 {
		t.Errorf("expected 0 with no answers, got %d", got)
	}

	// 2 answered, 1 correct → 50, even though 4 questions exist.
	if got := Accuracy(m, map[string]int{"q1": 0, "q2": 3}); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}

	if got := Accuracy(m, map[string]int{"q1": 0, "q2": 1, "q3": 0}); got != 67 {
		t.Errorf("expected 67, got %d", got)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	m := testModule()

	got := CategoryBreakdown(m, map[string]int{"q1": 0, "q3": 2})

	want := map[model.Category]int{
		model.CategoryQuantitative: 50,
		model.CategoryLogical:      100,
		model.CategoryVerbal:       0,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d: %v", len(want), len(got), got)
	}
	for c, v := range want {
		if got[c] != v {
			t.Errorf("category %s: expected %d, got %d", c, v, got[c])
		}
	}
	if _, ok := got[model.CategoryDatabases]; ok {
		t.Error("absent categories must be omitted")
	}
}

func TestSpeedSampler(t *testing.T) {
	var s SpeedSampler

	if s.Observe(10, 3) {
		t.Error("expected no sample off the boundary")
	}
	if s.Speed() != 0 {
		t.Errorf("expected 0 before first sample, got %v", s.Speed())
	}

	if !s.Observe(30, 2) {
		t.Fatal("expected sample at 30s")
	}
	if s.Speed() != 4 {
		t.Errorf("expected 4.0 answers/min, got %v", s.Speed())
	}

	s.Observe(45, 9)
	if s.Speed() != 4 {
		t.Errorf("expected speed to hold between samples, got %v", s.Speed())
	}

	s.Observe(90, 5)
	if s.Speed() != 3.3 {
		t.Errorf("expected 3.3 answers/min, got %v", s.Speed())
	}
}

func TestBandFor(t *testing.T) {
	testCases := []struct {
		percent float64
		want    Band
	}{
		{100, BandExceptional},
		{90, BandExceptional},
		{89.9, BandStrong},
		{75, BandStrong},
		{74.9, BandCompetent},
		{60, BandCompetent},
		{59.9, BandNeedsImprovement},
		{0, BandNeedsImprovement},
	}

	for _, tc := range testCases {
		if got := BandFor(tc.percent); got != tc.want {
			t.Errorf("BandFor(%v): expected %s, got %s", tc.percent, tc.want, got)
		}
	}
}
