// Package metrics derives read-only performance analytics from live answers.
// Nothing here feeds back into scoring.
package metrics

import (
	"math"

	"github.com/stemsi/exstem-prep/internal/model"
)

// SamplePeriodSeconds is how often the answering speed is re-sampled.
const SamplePeriodSeconds = 30

// Snapshot is the derived performance view of a session.
type Snapshot struct {
	Speed             float64                `json:"speed"`
	Accuracy          int                    `json:"accuracy"`
	Answered          int                    `json:"answered"`
	Correct           int                    `json:"correct"`
	CategoryBreakdown map[model.Category]int `json:"category_breakdown"`
}

// Derive builds a snapshot. speed is the last value produced by a SpeedSampler.
func Derive(m *model.Module, answers map[string]int, speed float64) Snapshot {
	answered, correct := Tally(m, answers)
	return Snapshot{
		Speed:             speed,
		Accuracy:          accuracy(correct, answered),
		Answered:          answered,
		Correct:           correct,
		CategoryBreakdown: CategoryBreakdown(m, answers),
	}
}

// Tally counts answered questions and the correct ones among them.
func Tally(m *model.Module, answers map[string]int) (answered, correct int) {
	for _, q := range m.Questions {
		sel, ok := answers[q.ID]
		if !ok {
			continue
		}
		answered++
		if sel == q.CorrectOption {
			correct++
		}
	}
	return answered, correct
}

// Accuracy is the percentage of answered questions that are correct, 0 when none are answered.
func Accuracy(m *model.Module, answers map[string]int) int {
	return accuracy(Tally(m, answers))
}

func accuracy(correct, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(answered)))
}

// CategoryBreakdown returns percent correct per category over all of the
// category's questions. Categories absent from the module are omitted.
func CategoryBreakdown(m *model.Module, answers map[string]int) map[model.Category]int {
	totals := make(map[model.Category]int)
	correct := make(map[model.Category]int)
	for _, q := range m.Questions {
		totals[q.Category]++
		if sel, ok := answers[q.ID]; ok && sel == q.CorrectOption {
			correct[q.Category]++
		}
	}

	out := make(map[model.Category]int, len(totals))
	for c, n := range totals {
		out[c] = int(math.Round(100 * float64(correct[c]) / float64(n)))
	}
	return out
}

// Speed returns answers per minute rounded to one decimal.
func Speed(answered, elapsedSeconds int) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	perMinute := float64(answered) / (float64(elapsedSeconds) / 60)
	return math.Round(perMinute*10) / 10
}

// SpeedSampler holds the answering speed, updated only on sampling boundaries
// so that early-session values do not swing wildly.
type SpeedSampler struct {
	speed float64
}

// Observe re-samples the speed when elapsedSeconds falls on a sampling
// boundary and reports whether it did.
func (s *SpeedSampler) Observe(elapsedSeconds, answered int) bool {
	if elapsedSeconds <= 0 || elapsedSeconds%SamplePeriodSeconds != 0 {
		return false
	}
	s.speed = Speed(answered, elapsedSeconds)
	return true
}

// Speed returns the last sampled value.
func (s *SpeedSampler) Speed() float64 { return s.speed }

// Reset clears the sampled value.
func (s *SpeedSampler) Reset() { s.speed = 0 }
