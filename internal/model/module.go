package model

// Module is one timed, fixed-length assessment.
// EstimatedMinutes and PassingScore are presentational only.
type Module struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Source           string     `json:"source"`
	Icon             string     `json:"icon"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	PassingScore     int        `json:"passing_score"`
	Questions        []Question `json:"questions"`
	Tags             []string   `json:"tags"`
	Tier             Difficulty `json:"tier"`
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (m *Module) QuestionIndex(questionID string) int {
	for i := range m.Questions {
		if m.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// HasQuestion reports whether questionID belongs to the module.
func (m *Module) HasQuestion(questionID string) bool {
	return m.QuestionIndex(questionID) >= 0
}

// ModuleSummary is the catalog listing entry for a module.
type ModuleSummary struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Source           string     `json:"source"`
	Icon             string     `json:"icon"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	PassingScore     int        `json:"passing_score"`
	QuestionCount    int        `json:"question_count"`
	Tags             []string   `json:"tags"`
	Tier             Difficulty `json:"tier"`
}

// ModulePaper is the candidate-facing payload (no correct answers).
type ModulePaper struct {
	ModuleSummary
	Questions []QuestionForCandidate `json:"questions"`
}

// Summary projects the module into its listing entry.
func (m *Module) Summary() ModuleSummary {
	return ModuleSummary{
		ID:               m.ID,
		Title:            m.Title,
		Source:           m.Source,
		Icon:             m.Icon,
		EstimatedMinutes: m.EstimatedMinutes,
		PassingScore:     m.PassingScore,
		QuestionCount:    len(m.Questions),
		Tags:             append([]string(nil), m.Tags...),
		Tier:             m.Tier,
	}
}

// Paper strips answers and explanations from the module.
func (m *Module) Paper() ModulePaper {
	qs := make([]QuestionForCandidate, len(m.Questions))
	for i, q := range m.Questions {
		qs[i] = QuestionForCandidate{
			ID:         q.ID,
			Category:   q.Category,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Prompt:     q.Prompt,
			Options:    q.Options,
		}
	}
	return ModulePaper{ModuleSummary: m.Summary(), Questions: qs}
}
