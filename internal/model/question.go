package model

// Category enumerates the eight question categories used by the catalog.
type Category string

const (
	CategoryQuantitative       Category = "QUANTITATIVE"
	CategoryLogical            Category = "LOGICAL"
	CategoryVerbal             Category = "VERBAL"
	CategoryDataInterpretation Category = "DATA_INTERPRETATION"
	CategoryProgramming        Category = "PROGRAMMING"
	CategoryDataStructures     Category = "DATA_STRUCTURES"
	CategoryNetworking         Category = "NETWORKING"
	CategoryDatabases          Category = "DATABASES"
)

// Categories lists every category in catalog cycling order.
var Categories = []Category{
	CategoryQuantitative,
	CategoryLogical,
	CategoryVerbal,
	CategoryDataInterpretation,
	CategoryProgramming,
	CategoryDataStructures,
	CategoryNetworking,
	CategoryDatabases,
}

// Difficulty enumerates question difficulty and module tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// OptionCount is the fixed number of options on every question.
const OptionCount = 4

// Question represents a single multiple-choice assessment question.
type Question struct {
	ID            string              `json:"id"`
	Category      Category            `json:"category"`
	Topic         string              `json:"topic"`
	Difficulty    Difficulty          `json:"difficulty"`
	Prompt        string              `json:"prompt"`
	Options       [OptionCount]string `json:"options"`
	CorrectOption int                 `json:"correct_option"`
	Explanation   string              `json:"explanation"`
	Tips          []string            `json:"tips,omitempty"`
}

// QuestionForCandidate is a question without the correct answer, sent to the client.
type QuestionForCandidate struct {
	ID         string              `json:"id"`
	Category   Category            `json:"category"`
	Topic      string              `json:"topic"`
	Difficulty Difficulty          `json:"difficulty"`
	Prompt     string              `json:"prompt"`
	Options    [OptionCount]string `json:"options"`
}
