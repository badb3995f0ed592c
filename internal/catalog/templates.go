package catalog

import "github.com/stemsi/exstem-prep/internal/model"

// paramRange bounds one numeric placeholder in a prompt template (inclusive).
type paramRange struct {
	Min, Max int
}

// questionTemplate produces the text of every question in a category.
// Options are fixed; the canonical answer overwrites the randomly chosen
// correct slot and is never computed from the sampled parameters.
type questionTemplate struct {
	Prompt      string
	Params      []paramRange
	Topics      []string
	Options     [model.OptionCount]string
	Canonical   string
	Explanation string
	Tips        []string
}

// profile is one row of the rotating organization table.
type profile struct {
	Label   string
	Icon    string
	Minutes int
	Tags    []string
	Tier    model.Difficulty
}

var templates = map[model.Category]questionTemplate{
	model.CategoryQuantitative: {
		Prompt:      "A train covers %d km in %d hours. What is its average speed?",
		Params:      []paramRange{{120, 480}, {2, 8}},
		Topics:      []string{"Speed and Distance", "Ratios", "Averages"},
		Options:     [model.OptionCount]string{"40 km/h", "55 km/h", "72 km/h", "90 km/h"},
		Canonical:   "60 km/h",
		Explanation: "Average speed is total distance divided by total time.",
		Tips:        []string{"Convert units before dividing.", "Estimate first to rule out distractors."},
	},
	model.CategoryLogical: {
		Prompt:      "In a row of %d people, Asha is %dth from the left. What is her position from the right?",
		Params:      []paramRange{{20, 60}, {3, 19}},
		Topics:      []string{"Seating Arrangement", "Ranking", "Series"},
		Options:     [model.OptionCount]string{"12th", "17th", "21st", "26th"},
		Canonical:   "18th",
		Explanation: "Position from right equals total minus position from left plus one.",
		Tips:        []string{"Draw the row when in doubt."},
	},
	model.CategoryVerbal: {
		Prompt:      "Choose the word closest in meaning to the highlighted word in passage %d, line %d.",
		Params:      []paramRange{{1, 9}, {1, 30}},
		Topics:      []string{"Synonyms", "Reading Comprehension", "Sentence Correction"},
		Options:     [model.OptionCount]string{"Obscure", "Fragile", "Hostile", "Lenient"},
		Canonical:   "Ephemeral",
		Explanation: "The context describes something that lasts a very short time.",
	},
	model.CategoryDataInterpretation: {
		Prompt:      "Sales rose from %d units to %d units. What is the percentage increase?",
		Params:      []paramRange{{200, 500}, {510, 900}},
		Topics:      []string{"Bar Charts", "Percentages", "Tables"},
		Options:     [model.OptionCount]string{"12%", "18%", "33%", "45%"},
		Canonical:   "25%",
		Explanation: "Percentage increase is (new - old) / old x 100.",
		Tips:        []string{"Read the axis labels twice."},
	},
	model.CategoryProgramming: {
		Prompt:      "What does a loop print when it runs from 0 to %d with step %d and prints the counter?",
		Params:      []paramRange{{5, 20}, {1, 4}},
		Topics:      []string{"Loops", "Recursion", "Output Prediction"},
		Options:     [model.OptionCount]string{"Nothing", "An infinite sequence", "Only the last value", "A compile error"},
		Canonical:   "Every counter value in order",
		Explanation: "The loop body prints the counter on each iteration before incrementing.",
	},
	model.CategoryDataStructures: {
		Prompt:      "A binary search runs over a sorted array of %d elements. What is the worst-case number of comparisons for %d lookups?",
		Params:      []paramRange{{64, 4096}, {1, 10}},
		Topics:      []string{"Searching", "Trees", "Complexity"},
		Options:     [model.OptionCount]string{"O(n)", "O(n log n)", "O(1)", "O(n^2)"},
		Canonical:   "O(log n) per lookup",
		Explanation: "Binary search halves the remaining range on every comparison.",
		Tips:        []string{"Count how many times the range can be halved."},
	},
	model.CategoryNetworking: {
		Prompt:      "A subnet uses a /%d prefix. How many usable hosts remain after reserving %d addresses for routers?",
		Params:      []paramRange{{22, 29}, {1, 3}},
		Topics:      []string{"Subnetting", "OSI Model", "TCP/IP"},
		Options:     [model.OptionCount]string{"30", "62", "126", "254"},
		Canonical:   "2^(32-prefix) - 2 - routers",
		Explanation: "Network and broadcast addresses are never assignable to hosts.",
	},
	model.CategoryDatabases: {
		Prompt:      "A table has %d rows and an index on a column with %d distinct values. Which normal form removes transitive dependencies?",
		Params:      []paramRange{{1000, 90000}, {2, 50}},
		Topics:      []string{"Normalization", "Indexing", "SQL Joins"},
		Options:     [model.OptionCount]string{"1NF", "2NF", "BCNF", "4NF"},
		Canonical:   "3NF",
		Explanation: "Third normal form removes transitive dependencies on the key.",
		Tips:        []string{"List the functional dependencies first."},
	},
}

var profiles = []profile{
	{Label: "Service Major Mock", Icon: "building", Minutes: 45, Tags: []string{"aptitude", "mass-hiring"}, Tier: model.DifficultyEasy},
	{Label: "Product Company Screen", Icon: "rocket", Minutes: 60, Tags: []string{"coding", "product"}, Tier: model.DifficultyHard},
	{Label: "Consulting Aptitude", Icon: "briefcase", Minutes: 40, Tags: []string{"aptitude", "verbal"}, Tier: model.DifficultyMedium},
	{Label: "Fintech Technical Round", Icon: "chart", Minutes: 50, Tags: []string{"technical", "databases"}, Tier: model.DifficultyHard},
	{Label: "Startup Generalist", Icon: "sparkles", Minutes: 35, Tags: []string{"mixed"}, Tier: model.DifficultyMedium},
	{Label: "Campus Drive Practice", Icon: "graduation", Minutes: 30, Tags: []string{"aptitude", "campus"}, Tier: model.DifficultyEasy},
	{Label: "Infrastructure Engineer Test", Icon: "server", Minutes: 55, Tags: []string{"networking", "technical"}, Tier: model.DifficultyHard},
}

var difficulties = []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}

// passingScores maps a tier to its advisory pass mark (percent).
var passingScores = map[model.Difficulty]int{
	model.DifficultyEasy:   60,
	model.DifficultyMedium: 65,
	model.DifficultyHard:   70,
}
