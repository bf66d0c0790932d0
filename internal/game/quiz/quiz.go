// Package quiz provides the level-tagged question bank that gates property
// purchases.
package quiz

import (
	"fmt"

	"github.com/bananopoly/backend/internal/game/board"
	"github.com/bananopoly/backend/internal/game/dice"
)

// Question is one purchase-confirmation question.
//
// Invariant: CorrectIndex is a valid index into Options; Level names a
// property tier.
type Question struct {
	Text         string      `json:"text"`
	Options      []string    `json:"options"`
	CorrectIndex int         `json:"correctIndex"`
	Level        board.Level `json:"level"`
}

// Validate checks the question invariants.
//
// Postcondition: Returns nil if the question is well-formed.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text must not be empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q must have at least 2 options, got %d", q.Text, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %q correct index %d out of range [0, %d)", q.Text, q.CorrectIndex, len(q.Options))
	}
	if !q.Level.Valid() || q.Level == board.LevelCorner {
		return fmt.Errorf("question %q has invalid level %q", q.Text, q.Level)
	}
	return nil
}

// Bank holds an ordered list of questions across all tiers.
type Bank struct {
	questions []Question
}

// NewBank creates a Bank from the given questions.
//
// Precondition: every question must pass Validate; the list must not be empty.
// Postcondition: Returns a Bank or a non-nil error.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank must not be empty")
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return &Bank{questions: questions}, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Pick selects uniformly at random among questions matching level. When no
// question matches, the bank's first question is returned as the fixed
// fallback.
//
// Precondition: src must be non-nil.
func (b *Bank) Pick(level board.Level, src dice.Source) Question {
	var matching []Question
	for _, q := range b.questions {
		if q.Level == level {
			matching = append(matching, q)
		}
	}
	if len(matching) == 0 {
		return b.questions[0]
	}
	return matching[src.Intn(len(matching))]
}

// DefaultBank returns the built-in question bank used when no content file is
// configured.
func DefaultBank() *Bank {
	bank, err := NewBank(defaultQuestions)
	if err != nil {
		panic("quiz: built-in question bank invalid: " + err.Error())
	}
	return bank
}

var defaultQuestions = []Question{
	{
		Level:        board.LevelEasy,
		Text:         "What does HTML stand for?",
		Options:      []string{"HyperText Markup Language", "HighTech Modern Language", "Hyperlink Text Mode"},
		CorrectIndex: 0,
	},
	{
		Level:        board.LevelEasy,
		Text:         "Which of these is a primitive type in JavaScript?",
		Options:      []string{"Object", "String", "Array"},
		CorrectIndex: 1,
	},
	{
		Level:        board.LevelEasy,
		Text:         "Which HTTP method is conventionally used to fetch a resource?",
		Options:      []string{"POST", "DELETE", "GET"},
		CorrectIndex: 2,
	},
	{
		Level:        board.LevelMedium,
		Text:         "What is the difference between == and === in JavaScript?",
		Options:      []string{"None", "== compares value, === compares value and type", "=== is only for strings"},
		CorrectIndex: 1,
	},
	{
		Level:        board.LevelMedium,
		Text:         "How do you declare a variable that cannot be reassigned?",
		Options:      []string{"var", "let", "const"},
		CorrectIndex: 2,
	},
	{
		Level:        board.LevelMedium,
		Text:         "Which status code signals a resource was not found?",
		Options:      []string{"404", "200", "500"},
		CorrectIndex: 0,
	},
	{
		Level:        board.LevelHard,
		Text:         "What does useMemo do in React?",
		Options:      []string{"Memoizes a component", "Memoizes a computed value", "Runs code after render"},
		CorrectIndex: 1,
	},
	{
		Level:        board.LevelHard,
		Text:         "Which data structure backs a typical LRU cache?",
		Options:      []string{"Hash map plus doubly linked list", "Binary heap", "Sorted array"},
		CorrectIndex: 0,
	},
	{
		Level:        board.LevelExtreme,
		Text:         "What is the Big O complexity of binary search?",
		Options:      []string{"O(n)", "O(log n)", "O(n^2)"},
		CorrectIndex: 1,
	},
	{
		Level:        board.LevelExtreme,
		Text:         "Which consistency model do most distributed caches offer by default?",
		Options:      []string{"Strict serializability", "Eventual consistency", "Linearizability"},
		CorrectIndex: 1,
	},
}
