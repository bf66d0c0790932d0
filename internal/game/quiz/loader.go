package quiz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bananopoly/backend/internal/game/board"
)

// yamlBankFile is the top-level YAML structure for question bank files.
type yamlBankFile struct {
	Questions []yamlQuestion `yaml:"questions"`
}

// yamlQuestion is the YAML representation of a question.
type yamlQuestion struct {
	Level   string   `yaml:"level"`
	Text    string   `yaml:"text"`
	Options []string `yaml:"options"`
	Correct int      `yaml:"correct"`
}

// LoadBankFromFile reads and validates a question bank YAML file.
//
// Precondition: path must point to a valid YAML bank file.
// Postcondition: Returns a validated Bank or a non-nil error.
func LoadBankFromFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank %s: %w", path, err)
	}
	return LoadBankFromBytes(data)
}

// LoadBankFromBytes parses and validates a question bank from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the bank schema.
// Postcondition: Returns a validated Bank or a non-nil error.
func LoadBankFromBytes(data []byte) (*Bank, error) {
	var file yamlBankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing question bank YAML: %w", err)
	}

	questions := make([]Question, 0, len(file.Questions))
	for _, yq := range file.Questions {
		questions = append(questions, Question{
			Text:         yq.Text,
			Options:      yq.Options,
			CorrectIndex: yq.Correct,
			Level:        board.Level(yq.Level),
		})
	}

	bank, err := NewBank(questions)
	if err != nil {
		return nil, fmt.Errorf("validating question bank: %w", err)
	}
	return bank, nil
}
