package supply

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizarena/internal/quiz"
)

// bankFile is the on-disk layout of a question bank:
//
//	sets:
//	  - subject: science
//	    topic: planets
//	    questions:
//	      - id: sci-1
//	        kind: multiple_choice
//	        prompt: Which planet is largest?
//	        options: [{id: a, label: Jupiter}, {id: b, label: Mars}]
//	        correct_option_id: a
type bankFile struct {
	Sets []struct {
		Subject   string          `yaml:"subject"`
		Topic     string          `yaml:"topic"`
		Questions []quiz.Question `yaml:"questions"`
	} `yaml:"sets"`
}

// LoadBank reads a YAML question bank. Unknown keys and invalid questions
// are errors; a bank is authored by hand and should fail loudly.
func LoadBank(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()

	bank, err := ReadBank(f)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return bank, nil
}

// ReadBank parses a YAML question bank from r.
func ReadBank(r io.Reader) (*Static, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file bankFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bank := NewStatic()
	for i, set := range file.Sets {
		if set.Subject == "" {
			return nil, fmt.Errorf("set %d: subject is required", i)
		}
		if err := quiz.ValidateBatch(set.Questions); err != nil {
			return nil, fmt.Errorf("set %d (%s/%s): %w", i, set.Subject, set.Topic, err)
		}
		bank.Add(set.Subject, set.Topic, set.Questions...)
	}
	return bank, nil
}
