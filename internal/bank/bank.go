// Package bank holds the question bank: an ordered, immutable list of rounds
// shared read-only across all rooms. Content is configuration — it can come
// from the embedded default, a JSON file, or Postgres (db.go).
package bank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

//go:embed questions.json
var defaultBank []byte

type Option struct {
	ID        string `json:"id"`
	Letter    string `json:"letter"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID              int      `json:"id"`
	Order           int      `json:"order"`
	Type            string   `json:"type"` // "normal" | "reduced" | "final"
	Text            string   `json:"text"`
	MaxOptionsToBet int      `json:"maxOptionsToBet"`
	Options         []Option `json:"options"`
}

// CorrectLetter returns the letter of the single correct option.
func (q Question) CorrectLetter() string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Letter
		}
	}
	return ""
}

func Default() ([]Question, error) {
	return parse(defaultBank)
}

func LoadFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Question, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := Validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// Validate enforces the bank invariants: non-empty, exactly one correct
// option per question, and a sane bet cap.
func Validate(qs []Question) error {
	if len(qs) == 0 {
		return errors.New("question bank is empty")
	}
	for _, q := range qs {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d: want exactly one correct option, have %d", q.ID, correct)
		}
		if q.MaxOptionsToBet < 1 || q.MaxOptionsToBet > len(q.Options) {
			return fmt.Errorf("question %d: maxOptionsToBet %d out of range", q.ID, q.MaxOptionsToBet)
		}
	}
	return nil
}
