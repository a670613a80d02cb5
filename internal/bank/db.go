package bank

import (
	"fmt"
	"sort"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type questionRow struct {
	ID              int    `gorm:"primaryKey"`
	Ord             int    `gorm:"column:ord"`
	Kind            string `gorm:"column:kind"`
	Text            string
	MaxOptionsToBet int
	Options         []optionRow `gorm:"foreignKey:QuestionID"`
}

func (questionRow) TableName() string { return "questions" }

type optionRow struct {
	ID         int `gorm:"primaryKey"`
	QuestionID int
	Letter     string
	Text       string
	IsCorrect  bool
}

func (optionRow) TableName() string { return "question_options" }

// LoadDB reads the bank from Postgres once at startup. Game state is never
// written back; the database is a content source only.
func LoadDB(dsn string) ([]Question, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect question db: %w", err)
	}

	var rows []questionRow
	if err := db.Preload("Options").Order("ord").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	qs := make([]Question, 0, len(rows))
	for _, r := range rows {
		sort.Slice(r.Options, func(i, j int) bool { return r.Options[i].Letter < r.Options[j].Letter })
		q := Question{
			ID:              r.ID,
			Order:           r.Ord,
			Type:            r.Kind,
			Text:            r.Text,
			MaxOptionsToBet: r.MaxOptionsToBet,
		}
		for _, o := range r.Options {
			q.Options = append(q.Options, Option{ID: o.Letter, Letter: o.Letter, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		qs = append(qs, q)
	}
	if err := Validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}
