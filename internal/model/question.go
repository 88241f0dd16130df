package model

import "encoding/json"

// Every generated quiz has exactly QuestionsPerQuiz questions with
// OptionsPerQuestion options each.
const (
	QuestionsPerQuiz   = 5
	OptionsPerQuestion = 4
)

// Question is one multiple-choice question of a quiz. Options holds a
// JSON array of exactly OptionsPerQuestion strings; CorrectAnswer must
// equal one of them. OrderNumber is 1-based and contiguous per quiz.
// swagger:model Question
type Question struct {
	UUIDBase
	QuizID        string          `gorm:"index;type:varchar(36);not null" json:"quizId"`
	QuestionText  string          `gorm:"type:text;not null" json:"questionText"`
	Options       json.RawMessage `gorm:"type:json" json:"options"`
	CorrectAnswer string          `gorm:"type:text;not null" json:"correctAnswer"`
	OrderNumber   int             `gorm:"not null" json:"orderNumber"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored JSON option array.
func (q *Question) OptionList() ([]string, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (q *Question) SetOptions(opts []string) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = raw
	return nil
}
