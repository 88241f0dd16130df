package model

import (
	"encoding/json"
	"time"
)

// AttemptAnswer is the per-question snapshot stored with an attempt.
// It records what the student picked at submission time, so later
// question edits do not rewrite history.
type AttemptAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	Correct        bool   `json:"correct"`
}

// QuizAttempt is one student's single graded submission for one quiz.
// The composite unique index on (quiz_id, student_id) enforces the
// one-attempt rule even under concurrent submissions.
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID         string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_student" json:"quizId"`
	StudentID      uint            `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_quiz_student" json:"studentId"`
	Score          int             `gorm:"not null" json:"score"`
	TotalQuestions int             `gorm:"not null" json:"totalQuestions"`
	Answers        json.RawMessage `gorm:"type:json" json:"answers"`
	CompletedAt    time.Time       `json:"completedAt"`
	StudentName    string          `gorm:"size:100" json:"studentName"`
	StudentEmail   string          `gorm:"size:100" json:"studentEmail"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AnswerList decodes the stored answer snapshot.
func (a *QuizAttempt) AnswerList() ([]AttemptAnswer, error) {
	var answers []AttemptAnswer
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// Percentage is the integer-rounded score percentage.
func (a *QuizAttempt) Percentage() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return int(float64(a.Score)/float64(a.TotalQuestions)*100 + 0.5)
}
