package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService grades submissions and enforces the one-attempt rule.
// The pre-check catches the common case; the unique index on
// (quiz_id, student_id) catches the concurrent-submission race.
type AttemptService struct {
	QuizRepo     QuizStore
	QuestionRepo QuestionStore
	AttemptRepo  AttemptStore
}

func NewAttemptService(
	quizRepo QuizStore,
	questionRepo QuestionStore,
	attemptRepo AttemptStore,
) *AttemptService {
	return &AttemptService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
	}
}

type SubmittedAnswer struct {
	QuestionID     string `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer" binding:"required"`
}

type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required"`
}

// SubmitResult carries the persisted (or pre-existing) attempt.
// AlreadyAttempted marks the navigational "go to review" outcome
// rather than an error.
type SubmitResult struct {
	Attempt          *model.QuizAttempt `json:"attempt"`
	AlreadyAttempted bool               `json:"alreadyAttempted"`
}

func (s *AttemptService) Submit(student *model.User, quizID string, req SubmitAttemptRequest) (*SubmitResult, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if existing, err := s.AttemptRepo.FindByQuizAndStudent(quizID, student.ID); err == nil {
		return &SubmitResult{Attempt: existing, AlreadyAttempted: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", util.ErrInvalidInput)
	}

	score, records, err := gradeSubmission(questions, req.Answers)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		QuizID:         quizID,
		StudentID:      student.ID,
		Score:          score,
		TotalQuestions: len(questions),
		Answers:        answersJSON,
		CompletedAt:    time.Now(),
		StudentName:    student.Name,
		StudentEmail:   student.Email,
	}

	if err := s.AttemptRepo.Create(attempt); err != nil {
		// A concurrent submission that won the race trips the unique
		// index; fold it into the same already-attempted outcome.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.AttemptRepo.FindByQuizAndStudent(quizID, student.ID)
			if findErr != nil {
				return nil, findErr
			}
			return &SubmitResult{Attempt: existing, AlreadyAttempted: true}, nil
		}
		return nil, err
	}

	logger.Log.Info("attempt submitted",
		zap.String("quizId", quizID),
		zap.Uint("studentId", student.ID),
		zap.Int("score", score),
		zap.Int("total", len(questions)))
	return &SubmitResult{Attempt: attempt}, nil
}

// GetReview returns the student's own attempt for a quiz together with
// the answer snapshot taken at submission time.
func (s *AttemptService) GetReview(studentID uint, quizID string) (*model.QuizAttempt, []model.AttemptAnswer, error) {
	attempt, err := s.AttemptRepo.FindByQuizAndStudent(quizID, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	answers, err := attempt.AnswerList()
	if err != nil {
		return nil, nil, err
	}
	return attempt, answers, nil
}

func (s *AttemptService) ListStudentAttempts(studentID uint) ([]model.QuizAttempt, error) {
	return s.AttemptRepo.ListByStudent(studentID)
}

// gradeSubmission scores answers against the stored correct answers.
// Correctness is case-sensitive exact string equality; no partial
// credit, no normalization. Every question must be answered.
func gradeSubmission(questions []model.Question, answers []SubmittedAnswer) (int, []model.AttemptAnswer, error) {
	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, dup := selected[a.QuestionID]; dup {
			return 0, nil, fmt.Errorf("%w: duplicate answer for question %s", util.ErrInvalidInput, a.QuestionID)
		}
		selected[a.QuestionID] = a.SelectedAnswer
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for id := range selected {
		if !known[id] {
			return 0, nil, fmt.Errorf("%w: unknown question %s", util.ErrInvalidInput, id)
		}
	}

	score := 0
	records := make([]model.AttemptAnswer, len(questions))
	for i, q := range questions {
		answer, ok := selected[q.ID]
		if !ok || answer == "" {
			return 0, nil, util.ErrIncompleteSubmission
		}

		correct := answer == q.CorrectAnswer
		if correct {
			score++
		}
		records[i] = model.AttemptAnswer{
			QuestionID:     q.ID,
			SelectedAnswer: answer,
			Correct:        correct,
		}
	}
	return score, records, nil
}
