package service

import (
	"errors"
	"fmt"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     QuizStore
	QuestionRepo QuestionStore
	AttemptRepo  AttemptStore
}

func NewQuizService(
	quizRepo QuizStore,
	questionRepo QuestionStore,
	attemptRepo AttemptStore,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
	}
}

func (s *QuizService) GetQuiz(id string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return quiz, err
}

// QuizSummary is a quiz row annotated with its question count for the
// dashboard listings.
type QuizSummary struct {
	model.Quiz
	QuestionCount int64 `json:"questionCount"`
}

func (s *QuizService) summarize(quizzes []model.Quiz) ([]QuizSummary, error) {
	res := make([]QuizSummary, len(quizzes))
	for i, quiz := range quizzes {
		count, err := s.QuestionRepo.CountByQuiz(quiz.ID)
		if err != nil {
			return nil, err
		}
		res[i] = QuizSummary{Quiz: quiz, QuestionCount: count}
	}
	return res, nil
}

func (s *QuizService) ListQuizzes() ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListAll()
	if err != nil {
		return nil, err
	}
	return s.summarize(quizzes)
}

func (s *QuizService) ListProfessorQuizzes(professorID uint) ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListByProfessor(professorID)
	if err != nil {
		return nil, err
	}
	return s.summarize(quizzes)
}

// DeleteQuiz removes a quiz and everything hanging off it. There is no
// database-level cascade: attempts and questions are deleted first so a
// failure part-way never leaves dangling children without a parent.
func (s *QuizService) DeleteQuiz(professorID uint, quizID string) error {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return err
	}
	if quiz.ProfessorID != professorID {
		return util.ErrPermissionDenied
	}

	if err := s.AttemptRepo.DeleteByQuiz(quizID); err != nil {
		return err
	}
	if err := s.QuestionRepo.DeleteByQuiz(quizID); err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(quizID); err != nil {
		return err
	}

	logger.Log.Info("quiz deleted",
		zap.String("quizId", quizID),
		zap.Uint("professorId", professorID))
	return nil
}

// ListQuestions returns the full question rows, correct answers
// included. Professor-only: the caller must own the quiz.
func (s *QuizService) ListQuestions(professorID uint, quizID string) ([]model.Question, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.ProfessorID != professorID {
		return nil, util.ErrPermissionDenied
	}
	return s.QuestionRepo.ListByQuiz(quizID)
}

// StudentQuestion is the taking-flow view of a question: the correct
// answer never leaves the server.
type StudentQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	OrderNumber  int      `json:"orderNumber"`
}

func (s *QuizService) ListStudentQuestions(quizID string) ([]StudentQuestion, error) {
	if _, err := s.GetQuiz(quizID); err != nil {
		return nil, err
	}

	qs, err := s.QuestionRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	res := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		opts, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		res[i] = StudentQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      opts,
			OrderNumber:  q.OrderNumber,
		}
	}
	return res, nil
}

type UpdateQuestionRequest struct {
	QuestionText  string   `json:"questionText" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

func (s *QuizService) findOwnedQuestion(professorID uint, questionID string) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}

	quiz, err := s.GetQuiz(q.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz.ProfessorID != professorID {
		return nil, util.ErrPermissionDenied
	}
	return q, nil
}

// UpdateQuestion edits text, options, and the correct answer of one
// question. The option invariants from generation apply to edits too.
func (s *QuizService) UpdateQuestion(professorID uint, questionID string, req UpdateQuestionRequest) (*model.Question, error) {
	if err := validateQuestionEdit(req); err != nil {
		return nil, err
	}

	q, err := s.findOwnedQuestion(professorID, questionID)
	if err != nil {
		return nil, err
	}

	q.QuestionText = strings.TrimSpace(req.QuestionText)
	q.CorrectAnswer = req.CorrectAnswer
	if err := q.SetOptions(req.Options); err != nil {
		return nil, err
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) DeleteQuestion(professorID uint, questionID string) error {
	q, err := s.findOwnedQuestion(professorID, questionID)
	if err != nil {
		return err
	}
	return s.QuestionRepo.DeleteAndResequence(q)
}

func validateQuestionEdit(req UpdateQuestionRequest) error {
	if strings.TrimSpace(req.QuestionText) == "" {
		return fmt.Errorf("%w: question text is required", util.ErrInvalidInput)
	}
	if len(req.Options) != model.OptionsPerQuestion {
		return fmt.Errorf("%w: exactly %d options are required", util.ErrInvalidInput, model.OptionsPerQuestion)
	}

	seen := make(map[string]bool, len(req.Options))
	correctFound := false
	for _, opt := range req.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: options must not be empty", util.ErrInvalidInput)
		}
		if seen[opt] {
			return fmt.Errorf("%w: options must be distinct", util.ErrInvalidInput)
		}
		seen[opt] = true
		if opt == req.CorrectAnswer {
			correctFound = true
		}
	}
	if !correctFound {
		return fmt.Errorf("%w: correct answer must be one of the options", util.ErrInvalidInput)
	}
	return nil
}
