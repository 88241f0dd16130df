package service

import "quizcraft_backend/internal/model"

// Store interfaces cover exactly the repository surface the services
// touch. The concrete repositories in internal/repository satisfy them.

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
}

type QuizStore interface {
	Create(quiz *model.Quiz) error
	FindByID(id string) (*model.Quiz, error)
	ListByProfessor(professorID uint) ([]model.Quiz, error)
	ListAll() ([]model.Quiz, error)
	Delete(id string) error
}

type QuestionStore interface {
	CreateBatch(questions []model.Question) error
	FindByID(id string) (*model.Question, error)
	ListByQuiz(quizID string) ([]model.Question, error)
	CountByQuiz(quizID string) (int64, error)
	Update(question *model.Question) error
	DeleteAndResequence(question *model.Question) error
	DeleteByQuiz(quizID string) error
}

type AttemptStore interface {
	Create(attempt *model.QuizAttempt) error
	FindByQuizAndStudent(quizID string, studentID uint) (*model.QuizAttempt, error)
	ListByQuiz(quizID string) ([]model.QuizAttempt, error)
	ListByStudent(studentID uint) ([]model.QuizAttempt, error)
	DeleteByQuiz(quizID string) error
}
