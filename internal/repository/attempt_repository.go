package repository

import (
	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByQuizAndStudent(quizID string, studentID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(&attempt).Error
	return &attempt, err
}

// ListByQuiz returns attempts in leaderboard order: score descending,
// ties broken by submission time.
func (r *AttemptRepository) ListByQuiz(quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("score desc, completed_at asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByStudent(studentID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("student_id = ?", studentID).
		Order("completed_at desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) DeleteByQuiz(quizID string) error {
	return r.DB.Where("quiz_id = ?", quizID).Delete(&model.QuizAttempt{}).Error
}
