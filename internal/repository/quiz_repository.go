package repository

import (
	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("id = ?", id).First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) ListByProfessor(professorID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("professor_id = ?", professorID).
		Order("created_at desc").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Quiz{}).Error
}
