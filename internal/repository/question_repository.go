package repository

import (
	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) CreateBatch(questions []model.Question) error {
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("id = ?", id).First(&q).Error
	return &q, err
}

func (r *QuestionRepository) ListByQuiz(quizID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("order_number asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) CountByQuiz(quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

// DeleteAndResequence removes the question and renumbers the survivors
// so order_number stays 1-based and contiguous.
func (r *QuestionRepository) DeleteAndResequence(question *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", question.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}

		var remaining []model.Question
		if err := tx.Where("quiz_id = ?", question.QuizID).
			Order("order_number asc").
			Find(&remaining).Error; err != nil {
			return err
		}

		for i := range remaining {
			want := i + 1
			if remaining[i].OrderNumber == want {
				continue
			}
			if err := tx.Model(&model.Question{}).
				Where("id = ?", remaining[i].ID).
				Update("order_number", want).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuestionRepository) DeleteByQuiz(quizID string) error {
	return r.DB.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error
}
