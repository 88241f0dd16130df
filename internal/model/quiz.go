package model

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ProfessorID uint   `gorm:"index;type:bigint unsigned;not null" json:"professorId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	AIPrompt    string `gorm:"column:ai_prompt;type:text;not null" json:"aiPrompt"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
