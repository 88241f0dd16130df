package model

type UserRole string

const (
	Student   UserRole = "student"
	Professor UserRole = "professor"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','professor');default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
