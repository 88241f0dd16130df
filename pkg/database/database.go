package database

import (
	"fmt"
	"log"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	// TranslateError lets the attempt service detect the (quiz_id, student_id)
	// unique-index violation as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Quiz{},
			&model.Question{},
			&model.QuizAttempt{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	return db, nil
}
