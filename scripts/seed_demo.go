// Seed demo accounts for local development.
//
// Creates one professor and two student accounts so the frontend can be
// exercised without going through registration first. Safe to re-run:
// existing emails are skipped.
//
// Usage: go run scripts/seed_demo.go
package main

import (
	"errors"
	"log"
	"os"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/pkg/database"
	"quizcraft_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	users := []model.User{
		{Name: "Demo Professor", Email: "professor@demo.local", Password: "professor123", Role: model.Professor},
		{Name: "Demo Student", Email: "student@demo.local", Password: "student123", Role: model.Student},
		{Name: "Second Student", Email: "student2@demo.local", Password: "student123", Role: model.Student},
	}

	userRepo := repository.NewUserRepository(db)
	for _, u := range users {
		if _, err := userRepo.FindByEmail(u.Email); err == nil {
			log.Printf("skipping %s, already exists", u.Email)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("failed to look up %s: %v", u.Email, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u.Password = string(hashed)

		if err := userRepo.Create(&u); err != nil {
			log.Fatalf("failed to create %s: %v", u.Email, err)
		}
		log.Printf("created %s (%s)", u.Email, u.Role)
	}

	log.Println("Done.")
}
