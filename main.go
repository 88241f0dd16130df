// @title QuizCraft API
// @version 1.0
// @description Backend server for the QuizCraft AI quiz platform.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"quizcraft_backend/internal/app"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/pkg/configwatcher"
	"quizcraft_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "force database migrations on startup (even in release mode)")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
