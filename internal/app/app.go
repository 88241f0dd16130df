package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/controller"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/pkg/database"
	"quizcraft_backend/pkg/logger"
	"quizcraft_backend/pkg/monitoring"
	"quizcraft_backend/pkg/security"
	"quizcraft_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	quiz     *repository.QuizRepository
	question *repository.QuestionRepository
	attempt  *repository.AttemptRepository
}

type services struct {
	auth        *service.AuthService
	ai          *service.AIService
	generation  *service.GenerationService
	quiz        *service.QuizService
	attempt     *service.AttemptService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth        *controller.AuthController
	quiz        *controller.QuizController
	question    *controller.QuestionController
	attempt     *controller.AttemptController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig pushes a hot-reloaded config into the running services.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		quiz:     repository.NewQuizRepository(db),
		question: repository.NewQuestionRepository(db),
		attempt:  repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.ai = service.NewAIService(cfg.AI)
	s.generation = service.NewGenerationService(
		repos.quiz,
		repos.question,
		s.ai,
		rdb,
		time.Duration(cfg.AI.CooldownSeconds)*time.Second,
	)
	s.quiz = service.NewQuizService(repos.quiz, repos.question, repos.attempt)
	s.attempt = service.NewAttemptService(repos.quiz, repos.question, repos.attempt)
	s.leaderboard = service.NewLeaderboardService(repos.quiz, repos.attempt)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.ai.UpdateConfig(c.AI)
		s.generation.UpdateCooldown(time.Duration(c.AI.CooldownSeconds) * time.Second)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		quiz:        controller.NewQuizController(s.quiz, s.generation),
		question:    controller.NewQuestionController(s.quiz),
		attempt:     controller.NewAttemptController(s.attempt, s.auth),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Release deployments migrate explicitly via the -migrate flag.
	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, rdb)
	ctrls := app.initControllers(svcs, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quizcraft", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
