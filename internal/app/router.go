package app

import (
	"quizcraft_backend/docs"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/middleware"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)
	}

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(cfg))
	{
		authorized.GET("/profile", c.auth.GetProfile)

		authorized.GET("/quizzes", c.quiz.ListQuizzes)
		authorized.GET("/quizzes/:id", c.quiz.GetQuiz)
		authorized.GET("/quizzes/:id/questions", c.quiz.GetStudentQuestions)

		authorized.POST("/quizzes/:id/attempts", c.attempt.SubmitAttempt)
		authorized.GET("/quizzes/:id/attempts/me", c.attempt.GetMyAttempt)
		authorized.GET("/attempts", c.attempt.ListMyAttempts)

		authorized.GET("/quizzes/:id/leaderboard", c.leaderboard.GetLeaderboard)
		authorized.GET("/quizzes/:id/leaderboard/export", c.leaderboard.ExportLeaderboard)

		professor := authorized.Group("/professor")
		professor.Use(middleware.RoleMiddleware(model.Professor))
		{
			professor.POST("/quizzes", c.quiz.GenerateQuiz)
			professor.GET("/quizzes", c.quiz.ListMyQuizzes)
			professor.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
			professor.GET("/quizzes/:id/questions", c.quiz.GetProfessorQuestions)

			professor.PUT("/questions/:id", c.question.UpdateQuestion)
			professor.DELETE("/questions/:id", c.question.DeleteQuestion)
		}
	}
}
