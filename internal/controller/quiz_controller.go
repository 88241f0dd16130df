package controller

import (
	"errors"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService       *service.QuizService
	GenerationService *service.GenerationService
}

func NewQuizController(quizService *service.QuizService, generationService *service.GenerationService) *QuizController {
	return &QuizController{
		QuizService:       quizService,
		GenerationService: generationService,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a topic prompt via the AI provider
// @Tags professor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.GenerateQuizRequest true "quiz info"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 402 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 429 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/professor/quizzes [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.GenerationService.GenerateQuiz(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidInput):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrCooldownActive), errors.Is(err, util.ErrAIRateLimited):
			util.Error(ctx, 429, err.Error())
		case errors.Is(err, util.ErrProviderQuota):
			util.Error(ctx, 402, err.Error())
		case errors.Is(err, util.ErrProviderAuth):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrMalformedGeneration), errors.Is(err, util.ErrGenerationFailed):
			util.Error(ctx, 500, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"quiz": quiz})
}

// ListQuizzes godoc
// @Summary All quizzes available to students
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListQuizzes()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// ListMyQuizzes godoc
// @Summary Quizzes owned by the calling professor
// @Tags professor
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/professor/quizzes [get]
func (c *QuizController) ListMyQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListProfessorQuizzes(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Quiz metadata
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuiz(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz with its questions and attempts
// @Tags professor
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/professor/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.QuizService.DeleteQuiz(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// GetStudentQuestions godoc
// @Summary Questions for taking a quiz (correct answers withheld)
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/questions [get]
func (c *QuizController) GetStudentQuestions(ctx *gin.Context) {
	questions, err := c.QuizService.ListStudentQuestions(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, questions)
}

// GetProfessorQuestions godoc
// @Summary Full question rows for editing, correct answers included
// @Tags professor
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/professor/quizzes/{id}/questions [get]
func (c *QuizController) GetProfessorQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	questions, err := c.QuizService.ListQuestions(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, questions)
}
