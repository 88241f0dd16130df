package controller

import (
	"errors"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
	AuthService    *service.AuthService
}

func NewAttemptController(attemptService *service.AttemptService, authService *service.AuthService) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
		AuthService:    authService,
	}
}

// SubmitAttempt godoc
// @Summary Submit answers for grading, once per quiz
// @Tags student
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Param body body service.SubmitAttemptRequest true "answers"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.AuthService.GetUser(claims.UserID)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.Submit(student, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrIncompleteSubmission):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrInvalidInput):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	// An existing attempt is a navigational outcome: the client routes
	// to the review page instead of showing an error.
	util.Success(ctx, result)
}

// GetMyAttempt godoc
// @Summary Review the caller's attempt with the answer snapshot
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/attempts/me [get]
func (c *AttemptController) GetMyAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, answers, err := c.AttemptService.GetReview(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"attempt": attempt,
		"answers": answers,
	})
}

// ListMyAttempts godoc
// @Summary All attempts submitted by the caller
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.AttemptService.ListStudentAttempts(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
