package controller

import (
	"errors"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuizService *service.QuizService
}

func NewQuestionController(quizService *service.QuizService) *QuestionController {
	return &QuestionController{QuizService: quizService}
}

// UpdateQuestion godoc
// @Summary Edit a question's text, options, or correct answer
// @Tags professor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "question id"
// @Param body body service.UpdateQuestionRequest true "question fields"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/professor/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.UpdateQuestion(claims.UserID, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidInput):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuestionNotFound), errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question and renumber the rest
// @Tags professor
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "question id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/professor/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.QuizService.DeleteQuestion(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound), errors.Is(err, util.ErrQuizNotFound):
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
