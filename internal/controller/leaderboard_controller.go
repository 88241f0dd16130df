package controller

import (
	"errors"
	"fmt"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary Ranked attempts with statistics and podium for a quiz
// @Tags leaderboard
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	board, err := c.LeaderboardService.GetLeaderboard(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, board)
}

// ExportLeaderboard godoc
// @Summary Download the leaderboard as CSV
// @Tags leaderboard
// @Produce text/csv
// @Security ApiKeyAuth
// @Param id path string true "quiz id"
// @Success 200 {string} string "CSV file"
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/leaderboard/export [get]
func (c *LeaderboardController) ExportLeaderboard(ctx *gin.Context) {
	filename, data, err := c.LeaderboardService.ExportCSV(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(200, "text/csv", data)
}
