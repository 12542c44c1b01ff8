package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stmiyata/seibi-backend/internal/app/service"
	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// Dashboard returns aggregate counts scoped to the actor
// GET /api/stats/dashboard
func (ctrl *StatsController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	dashboard, err := ctrl.statsService.Dashboard(actor)
	if err != nil {
		log.Error("Failed to build dashboard", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get stats")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
