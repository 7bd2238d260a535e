package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/middleware"
)

// Handlers: все обработчики API
type Handlers struct {
	Stage      *StageHandler
	Score      *ScoreHandler
	Round      *RoundHandler
	Setup      *SetupHandler
	Tabulation *TabulationHandler
	Health     *HealthHandler
	// Metrics: обработчик /metrics; nil отключает маршрут
	Metrics http.Handler
}

// RegisterRoutes настраивает маршруты API.
// Чтение публичное, изменения только для admin, оценки только для судей.
func RegisterRoutes(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	scoreLimit middleware.RateLimitConfig,
) {
	router.GET("/healthz", h.Health.Healthz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	admin := []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.AdminOnly()}

	api := router.Group("/api")
	{
		// Этапы
		stages := api.Group("/stages")
		{
			stages.GET("", h.Stage.ListStages)
			stages.POST("/:number/generate",
				append(admin, middleware.ExtractUintParam("number", "stageNumber"), h.Stage.GenerateStage)...)
		}

		// Раунды
		rounds := api.Group("/rounds")
		{
			rounds.GET("", h.Round.ListRounds)
			rounds.POST("", append(admin, h.Round.CreateRound)...)

			roundWithID := rounds.Group("/:id")
			roundWithID.Use(middleware.ExtractUintParam("id", "roundID"))
			{
				roundWithID.GET("", h.Round.GetRound)
				roundWithID.GET("/status", h.Round.Status)
				roundWithID.GET("/standings", h.Round.Standings)
				roundWithID.GET("/bracket", h.Round.Bracket)
				roundWithID.GET("/results", h.Round.Results)

				adminRounds := roundWithID.Group("")
				adminRounds.Use(admin...)
				{
					adminRounds.PUT("", h.Round.UpdateRound)
					adminRounds.DELETE("", h.Round.DeleteRound)
					adminRounds.POST("/complete", h.Round.Complete)
					adminRounds.POST("/assignments", h.Round.CreateAssignment)
				}
			}
		}

		// Комнаты раундов
		assignments := api.Group("/assignments/:id")
		assignments.Use(middleware.ExtractUintParam("id", "assignmentID"))
		{
			assignments.GET("", h.Round.GetAssignment)
			assignments.DELETE("", append(admin, h.Round.DeleteAssignment)...)
			assignments.PUT("/judges", append(admin, h.Round.SetJudges)...)
			assignments.POST("/scores",
				authMiddleware.RequireAuth(),
				authMiddleware.JudgeOnly(),
				limiter.Limit(scoreLimit),
				h.Score.SubmitScores,
			)
		}

		// Сводная таблица
		tab := api.Group("/tabulation")
		tab.Use(admin...)
		{
			tab.GET("", h.Tabulation.GetTabulation)
			tab.GET("/export", h.Tabulation.Export)
		}

		// Справочники
		teams := api.Group("/teams")
		{
			teams.GET("", h.Setup.ListTeams)
			teams.POST("", append(admin, h.Setup.CreateTeam)...)
			teamWithID := teams.Group("/:id")
			teamWithID.Use(middleware.ExtractUintParam("id", "teamID"))
			{
				teamWithID.GET("", h.Setup.GetTeam)
				teamWithID.PUT("", append(admin, h.Setup.UpdateTeam)...)
				teamWithID.DELETE("", append(admin, h.Setup.DeleteTeam)...)
			}
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", h.Setup.ListRooms)
			rooms.POST("", append(admin, h.Setup.CreateRoom)...)
			roomWithID := rooms.Group("/:id")
			roomWithID.Use(middleware.ExtractUintParam("id", "roomID"))
			{
				roomWithID.PUT("", append(admin, h.Setup.UpdateRoom)...)
				roomWithID.DELETE("", append(admin, h.Setup.DeleteRoom)...)
			}
		}

		judges := api.Group("/judges")
		{
			judges.GET("", append(admin, h.Setup.ListJudges)...)
			judges.POST("", append(admin, h.Setup.CreateJudge)...)
			judgeWithID := judges.Group("/:id")
			judgeWithID.Use(middleware.ExtractUintParam("id", "judgeID"))
			{
				judgeWithID.PUT("", append(admin, h.Setup.UpdateJudge)...)
				judgeWithID.DELETE("", append(admin, h.Setup.DeleteJudge)...)
			}
		}
	}
}
