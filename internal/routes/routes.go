package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/chat"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/explore"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/health"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/landmarks"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/monuments"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/visits"
	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
)

// Dependencies are the store-backed pieces the routes are built from.
type Dependencies struct {
	Visits       visits.Repository
	Descriptions monuments.Repository
	Store        health.Pinger
	StoreDriver  string
	Chat         config.ChatConfig
	Explore      explore.Config
	Catalog      *landmarks.Catalog
}

// Setup wires services and handlers onto the router.
func Setup(r *gin.Engine, deps Dependencies, logger *zap.Logger) {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = landmarks.Default()
	}

	visitService := visits.NewService(deps.Visits, logger)
	visitHandler := visits.NewHandler(visitService, logger)

	monumentService := monuments.NewService(deps.Descriptions, visitService, logger)
	monumentHandler := monuments.NewHandler(monumentService, logger)

	chatBackend := chat.NewBackendClient(deps.Chat.BackendURL, deps.Chat.Timeout, logger)
	chatService := chat.NewService(chatBackend, chat.NewTranscriptStore(chat.TranscriptIdleTTL, logger), logger)
	chatHandler := chat.NewHandler(chatService, logger)

	healthHandler := health.NewHandler(deps.Store, deps.StoreDriver, logger)
	exploreHandler := explore.NewHandler(catalog, deps.Explore, logger)

	api := r.Group("/api")
	{
		api.GET("/db-status", healthHandler.DBStatus)
		api.GET("/mongodb-status", healthHandler.DBStatus)

		api.GET("/landmarks", exploreHandler.Landmarks)
		api.GET("/explore/nearby", exploreHandler.Nearby)

		monumentsGroup := api.Group("/monuments")
		{
			monumentsGroup.POST("/record-visit", visitHandler.RecordVisit)
			monumentsGroup.GET("/visited", visitHandler.ListVisits)
			monumentsGroup.GET("/:name/monumentDescription", monumentHandler.Description)
			monumentsGroup.GET("/:name/overview", monumentHandler.Overview)
		}

		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("", chatHandler.Chat)
			chatGroup.GET("/pdf", chatHandler.PDF)
			chatGroup.GET("/history", chatHandler.History)
		}
	}

	r.GET("/ws/explore", exploreHandler.Track)
}
