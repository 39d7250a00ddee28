package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"data-analyst-agent/internal/model"
	"data-analyst-agent/internal/observability"
)

func (srv HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())

	// Access logs come from the ingress in production.
	if srv.environment != string(model.EnvironmentProduction) {
		srv.gin.Use(gin.Logger())
	}
}

func (srv HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)

	if srv.registry != nil {
		srv.gin.GET("/metrics", gin.WrapH(observability.Handler(srv.registry)))
	}

	srv.gin.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}

func (srv HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	v1 := srv.gin.Group("/api/v1")

	v1.POST("/sessions", srv.analysisHandler.CreateSession)

	scoped := v1.Group("/sessions/:session_id", srv.mw.RateLimit())
	scoped.DELETE("", srv.analysisHandler.DeleteSession)
	scoped.POST("/dataset", srv.analysisHandler.UploadDataset)
	scoped.GET("/schema", srv.analysisHandler.GetSchema)
	scoped.GET("/preview", srv.analysisHandler.Preview)
	scoped.POST("/ask", srv.analysisHandler.Ask)
	scoped.GET("/history", srv.analysisHandler.History)
	scoped.DELETE("/history", srv.analysisHandler.ClearConversation)

	srv.l.Infof(ctx, "Analysis routes registered under /api/v1/sessions")
}
