package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/dkhamitov/notify-gateway/internal/api/handlers/health"
	"github.com/dkhamitov/notify-gateway/internal/api/handlers/notification"
	"github.com/dkhamitov/notify-gateway/internal/middlewares"
)

func New(handler *notification.Handler, healthHandler *health.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/health", healthHandler.Check)

	api := e.Group("/api/notifications")
	{
		api.POST("", handler.Send)
		api.GET("/:id", handler.GetStatus)
		api.POST("/:id/status", handler.Report)
	}

	return e
}
