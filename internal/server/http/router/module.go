package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module builds the portal router and logs its route table at debug level.
var Module = fx.Options(
	fx.Provide(Setup),
	fx.Invoke(logRoutes),
)

func logRoutes(engine *gin.Engine, logger *slog.Logger) {
	for _, r := range engine.Routes() {
		logger.Debug("route registered", slog.String("method", r.Method), slog.String("path", r.Path))
	}
}
