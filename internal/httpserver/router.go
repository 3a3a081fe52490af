package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"routinetracker/internal/handler"
)

// Pinger reports datastore readiness. nil means always ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	routineHandler *handler.RoutineHandler,
	profileHandler *handler.ProfileHandler,
	logger *zap.Logger,
	datastore Pinger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), LoggingMiddleware(logger), MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if datastore != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
			defer cancel()

			if err := datastore.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "datastore_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/routines", routineHandler.ListRoutines)
	r.POST("/routines", routineHandler.CreateRoutine)
	r.GET("/routines/:id", routineHandler.GetRoutine)
	r.PATCH("/routines/:id", routineHandler.UpdateRoutine)
	r.DELETE("/routines/:id", routineHandler.DeleteRoutine)
	r.POST("/routines/:id/toggle", routineHandler.ToggleRoutine)

	r.GET("/progress", routineHandler.WeekProgress)
	r.GET("/progress/:day", routineHandler.DayProgress)

	r.GET("/themes", profileHandler.ListThemes)
	r.GET("/profile/theme", profileHandler.GetTheme)
	r.PUT("/profile/theme", profileHandler.SetTheme)

	return &Router{Engine: r}
}

func (r *Router) Handler() http.Handler {
	return r.Engine
}
