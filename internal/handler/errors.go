package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routinetracker/internal/routine"
	"routinetracker/internal/service"
	"routinetracker/pkg/logger"
)

// writeError maps tracker errors to a status and a JSON error body.
func writeError(c *gin.Context, log *zap.Logger, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, routine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, routine.ErrEmptyContent),
		errors.Is(err, routine.ErrNoDays),
		errors.Is(err, routine.ErrInvalidDay),
		errors.Is(err, routine.ErrDayNotScheduled),
		errors.Is(err, routine.ErrDaysNotUsed):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSync):
		status = http.StatusBadGateway
	}

	l := logger.WithTrace(c.Request.Context(), log)
	if status >= http.StatusInternalServerError {
		l.Error(action+": failed", zap.Error(err))
	} else {
		l.Warn(action+": rejected", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
