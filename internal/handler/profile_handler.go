package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/service"
)

type ProfileHandler struct {
	tracker *service.Tracker
	logger  *zap.Logger
}

func NewProfileHandler(tracker *service.Tracker, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{tracker: tracker, logger: logger}
}

func (h *ProfileHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.tracker.Theme()})
}

func (h *ProfileHandler) SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	theme, err := model.ParseTheme(req.Theme)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.tracker.SetTheme(c.Request.Context(), theme)
	if err != nil {
		writeError(c, h.logger, "SetTheme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": current})
}

func (h *ProfileHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": model.Themes()})
}
