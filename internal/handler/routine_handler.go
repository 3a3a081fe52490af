package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/routine"
	"routinetracker/internal/service"
	"routinetracker/pkg/metrics"
)

// IdempotencyHeader lets clients mark repeated submissions of one action.
const IdempotencyHeader = "Idempotency-Key"

// RequestDeduper guards create requests carrying an idempotency key.
type RequestDeduper interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

type RoutineHandler struct {
	tracker *service.Tracker
	deduper RequestDeduper
	logger  *zap.Logger
	now     func() time.Time
}

// NewRoutineHandler accepts a nil deduper when Redis is not configured.
func NewRoutineHandler(tracker *service.Tracker, deduper RequestDeduper, logger *zap.Logger) *RoutineHandler {
	return &RoutineHandler{tracker: tracker, deduper: deduper, logger: logger, now: time.Now}
}

type createRoutineRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
	Days     []int  `json:"days"`
}

type updateRoutineRequest struct {
	Content *string `json:"content"`
	Days    *[]int  `json:"days"`
}

type routinesResponse struct {
	Mode     routine.Mode    `json:"mode"`
	Day      *model.Weekday  `json:"day,omitempty"`
	Routines []model.Routine `json:"routines"`
}

func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	resp := routinesResponse{Mode: h.tracker.Mode()}
	if raw, ok := c.GetQuery("day"); ok {
		day, err := parseDay(raw)
		if err != nil {
			writeError(c, h.logger, "ListRoutines", err)
			return
		}
		resp.Day = &day
		resp.Routines = h.tracker.ForDay(day)
	} else {
		resp.Routines = h.tracker.List()
	}
	if resp.Routines == nil {
		resp.Routines = []model.Routine{}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	r, ok := h.tracker.Get(c.Param("id"))
	if !ok {
		writeError(c, h.logger, "GetRoutine", routine.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	var req createRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	if key != "" && h.deduper != nil {
		if !h.deduper.AcquireOnce(ctx, "create_routine", key) {
			metrics.IncrementDuplicateRequest("create_routine")
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
			return
		}
	}

	r, err := h.tracker.Add(ctx, req.Content, category, toWeekdays(req.Days))
	if err != nil {
		if key != "" && h.deduper != nil {
			h.deduper.Release(ctx, "create_routine", key)
		}
		writeError(c, h.logger, "CreateRoutine", err)
		return
	}

	h.logger.Info("CreateRoutine: success", zap.String("id", r.ID))
	c.JSON(http.StatusCreated, r)
}

// UpdateRoutine renames and/or reassigns days as one action. A rejected
// request changes nothing.
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	var req updateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Content == nil && req.Days == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content or days required"})
		return
	}

	var days []model.Weekday
	if req.Days != nil {
		days = toWeekdays(*req.Days)
	}
	r, changed, err := h.tracker.Update(c.Request.Context(), c.Param("id"), req.Content, days)
	if err != nil {
		writeError(c, h.logger, "UpdateRoutine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routine": r, "changed": changed})
}

func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.tracker.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "DeleteRoutine", err)
		return
	}
	h.logger.Info("DeleteRoutine: done", zap.String("id", id), zap.Bool("removed", removed))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ToggleRoutine flips completion; day defaults to today.
func (h *RoutineHandler) ToggleRoutine(c *gin.Context) {
	day := model.Today(h.now())
	if raw, ok := c.GetQuery("day"); ok {
		var err error
		if day, err = parseDay(raw); err != nil {
			writeError(c, h.logger, "ToggleRoutine", err)
			return
		}
	}

	r, err := h.tracker.Toggle(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		writeError(c, h.logger, "ToggleRoutine", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RoutineHandler) WeekProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.WeekProgress())
}

func (h *RoutineHandler) DayProgress(c *gin.Context) {
	day, err := parseDay(c.Param("day"))
	if err != nil {
		writeError(c, h.logger, "DayProgress", err)
		return
	}
	c.JSON(http.StatusOK, h.tracker.DayProgress(day))
}

func parseDay(raw string) (model.Weekday, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !model.Weekday(n).Valid() {
		return 0, fmt.Errorf("%w: %q", routine.ErrInvalidDay, raw)
	}
	return model.Weekday(n), nil
}

func toWeekdays(days []int) []model.Weekday {
	out := make([]model.Weekday, len(days))
	for i, d := range days {
		out[i] = model.Weekday(d)
	}
	return out
}
