package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"betterme/backend/internal/middleware"
	"betterme/backend/internal/service"
)

type PomodoroHandler struct {
	pomodoroService *service.PomodoroService
}

type patchPomodoroRequest struct {
	Action string `json:"action"`
}

func NewPomodoroHandler(pomodoroService *service.PomodoroService) *PomodoroHandler {
	return &PomodoroHandler{pomodoroService: pomodoroService}
}

func (h *PomodoroHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	session, apiErr := h.pomodoroService.Create(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *PomodoroHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	session, apiErr := h.pomodoroService.Get(c.Request.Context(), c.Param("id"), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *PomodoroHandler) Patch(c *gin.Context) {
	var req patchPomodoroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	if apiErr := h.pomodoroService.Apply(c.Request.Context(), c.Param("id"), userID, req.Action); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PomodoroHandler) DeleteLast(c *gin.Context) {
	userID := middleware.UserID(c)

	if apiErr := h.pomodoroService.DeleteLast(c.Request.Context(), userID); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PomodoroHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)

	page, apiErr := h.pomodoroService.List(c.Request.Context(), userID, skip, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, page)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
