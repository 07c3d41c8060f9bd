package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"betterme/backend/internal/middleware"
	"betterme/backend/internal/service"
)

type AudioHandler struct {
	audioService *service.AudioService
}

type createAudioRequest struct {
	AudioURL string `json:"audio_url"`
}

func NewAudioHandler(audioService *service.AudioService) *AudioHandler {
	return &AudioHandler{audioService: audioService}
}

// Create accepts an audio URL and answers 202 once the download job is
// queued, or 200 when the mapping already exists.
func (h *AudioHandler) Create(c *gin.Context) {
	var req createAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.audioService.RequestMapping(c.Request.Context(), req.AudioURL, userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// Lookup resolves GET /audios/<source url>. The source URL rides in the
// wildcard path segment, so its own query string must be stitched back on.
func (h *AudioHandler) Lookup(c *gin.Context) {
	rawURL := strings.TrimPrefix(c.Param("source_url"), "/")
	if c.Request.URL.RawQuery != "" {
		rawURL += "?" + c.Request.URL.RawQuery
	}

	link, apiErr := h.audioService.Lookup(c.Request.Context(), rawURL)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}
