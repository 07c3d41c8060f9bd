package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"betterme/backend/internal/handler"
	"betterme/backend/internal/middleware"
	"betterme/backend/internal/service"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Pomodoro *handler.PomodoroHandler
	Audio    *handler.AudioHandler
	Settings *handler.SettingsHandler
	Task     *handler.TaskHandler
}

// New wires the HTTP surface. filesDir, when set, is served under /files so
// locally stored audio artifacts resolve from their public URLs.
func New(authService *service.AuthService, h Handlers, corsOrigins []string, filesDir string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if filesDir != "" {
		engine.Static("/files", filesDir)
	}

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	pomodoros := authed.Group("/pomodoros")
	pomodoros.POST("", h.Pomodoro.Create)
	pomodoros.GET("", h.Pomodoro.List)
	pomodoros.DELETE("/_last", h.Pomodoro.DeleteLast)
	pomodoros.GET("/:id", h.Pomodoro.Get)
	pomodoros.PATCH("/:id", h.Pomodoro.Patch)

	audios := authed.Group("/audios")
	audios.POST("", h.Audio.Create)
	audios.GET("/*source_url", h.Audio.Lookup)

	settings := authed.Group("/settings")
	settings.GET("", h.Settings.Get)
	settings.PUT("", h.Settings.Update)

	tasks := authed.Group("/tasks")
	tasks.POST("", h.Task.Create)
	tasks.GET("", h.Task.List)
	tasks.PATCH("/:id", h.Task.Patch)
	tasks.DELETE("/:id", h.Task.Delete)

	return engine
}
