package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tvbridge/config"
	"tvbridge/service"
)

// Services bundles what the handlers need
type Services struct {
	Config        *config.Config
	DeviceManager *service.DeviceManager
	Dispatcher    *service.ActionDispatcher
	Journal       *service.Journal
	Hub           *WebSocketHub
	LocalIP       func() string // defaults to service.LocalIP
}

func SetupRoutes(router *gin.Engine, s *Services) {
	if s.LocalIP == nil {
		s.LocalIP = service.LocalIP
	}

	// Unknown paths must 404 instead of redirecting
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Enable CORS
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		api.GET("/status", func(c *gin.Context) {
			GetStatus(c, s)
		})
		api.GET("/info", func(c *gin.Context) {
			GetInfo(c, s)
		})
		api.POST("/command", func(c *gin.Context) {
			ExecuteCommand(c, s.Dispatcher)
		})
		api.GET("/keys", GetKeys)
		api.GET("/history", func(c *gin.Context) {
			GetHistory(c, s.Journal)
		})
	}

	// WebSocket route
	if s.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			HandleWebSocket(s.Hub, s.Dispatcher, c)
		})
	}

	router.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})
}

// CORSMiddleware allows any origin and answers every preflight with 200
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
