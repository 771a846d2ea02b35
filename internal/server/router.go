// Package server assembles the gin engine: CORS, API routes, and the static
// frontend with an SPA fallback.
package server

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"recipe-genie/internal/handler"
)

type RouterConfig struct {
	ChatHandler *handler.ChatHandler

	// StaticDir holds the built frontend bundle. Empty disables static
	// serving and the SPA fallback.
	StaticDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	h := cfg.ChatHandler

	router.GET("/health", h.Health)
	router.GET("/", h.Banner)

	chat := router.Group("/chat")
	{
		chat.POST("/new", h.NewChat)
		chat.POST("/message", h.SendMessage)
		chat.GET("/chats/:user_id", h.ListChats)
		chat.GET("/messages/:user_id/:chat_id", h.ListMessages)
		chat.PUT("/title", h.Rename)
		chat.DELETE("/:user_id/:chat_id", h.Delete)
		chat.GET("/preferences/:user_id", h.GetPreferences)
		chat.PUT("/preferences/:user_id", h.SavePreferences)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.PopularRecipes)
		recipes.GET("/search", h.SearchRecipes)
	}

	if cfg.StaticDir != "" {
		router.Static("/app", cfg.StaticDir)

		// Unknown GET paths fall back to the SPA entry point so client-side
		// routes survive a page reload. API-looking paths still 404.
		index := filepath.Join(cfg.StaticDir, "index.html")
		router.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/chat") || strings.HasPrefix(c.Request.URL.Path, "/recipes") {
				c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": "route not found"})
				return
			}
			c.File(index)
		})
	}

	return router
}
