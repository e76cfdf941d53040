package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papaattanasi-debug/papaattanasi/internal/service/chat"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/debate"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/history"
)

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// NewRouter 组装全部路由。/healthz 之外的 /api 路由都要求 Bearer JWT。
func NewRouter(chatSvc *chat.Service, manager *debate.Manager, historySvc *history.Service, jwtSecret []byte) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	chatHandler := NewChatHandler(chatSvc)
	debateHandler := NewDebateHandler(chatSvc, manager)
	historyHandler := NewHistoryHandler(historySvc)

	authed := router.Group("/api", AuthMiddleware(jwtSecret))
	{
		authed.GET("/auth/me", Me)

		authed.POST("/chat", chatHandler.Chat)

		authed.POST("/debate", debateHandler.Turn)
		authed.POST("/debates", debateHandler.CreateSession)
		authed.GET("/debates/:id", debateHandler.GetSession)
		authed.POST("/debates/:id/stop", debateHandler.StopSession)
		authed.POST("/debates/:id/continue", debateHandler.ContinueSession)
		authed.POST("/debates/:id/reset", debateHandler.ResetSession)

		authed.GET("/sessions", historyHandler.ListSessions)
		authed.GET("/sessions/:id", historyHandler.GetSession)
		authed.DELETE("/sessions/:id", historyHandler.DeleteSession)
		authed.GET("/sessions/:id/export", historyHandler.ExportSession)
	}

	return router
}
