package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/chat"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/debate"
)

// DebateTurnRequest 是无状态单回合辩论的入参：
// 历史消息按发言模型打标，由服务端换算成发言方视角
type DebateTurnRequest struct {
	ModelName string                 `json:"modelName"`
	Messages  []domain.DebateMessage `json:"messages"`
	Topic     string                 `json:"topic"`
	ImageURL  string                 `json:"imageUrl"`
}

type DebateHandler struct {
	service *chat.Service
	manager *debate.Manager
}

func NewDebateHandler(service *chat.Service, manager *debate.Manager) *DebateHandler {
	return &DebateHandler{service: service, manager: manager}
}

// Turn 执行一次无状态辩论回合，不注入系统提示词
func (h *DebateHandler) Turn(c *gin.Context) {
	var req DebateTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelName and topic are required"})
		return
	}
	if req.ModelName == "" || req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelName and topic are required"})
		return
	}

	view := debate.BuildView(req.ModelName, req.Topic, req.ImageURL, req.Messages)
	result, err := h.service.DebateTurn(c.Request.Context(), req.ModelName, view)
	if err != nil {
		var unknown *chat.UnknownModelError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "response": result})
}

// CreateSession 建立并启动一场托管辩论
func (h *DebateHandler) CreateSession(c *gin.Context) {
	var cfg debate.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid debate config"})
		return
	}

	sess, err := h.manager.Create(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Start(context.Background()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "session": sess.Snapshot()})
}

func (h *DebateHandler) GetSession(c *gin.Context) {
	sess, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.Snapshot()})
}

func (h *DebateHandler) StopSession(c *gin.Context) {
	sess, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	sess.Stop()
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.Snapshot()})
}

func (h *DebateHandler) ContinueSession(c *gin.Context) {
	sess, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Continue(context.Background()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.Snapshot()})
}

func (h *DebateHandler) ResetSession(c *gin.Context) {
	sess, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.Snapshot()})
}
