package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/chat"
)

type ChatRequest struct {
	ModelName      string           `json:"modelName"`
	Messages       []domain.Message `json:"messages"`
	SystemPrompt   string           `json:"systemPrompt"`
	ConversationID string           `json:"conversationId"`
}

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat 处理一次单模型对话回合。
// 厂商失败仍返回 success:true，错误放在 response.error 里：
// 回合本身已成功发起，失败的是模型调用。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelName and messages are required"})
		return
	}
	if req.ModelName == "" || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelName and messages are required"})
		return
	}

	result, conversationID, err := h.service.SendTurn(c.Request.Context(), chat.TurnRequest{
		ModelName:      req.ModelName,
		Messages:       req.Messages,
		SystemPrompt:   req.SystemPrompt,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		var unknown *chat.UnknownModelError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"response":       result,
		"conversationId": conversationID,
	})
}
