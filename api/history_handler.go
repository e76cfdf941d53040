package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/export"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/history"
)

type HistoryHandler struct {
	service *history.Service
}

func NewHistoryHandler(service *history.Service) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// ListSessions 返回会话摘要列表: GET /api/sessions
func (h *HistoryHandler) ListSessions(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	if list == nil {
		list = []*domain.ConversationSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversations": list})
}

// GetSession 返回单个会话及其全部消息: GET /api/sessions/:id
func (h *HistoryHandler) GetSession(c *gin.Context) {
	conv, messages, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if messages == nil {
		messages = []domain.StoredMessage{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"conversation": conv,
		"messages":     messages,
	})
}

// DeleteSession 删除会话: DELETE /api/sessions/:id
func (h *HistoryHandler) DeleteSession(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportSession 导出会话为分页纯文本附件: GET /api/sessions/:id/export
func (h *HistoryHandler) ExportSession(c *gin.Context) {
	conv, messages, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	doc := export.Render(conv, messages)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Text()))
}
