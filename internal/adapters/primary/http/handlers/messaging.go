package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forge-service/internal/adapters/primary/http/dto"
)

// ============================================================================
// Conversations
// ============================================================================

func (h *Handler) ListConversations(c *gin.Context) {
	limit, offset := pagination(c)

	convs, total, err := h.conversationSvc.List(c.Request.Context(), currentUser(c), limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(convs, total, limit, offset))
}

func (h *Handler) StartConversation(c *gin.Context) {
	var req dto.StartConversationRequest
	if !bindJSON(c, &req) {
		return
	}

	conv, err := h.conversationSvc.StartOrGet(c.Request.Context(), currentUser(c), req.UserID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := parseID(c, "id", "conversation")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	msgs, total, err := h.conversationSvc.Messages(c.Request.Context(), currentUser(c), id, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(msgs, total, limit, offset))
}

func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := parseID(c, "id", "conversation")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.conversationSvc.Send(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkConversationRead(c *gin.Context) {
	id, ok := parseID(c, "id", "conversation")
	if !ok {
		return
	}

	marked, err := h.conversationSvc.MarkRead(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MarkedResponse{Marked: marked})
}

// ============================================================================
// Notifications
// ============================================================================

func (h *Handler) ListNotifications(c *gin.Context) {
	limit, offset := pagination(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.notificationSvc.List(c.Request.Context(), currentUser(c), unreadOnly, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, total, limit, offset))
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	marked, err := h.notificationSvc.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MarkedResponse{Marked: marked})
}
