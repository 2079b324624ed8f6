package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	"forge-service/internal/core/domain"
)

// ============================================================================
// Comments
// ============================================================================

func (h *Handler) ListComments(c *gin.Context) {
	typ := domain.CommentableType(c.Query("type"))
	if !typ.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": domain.ErrInvalidCommentable.Error()})
		return
	}
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid commentable id"})
		return
	}

	comments, err := h.commentSvc.ListThreaded(c.Request.Context(), currentUser(c), typ, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{"items": comments})
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentSvc.Create(c.Request.Context(), currentUser(c), req.ToService())
	if err != nil {
		log.WithError(err).Warn("create comment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentSvc.Update(c.Request.Context(), currentUser(c), id, req.Body)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}

	if err := h.commentSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) PinComment(c *gin.Context) {
	h.setPinned(c, true)
}

func (h *Handler) UnpinComment(c *gin.Context) {
	h.setPinned(c, false)
}

func (h *Handler) setPinned(c *gin.Context, pinned bool) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}

	comment, err := h.commentSvc.SetPinned(c.Request.Context(), currentUser(c), id, pinned)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// ============================================================================
// Follows
// ============================================================================

func (h *Handler) FollowUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.followSvc.Follow(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UnfollowUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.followSvc.Unfollow(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListFollowers(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	users, total, err := h.followSvc.Followers(c.Request.Context(), id, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.MapList(users, dto.ToUserResponse), total, limit, offset))
}

func (h *Handler) ListFollowing(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	users, total, err := h.followSvc.Following(c.Request.Context(), id, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.MapList(users, dto.ToUserResponse), total, limit, offset))
}
