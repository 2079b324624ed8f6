package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"forge-service/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrModNotFound),
		errors.Is(err, domain.ErrModVersionNotFound),
		errors.Is(err, domain.ErrAddonNotFound),
		errors.Is(err, domain.ErrAddonVersionNotFound),
		errors.Is(err, domain.ErrLicenseNotFound),
		errors.Is(err, domain.ErrSptVersionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrBanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrModSlugConflict),
		errors.Is(err, domain.ErrModVersionConflict),
		errors.Is(err, domain.ErrAddonVersionConflict),
		errors.Is(err, domain.ErrSptVersionConflict),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateReport),
		errors.Is(err, domain.ErrReportAlreadyClosed),
		errors.Is(err, domain.ErrAddonAlreadyDetached),
		errors.Is(err, domain.ErrNotDeleted):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})

	// Authorization errors
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUserBanned),
		errors.Is(err, domain.ErrCannotBanAdmin):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})

	// Authentication errors
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidModName),
		errors.Is(err, domain.ErrInvalidAddonName),
		errors.Is(err, domain.ErrInvalidVersion),
		errors.Is(err, domain.ErrInvalidConstraint),
		errors.Is(err, domain.ErrSelfDependency),
		errors.Is(err, domain.ErrInvalidCommentBody),
		errors.Is(err, domain.ErrInvalidCommentable),
		errors.Is(err, domain.ErrCannotPinReply),
		errors.Is(err, domain.ErrReplyTargetMismatch),
		errors.Is(err, domain.ErrCannotFollowSelf),
		errors.Is(err, domain.ErrCannotMessageSelf),
		errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, domain.ErrCannotReportSelf),
		errors.Is(err, domain.ErrInvalidReportReason),
		errors.Is(err, domain.ErrInvalidReportable),
		errors.Is(err, domain.ErrCannotBanSelf):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
