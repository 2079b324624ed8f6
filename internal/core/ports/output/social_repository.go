package ports

import (
	"context"
	"time"

	"forge-service/internal/core/domain"
)

// ============================================================================
// Comment Repository
// ============================================================================

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error

	// ListByCommentable returns every comment of a resource, oldest first.
	// Soft-deleted comments are included so threads keep their shape.
	ListByCommentable(ctx context.Context, typ domain.CommentableType, id int64) ([]*domain.Comment, error)
}

// ============================================================================
// Follow Repository
// ============================================================================

type FollowRepository interface {
	// Follow inserts the relation and reports whether it is new.
	Follow(ctx context.Context, followerID, followingID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID int64) error
	ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error)
	ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error)
}

// ============================================================================
// Conversation Repository
// ============================================================================

type ConversationRepository interface {
	// FindByParticipants expects user1ID < user2ID.
	FindByParticipants(ctx context.Context, user1ID, user2ID int64) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id int64) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Conversation, int, error)

	// CreateMessage stores the message and moves last_message_at forward.
	CreateMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]*domain.Message, int, error)

	// MarkRead marks every message not sent by readerID as read.
	MarkRead(ctx context.Context, conversationID, readerID int64, at time.Time) (int64, error)
}

// ============================================================================
// Notification Repository
// ============================================================================

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// ============================================================================
// Moderation Repositories
// ============================================================================

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	Update(ctx context.Context, report *domain.Report) error
	// Exists reports whether the reporter has ever reported the target, in any status.
	Exists(ctx context.Context, reporterID int64, typ domain.ReportableType, id int64) (bool, error)
	List(ctx context.Context, status domain.ReportStatus, limit, offset int) ([]*domain.Report, int, error)
}

type BanRepository interface {
	Create(ctx context.Context, ban *domain.Ban) error

	// ActiveForUser returns domain.ErrBanNotFound when no ban is in force at t.
	ActiveForUser(ctx context.Context, userID int64, at time.Time) (*domain.Ban, error)
	Expire(ctx context.Context, banID int64, at time.Time) error
}
