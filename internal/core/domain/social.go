package domain

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Value Objects
// ============================================================================

// CommentableType names the kind of resource a comment is attached to.
type CommentableType string

const (
	CommentableMod   CommentableType = "mod"
	CommentableAddon CommentableType = "addon"
	CommentableUser  CommentableType = "user"
)

func (t CommentableType) IsValid() bool {
	return t == CommentableMod || t == CommentableAddon || t == CommentableUser
}

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationNewComment NotificationType = "new_comment"
	NotificationReply      NotificationType = "comment_reply"
	NotificationNewFollow  NotificationType = "new_follower"
	NotificationNewMessage NotificationType = "new_message"
	NotificationReportDone NotificationType = "report_resolved"
	NotificationVerifyMail NotificationType = "verify_email"
)

// ============================================================================
// Entities
// ============================================================================

type Comment struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	CommentableType CommentableType `json:"commentable_type"`
	CommentableID   int64           `json:"commentable_id"`
	ParentID        *int64          `json:"parent_id"`
	RootID          *int64          `json:"root_id"`
	Body            string          `json:"body"`
	EditedAt        *time.Time      `json:"edited_at"`
	PinnedAt        *time.Time      `json:"pinned_at"`
	DeletedAt       *time.Time      `json:"deleted_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Computed fields
	UserName string     `json:"user_name,omitempty"`
	Replies  []*Comment `json:"replies,omitempty"`
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}

type UserFollow struct {
	FollowerID  int64     `json:"follower_id"`
	FollowingID int64     `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is a private thread between exactly two users. User1ID is
// always the lower id so a pair maps to a single row.
type Conversation struct {
	ID            int64      `json:"id"`
	User1ID       int64      `json:"user1_id"`
	User2ID       int64      `json:"user2_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Computed fields
	UnreadCount int `json:"unread_count"`
}

// NewConversation orders the participants so (a, b) and (b, a) are the same
// conversation.
func NewConversation(a, b int64) (*Conversation, error) {
	if a == b {
		return nil, ErrCannotMessageSelf
	}
	if a > b {
		a, b = b, a
	}
	now := time.Now()
	return &Conversation{User1ID: a, User2ID: b, CreatedAt: now, UpdatedAt: now}, nil
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the id of the participant that is not userID.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	UserID         int64      `json:"user_id"`
	Content        string     `json:"content"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Data      json.RawMessage  `json:"data"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
