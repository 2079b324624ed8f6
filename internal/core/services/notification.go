package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ domain.NotificationType, data map[string]interface{}) error
}

type NotificationService struct {
	repo ports.NotificationRepository
}

func NewNotificationService(repo ports.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(ctx context.Context, userID int64, typ domain.NotificationType, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	n := &domain.Notification{
		UserID:    userID,
		Type:      typ,
		Data:      payload,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, actor *domain.User, unreadOnly bool, limit, offset int) ([]*domain.Notification, int, error) {
	if actor == nil {
		return nil, 0, domain.ErrUnauthenticated
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListForUser(ctx, actor.ID, unreadOnly, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	return s.repo.MarkRead(ctx, actor.ID, id, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) (int64, error) {
	if actor == nil {
		return 0, domain.ErrUnauthenticated
	}
	return s.repo.MarkAllRead(ctx, actor.ID, time.Now())
}

// notify sends a notification and only logs failures; a missed
// notification never fails the action that caused it.
func notify(ctx context.Context, n Notifier, userID int64, typ domain.NotificationType, data map[string]interface{}) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, typ, data); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "type": typ}).Warn("failed to send notification")
	}
}
