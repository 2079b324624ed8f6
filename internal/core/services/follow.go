package services

import (
	"context"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type FollowService struct {
	repo     ports.FollowRepository
	users    ports.UserRepository
	notifier Notifier
}

func NewFollowService(repo ports.FollowRepository, users ports.UserRepository, notifier Notifier) *FollowService {
	return &FollowService{repo: repo, users: users, notifier: notifier}
}

// Follow is idempotent; only a new relation notifies the followed user.
func (s *FollowService) Follow(ctx context.Context, actor *domain.User, userID int64) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.ID == userID {
		return domain.ErrCannotFollowSelf
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	created, err := s.repo.Follow(ctx, actor.ID, userID)
	if err != nil {
		return err
	}
	if created {
		notify(ctx, s.notifier, userID, domain.NotificationNewFollow, map[string]interface{}{
			"follower_id":   actor.ID,
			"follower_name": actor.Name,
		})
	}
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, actor *domain.User, userID int64) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.ID == userID {
		return domain.ErrCannotFollowSelf
	}
	return s.repo.Unfollow(ctx, actor.ID, userID)
}

func (s *FollowService) Followers(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListFollowers(ctx, userID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListFollowing(ctx, userID, limit, offset)
}
