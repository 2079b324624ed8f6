package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type BanService struct {
	repo  ports.BanRepository
	users ports.UserRepository
}

func NewBanService(repo ports.BanRepository, users ports.UserRepository) *BanService {
	return &BanService{repo: repo, users: users}
}

type BanRequest struct {
	Comment string
	// Duration of zero bans permanently.
	Duration time.Duration
}

func (s *BanService) Ban(ctx context.Context, actor *domain.User, userID int64, req BanRequest) (*domain.Ban, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, err
	}
	if actor.ID == userID {
		return nil, domain.ErrCannotBanSelf
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.IsAdministrator() {
		return nil, domain.ErrCannotBanAdmin
	}

	now := time.Now()
	if active, err := s.repo.ActiveForUser(ctx, userID, now); err == nil {
		return active, nil
	} else if !errors.Is(err, domain.ErrBanNotFound) {
		return nil, err
	}

	ban := &domain.Ban{
		UserID:      userID,
		CreatedByID: &actor.ID,
		Comment:     req.Comment,
		CreatedAt:   now,
	}
	if req.Duration > 0 {
		expires := now.Add(req.Duration)
		ban.ExpiredAt = &expires
	}

	if err := s.repo.Create(ctx, ban); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"banned_by":  actor.ID,
		"expired_at": ban.ExpiredAt,
	}).Info("user banned")

	return ban, nil
}

// Unban expires the active ban of a user.
func (s *BanService) Unban(ctx context.Context, actor *domain.User, userID int64) error {
	if err := ensureModerator(actor); err != nil {
		return err
	}

	now := time.Now()
	ban, err := s.repo.ActiveForUser(ctx, userID, now)
	if err != nil {
		return err
	}
	if err := s.repo.Expire(ctx, ban.ID, now); err != nil {
		return err
	}

	log.WithFields(log.Fields{"user_id": userID, "unbanned_by": actor.ID}).Info("user unbanned")
	return nil
}

func (s *BanService) IsBanned(ctx context.Context, userID int64) (bool, error) {
	_, err := s.repo.ActiveForUser(ctx, userID, time.Now())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrBanNotFound):
		return false, nil
	default:
		return false, err
	}
}
