package services

import (
	"context"
	"errors"
	"time"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// ensureActive rejects guests and banned users for write operations.
func ensureActive(ctx context.Context, bans ports.BanRepository, actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if bans == nil {
		return nil
	}

	_, err := bans.ActiveForUser(ctx, actor.ID, time.Now())
	switch {
	case err == nil:
		return domain.ErrUserBanned
	case errors.Is(err, domain.ErrBanNotFound):
		return nil
	default:
		return err
	}
}

func ensureModerator(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsModerator() {
		return domain.ErrForbidden
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func generateSlug(name string) string {
	return domain.Slugify(name)
}
