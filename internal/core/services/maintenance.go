package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	ports "forge-service/internal/core/ports/output"
)

type MaintenanceService struct {
	cache ports.CacheRepository
}

func NewMaintenanceService(cache ports.CacheRepository) *MaintenanceService {
	return &MaintenanceService{cache: cache}
}

// CleanupCache removes cache rows that expired more than olderThan ago.
func (s *MaintenanceService) CleanupCache(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		olderThan = 0
	}

	deleted, err := s.cache.DeleteExpired(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("delete expired cache rows: %w", err)
	}

	log.WithField("deleted", deleted).Info("cache cleaned up")
	return deleted, nil
}
