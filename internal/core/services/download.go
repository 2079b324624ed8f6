package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// DownloadService records download events and maintains the cached
// download counters on versions, mods and addons.
type DownloadService struct {
	tracking      ports.TrackingRepository
	modVersions   ports.ModVersionRepository
	addonVersions ports.AddonVersionRepository
}

func NewDownloadService(tracking ports.TrackingRepository, modVersions ports.ModVersionRepository, addonVersions ports.AddonVersionRepository) *DownloadService {
	return &DownloadService{tracking: tracking, modVersions: modVersions, addonVersions: addonVersions}
}

// RecordModDownload counts a download of a mod version and returns the
// version so the caller can redirect to its link. The bool reports whether
// the download was counted or debounced.
func (s *DownloadService) RecordModDownload(ctx context.Context, viewer *domain.User, versionID int64, ip string) (*domain.ModVersion, bool, error) {
	v, err := s.modVersions.GetByID(ctx, versionID)
	if err != nil {
		return nil, false, err
	}
	if !v.IsPublished(time.Now()) {
		return nil, false, domain.ErrModVersionNotFound
	}

	counted, err := s.record(ctx, domain.EventModDownload, "mod_version", versionID, viewer, ip)
	return v, counted, err
}

func (s *DownloadService) RecordAddonDownload(ctx context.Context, viewer *domain.User, versionID int64, ip string) (*domain.AddonVersion, bool, error) {
	v, err := s.addonVersions.GetByID(ctx, versionID)
	if err != nil {
		return nil, false, err
	}
	if !v.IsPublished(time.Now()) {
		return nil, false, domain.ErrAddonVersionNotFound
	}

	counted, err := s.record(ctx, domain.EventAddonDownload, "addon_version", versionID, viewer, ip)
	return v, counted, err
}

func (s *DownloadService) record(ctx context.Context, name domain.TrackingEventName, visitableType string, id int64, viewer *domain.User, ip string) (bool, error) {
	now := time.Now()
	event := &domain.TrackingEvent{
		EventName:     name,
		VisitableType: visitableType,
		VisitableID:   id,
		IP:            ip,
		CreatedAt:     now,
	}
	if viewer != nil {
		event.UserID = &viewer.ID
	}

	counted, err := s.tracking.Record(ctx, event, now.Add(-domain.DownloadDebounce))
	if err != nil {
		return false, fmt.Errorf("record download: %w", err)
	}
	return counted, nil
}

// Recalculate rebuilds every cached counter from the tracking events. Mods
// and addons are independent and run concurrently.
func (s *DownloadService) Recalculate(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.tracking.RecalculateModDownloads(gctx); err != nil {
			return fmt.Errorf("recalculate mod downloads: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.tracking.RecalculateAddonDownloads(gctx); err != nil {
			return fmt.Errorf("recalculate addon downloads: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.WithField("latency_ms", time.Since(start).Milliseconds()).Info("download counts recalculated")
	return nil
}
