package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/semver"
)

// SptVersionService keeps the SPT version catalogue and the compatibility
// links between mod versions and SPT versions.
type SptVersionService struct {
	repo        ports.SptVersionRepository
	versionRepo ports.ModVersionRepository
}

func NewSptVersionService(repo ports.SptVersionRepository, versionRepo ports.ModVersionRepository) *SptVersionService {
	return &SptVersionService{repo: repo, versionRepo: versionRepo}
}

func (s *SptVersionService) List(ctx context.Context) ([]*domain.SptVersion, error) {
	return s.repo.List(ctx)
}

func (s *SptVersionService) Create(ctx context.Context, actor *domain.User, version, link, colorClass string) (*domain.SptVersion, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, err
	}

	canonical, err := semver.Canonical(version)
	if err != nil {
		return nil, err
	}
	parts, err := semver.Parse(canonical)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	spt := &domain.SptVersion{
		VersionParts: parts,
		Version:      canonical,
		Link:         link,
		ColorClass:   colorClass,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, spt); err != nil {
		return nil, err
	}
	return spt, nil
}

// ResolveModVersion matches the version's SPT constraint against every known
// SPT version and stores the result.
func (s *SptVersionService) ResolveModVersion(ctx context.Context, versionID int64) error {
	spts, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list spt versions: %w", err)
	}
	return s.resolveOne(ctx, versionID, spts)
}

// ResolveAll re-resolves every mod version and refreshes the per-version mod
// counts. Individual failures are logged and counted.
func (s *SptVersionService) ResolveAll(ctx context.Context) (int, error) {
	spts, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list spt versions: %w", err)
	}
	ids, err := s.versionRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list mod versions: %w", err)
	}

	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := s.resolveOne(ctx, id, spts); err != nil {
			failed++
			log.WithError(err).WithField("mod_version_id", id).Warn("spt resolution failed")
		}
	}

	if err := s.repo.RecountMods(ctx); err != nil {
		return failed, fmt.Errorf("recount spt mods: %w", err)
	}

	log.WithFields(log.Fields{"versions": len(ids), "failed": failed}).Info("spt versions resolved")
	return failed, nil
}

func (s *SptVersionService) resolveOne(ctx context.Context, versionID int64, spts []*domain.SptVersion) error {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return err
	}

	ids, err := MatchSptVersions(v.SptVersionConstraint, spts)
	if err != nil {
		return err
	}
	return s.versionRepo.ReplaceSptVersions(ctx, versionID, ids)
}

// MatchSptVersions returns the ids of spts satisfying constraint, newest first.
func MatchSptVersions(constraint string, spts []*domain.SptVersion) ([]int64, error) {
	byVersion := make(map[string]int64, len(spts))
	versions := make([]string, 0, len(spts))
	for _, spt := range spts {
		byVersion[spt.Version] = spt.ID
		versions = append(versions, spt.Version)
	}

	matched, err := semver.Matching(constraint, versions)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(matched))
	for _, v := range matched {
		ids = append(ids, byVersion[v])
	}
	return ids, nil
}
