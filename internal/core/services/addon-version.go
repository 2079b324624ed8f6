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

type AddonVersionService struct {
	repo        ports.AddonVersionRepository
	addonRepo   ports.AddonRepository
	modVersions ports.ModVersionRepository
	bans        ports.BanRepository
}

func NewAddonVersionService(repo ports.AddonVersionRepository, addonRepo ports.AddonRepository, modVersions ports.ModVersionRepository, bans ports.BanRepository) *AddonVersionService {
	return &AddonVersionService{repo: repo, addonRepo: addonRepo, modVersions: modVersions, bans: bans}
}

type CreateAddonVersionRequest struct {
	Version              string
	Description          string
	Link                 string
	ModVersionConstraint string
	VirusTotalLink       string
	PublishedAt          *time.Time
}

func (s *AddonVersionService) Create(ctx context.Context, actor *domain.User, addonID int64, req CreateAddonVersionRequest) (*domain.AddonVersion, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	addon, err := s.editableAddon(ctx, actor, addonID)
	if err != nil {
		return nil, err
	}

	version, err := semver.Canonical(req.Version)
	if err != nil {
		return nil, err
	}
	parts, err := semver.Parse(version)
	if err != nil {
		return nil, err
	}
	if err := semver.ValidateConstraint(req.ModVersionConstraint); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &domain.AddonVersion{
		VersionParts:         parts,
		AddonID:              addon.ID,
		Version:              version,
		Description:          req.Description,
		Link:                 req.Link,
		ModVersionConstraint: semver.NormalizeConstraint(req.ModVersionConstraint),
		VirusTotalLink:       req.VirusTotalLink,
		PublishedAt:          req.PublishedAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	if err := s.ResolveAddonVersion(ctx, v.ID); err != nil {
		log.WithError(err).WithField("addon_version_id", v.ID).Warn("failed to resolve addon version")
	}

	return s.repo.GetByID(ctx, v.ID)
}

func (s *AddonVersionService) ListByAddon(ctx context.Context, viewer *domain.User, addonID int64, filter ports.VersionListFilter) ([]*domain.AddonVersion, int, error) {
	addon, err := s.addonRepo.GetByID(ctx, addonID)
	if err != nil {
		return nil, 0, err
	}

	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	if !addon.CanBeEditedBy(viewer) {
		if !addon.IsPublished(time.Now()) {
			return nil, 0, domain.ErrAddonNotFound
		}
		filter.PublishedOnly = true
	}
	return s.repo.ListByAddon(ctx, addonID, filter)
}

func (s *AddonVersionService) Update(ctx context.Context, actor *domain.User, id int64, updates map[string]interface{}) (*domain.AddonVersion, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableAddon(ctx, actor, v.AddonID); err != nil {
		return nil, err
	}

	if val, ok := updates["version"]; ok && val != nil {
		version, err := semver.Canonical(val.(string))
		if err != nil {
			return nil, err
		}
		parts, err := semver.Parse(version)
		if err != nil {
			return nil, err
		}
		v.Version = version
		v.VersionParts = parts
	}
	if val, ok := updates["description"]; ok && val != nil {
		v.Description = val.(string)
	}
	if val, ok := updates["link"]; ok && val != nil {
		v.Link = val.(string)
	}
	if val, ok := updates["mod_version_constraint"]; ok && val != nil {
		if err := semver.ValidateConstraint(val.(string)); err != nil {
			return nil, err
		}
		v.ModVersionConstraint = semver.NormalizeConstraint(val.(string))
	}
	if val, ok := updates["virus_total_link"]; ok && val != nil {
		v.VirusTotalLink = val.(string)
	}
	if val, ok := updates["published_at"]; ok && val != nil {
		publishedAt := val.(time.Time)
		v.PublishedAt = &publishedAt
	}
	if val, ok := updates["disabled"]; ok && val != nil {
		v.Disabled = val.(bool)
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	if err := s.ResolveAddonVersion(ctx, v.ID); err != nil {
		log.WithError(err).WithField("addon_version_id", v.ID).Warn("failed to resolve addon version")
	}

	return s.repo.GetByID(ctx, id)
}

func (s *AddonVersionService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.editableAddon(ctx, actor, v.AddonID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ResolveAddonVersion matches the version's mod constraint against the
// published versions of the parent mod. Detached addons resolve to nothing.
func (s *AddonVersionService) ResolveAddonVersion(ctx context.Context, versionID int64) error {
	v, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	addon, err := s.addonRepo.GetByID(ctx, v.AddonID)
	if err != nil {
		return err
	}

	var ids []int64
	if addon.ModID != nil && !addon.IsDetached() {
		candidates, err := publishedVersions(ctx, s.modVersions, *addon.ModID)
		if err != nil {
			return err
		}
		ids, err = matchModVersions(v.ModVersionConstraint, candidates)
		if err != nil {
			return err
		}
	}

	return s.repo.ReplaceResolvedModVersions(ctx, versionID, ids)
}

func (s *AddonVersionService) ResolveAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list addon versions: %w", err)
	}

	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := s.ResolveAddonVersion(ctx, id); err != nil {
			failed++
			log.WithError(err).WithField("addon_version_id", id).Warn("addon resolution failed")
		}
	}

	log.WithFields(log.Fields{"versions": len(ids), "failed": failed}).Info("addon versions resolved")
	return failed, nil
}

func (s *AddonVersionService) editableAddon(ctx context.Context, actor *domain.User, addonID int64) (*domain.Addon, error) {
	addon, err := s.addonRepo.GetByID(ctx, addonID)
	if err != nil {
		return nil, err
	}
	if addon.DeletedAt != nil {
		return nil, domain.ErrAddonNotFound
	}
	if !addon.CanBeEditedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return addon, nil
}
