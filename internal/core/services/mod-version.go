package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/semver"
)

// ModVersionResolver recomputes data derived from a mod version, such as its
// SPT compatibility or resolved dependencies.
type ModVersionResolver interface {
	ResolveModVersion(ctx context.Context, versionID int64) error
}

type ModVersionService struct {
	repo      ports.ModVersionRepository
	modRepo   ports.ModRepository
	bans      ports.BanRepository
	resolvers []ModVersionResolver
}

func NewModVersionService(repo ports.ModVersionRepository, modRepo ports.ModRepository, bans ports.BanRepository, resolvers ...ModVersionResolver) *ModVersionService {
	return &ModVersionService{repo: repo, modRepo: modRepo, bans: bans, resolvers: resolvers}
}

// DependencyInput declares one dependency of a version being written.
type DependencyInput struct {
	ModID      int64
	Constraint string
}

type CreateModVersionRequest struct {
	Version              string
	Description          string
	Link                 string
	SptVersionConstraint string
	VirusTotalLink       string
	PublishedAt          *time.Time
	Dependencies         []DependencyInput
}

func (s *ModVersionService) Create(ctx context.Context, actor *domain.User, modID int64, req CreateModVersionRequest) (*domain.ModVersion, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	mod, err := s.editableMod(ctx, actor, modID)
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
	if err := semver.ValidateConstraint(req.SptVersionConstraint); err != nil {
		return nil, err
	}

	deps, err := s.buildDependencies(ctx, mod.ID, req.Dependencies)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &domain.ModVersion{
		VersionParts:         parts,
		ModID:                mod.ID,
		Version:              version,
		Description:          req.Description,
		Link:                 req.Link,
		SptVersionConstraint: semver.NormalizeConstraint(req.SptVersionConstraint),
		VirusTotalLink:       req.VirusTotalLink,
		PublishedAt:          req.PublishedAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceDependencies(ctx, v.ID, deps); err != nil {
		return nil, err
	}

	s.resolve(ctx, v.ID)

	return s.repo.GetByID(ctx, v.ID)
}

func (s *ModVersionService) Get(ctx context.Context, viewer *domain.User, id int64) (*domain.ModVersion, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mod, err := s.modRepo.GetByID(ctx, v.ModID)
	if err != nil {
		return nil, err
	}
	if mod.CanBeEditedBy(viewer) {
		return v, nil
	}

	now := time.Now()
	if !mod.IsPublished(now) || !v.IsPublished(now) {
		return nil, domain.ErrModVersionNotFound
	}
	return v, nil
}

func (s *ModVersionService) ListByMod(ctx context.Context, viewer *domain.User, modID int64, filter ports.VersionListFilter) ([]*domain.ModVersion, int, error) {
	mod, err := s.modRepo.GetByID(ctx, modID)
	if err != nil {
		return nil, 0, err
	}

	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	if !mod.CanBeEditedBy(viewer) {
		if !mod.IsPublished(time.Now()) {
			return nil, 0, domain.ErrModNotFound
		}
		filter.PublishedOnly = true
	}

	return s.repo.ListByMod(ctx, modID, filter)
}

func (s *ModVersionService) Update(ctx context.Context, actor *domain.User, id int64, updates map[string]interface{}) (*domain.ModVersion, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableMod(ctx, actor, v.ModID); err != nil {
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
	if val, ok := updates["spt_version_constraint"]; ok && val != nil {
		if err := semver.ValidateConstraint(val.(string)); err != nil {
			return nil, err
		}
		v.SptVersionConstraint = semver.NormalizeConstraint(val.(string))
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

	var deps []domain.ModDependency
	val, replaceDeps := updates["dependencies"]
	replaceDeps = replaceDeps && val != nil
	if replaceDeps {
		deps, err = s.buildDependencies(ctx, v.ModID, val.([]DependencyInput))
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	if replaceDeps {
		if err := s.repo.ReplaceDependencies(ctx, v.ID, deps); err != nil {
			return nil, err
		}
	}

	s.resolve(ctx, v.ID)

	return s.repo.GetByID(ctx, id)
}

func (s *ModVersionService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.editableMod(ctx, actor, v.ModID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *ModVersionService) editableMod(ctx context.Context, actor *domain.User, modID int64) (*domain.Mod, error) {
	mod, err := s.modRepo.GetByID(ctx, modID)
	if err != nil {
		return nil, err
	}
	if mod.DeletedAt != nil {
		return nil, domain.ErrModNotFound
	}
	if !mod.CanBeEditedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return mod, nil
}

func (s *ModVersionService) buildDependencies(ctx context.Context, modID int64, inputs []DependencyInput) ([]domain.ModDependency, error) {
	deps := make([]domain.ModDependency, 0, len(inputs))
	for _, in := range inputs {
		if in.ModID == modID {
			return nil, domain.ErrSelfDependency
		}
		if err := semver.ValidateConstraint(in.Constraint); err != nil {
			return nil, err
		}
		if _, err := s.modRepo.GetByID(ctx, in.ModID); err != nil {
			return nil, err
		}
		deps = append(deps, domain.ModDependency{
			DependentModID: in.ModID,
			Constraint:     semver.NormalizeConstraint(in.Constraint),
		})
	}
	return deps, nil
}

// resolve runs the derived-data resolvers. Failures are logged and do not
// fail the write; the bulk resolve commands repair any gaps.
func (s *ModVersionService) resolve(ctx context.Context, versionID int64) {
	for _, r := range s.resolvers {
		if err := r.ResolveModVersion(ctx, versionID); err != nil {
			log.WithError(err).WithField("mod_version_id", versionID).Warn("failed to resolve mod version")
		}
	}
}
