package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/semver"
)

// resolvePageSize bounds a single ListByMod call while resolving; mods with
// more published versions are paged through.
const resolvePageSize = 100

// DependencyService turns declared dependency constraints into concrete
// mod version links.
type DependencyService struct {
	versionRepo ports.ModVersionRepository
}

func NewDependencyService(versionRepo ports.ModVersionRepository) *DependencyService {
	return &DependencyService{versionRepo: versionRepo}
}

func (s *DependencyService) ResolveModVersion(ctx context.Context, versionID int64) error {
	deps, err := s.versionRepo.ListDependencies(ctx, versionID)
	if err != nil {
		return fmt.Errorf("list dependencies: %w", err)
	}

	var resolved []domain.ResolvedDependency
	for _, dep := range deps {
		candidates, err := publishedVersions(ctx, s.versionRepo, dep.DependentModID)
		if err != nil {
			return err
		}

		ids, err := matchModVersions(dep.Constraint, candidates)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"mod_version_id": versionID,
				"dependency_id":  dep.ID,
			}).Warn("invalid dependency constraint")
			continue
		}
		if len(ids) == 0 {
			log.WithFields(log.Fields{
				"mod_version_id": versionID,
				"dependency_id":  dep.ID,
				"constraint":     dep.Constraint,
			}).Warn("dependency constraint matches no published version")
			continue
		}

		for _, id := range ids {
			resolved = append(resolved, domain.ResolvedDependency{
				ModVersionID:         versionID,
				DependencyID:         dep.ID,
				ResolvedModVersionID: id,
			})
		}
	}

	return s.versionRepo.ReplaceResolvedDependencies(ctx, versionID, resolved)
}

func (s *DependencyService) ResolveAll(ctx context.Context) (int, error) {
	ids, err := s.versionRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list mod versions: %w", err)
	}

	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := s.ResolveModVersion(ctx, id); err != nil {
			failed++
			log.WithError(err).WithField("mod_version_id", id).Warn("dependency resolution failed")
		}
	}

	log.WithFields(log.Fields{"versions": len(ids), "failed": failed}).Info("dependencies resolved")
	return failed, nil
}

func publishedVersions(ctx context.Context, repo ports.ModVersionRepository, modID int64) ([]*domain.ModVersion, error) {
	var all []*domain.ModVersion
	offset := 0
	for {
		page, total, err := repo.ListByMod(ctx, modID, ports.VersionListFilter{
			PublishedOnly: true,
			Limit:         resolvePageSize,
			Offset:        offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list versions of mod %d: %w", modID, err)
		}
		all = append(all, page...)
		offset += len(page)
		if len(page) == 0 || offset >= total {
			return all, nil
		}
	}
}

// matchModVersions returns the ids of candidates satisfying constraint,
// newest first. The first id is the recommended version.
func matchModVersions(constraint string, candidates []*domain.ModVersion) ([]int64, error) {
	byVersion := make(map[string]int64, len(candidates))
	versions := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if _, dup := byVersion[v.Version]; dup {
			continue
		}
		byVersion[v.Version] = v.ID
		versions = append(versions, v.Version)
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
