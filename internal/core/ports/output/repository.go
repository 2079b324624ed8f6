package ports

import (
	"context"
	"time"

	"forge-service/internal/core/domain"
)

// ============================================================================
// Filters
// ============================================================================

type ModListFilter struct {
	Search         string
	SptVersion     string
	Featured       *bool
	OwnerID        *int64
	IncludeHidden  bool // disabled, unpublished and version-less mods
	IncludeDeleted bool
	SortBy         string
	Order          string
	Limit          int
	Offset         int
}

type VersionListFilter struct {
	PublishedOnly bool
	SortBy        string
	Order         string
	Limit         int
	Offset        int
}

type AddonListFilter struct {
	ModID         int64
	IncludeHidden bool
	Limit         int
	Offset        int
}

// ============================================================================
// Content Repositories
// ============================================================================

// ModRepository defines the contract for mod persistence
type ModRepository interface {
	Create(ctx context.Context, mod *domain.Mod) error

	// GetByID returns soft-deleted mods too; callers decide visibility.
	GetByID(ctx context.Context, id int64) (*domain.Mod, error)

	Update(ctx context.Context, mod *domain.Mod) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64) error
	List(ctx context.Context, filter ModListFilter) ([]*domain.Mod, int, error)

	// SetAuthors replaces the additional author list of a mod.
	SetAuthors(ctx context.Context, modID int64, userIDs []int64) error
}

// ModVersionRepository defines the contract for mod version persistence
type ModVersionRepository interface {
	Create(ctx context.Context, version *domain.ModVersion) error
	GetByID(ctx context.Context, id int64) (*domain.ModVersion, error)
	Update(ctx context.Context, version *domain.ModVersion) error
	Delete(ctx context.Context, id int64) error
	ListByMod(ctx context.Context, modID int64, filter VersionListFilter) ([]*domain.ModVersion, int, error)

	// ListIDs returns every mod version id, used by the bulk resolvers.
	ListIDs(ctx context.Context) ([]int64, error)

	ReplaceDependencies(ctx context.Context, versionID int64, deps []domain.ModDependency) error
	ListDependencies(ctx context.Context, versionID int64) ([]domain.ModDependency, error)
	ReplaceResolvedDependencies(ctx context.Context, versionID int64, resolved []domain.ResolvedDependency) error
	ReplaceSptVersions(ctx context.Context, versionID int64, sptVersionIDs []int64) error
}

// AddonRepository defines the contract for addon persistence
type AddonRepository interface {
	Create(ctx context.Context, addon *domain.Addon) error
	GetByID(ctx context.Context, id int64) (*domain.Addon, error)
	Update(ctx context.Context, addon *domain.Addon) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, filter AddonListFilter) ([]*domain.Addon, int, error)
}

// AddonVersionRepository defines the contract for addon version persistence
type AddonVersionRepository interface {
	Create(ctx context.Context, version *domain.AddonVersion) error
	GetByID(ctx context.Context, id int64) (*domain.AddonVersion, error)
	Update(ctx context.Context, version *domain.AddonVersion) error
	Delete(ctx context.Context, id int64) error
	ListByAddon(ctx context.Context, addonID int64, filter VersionListFilter) ([]*domain.AddonVersion, int, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ReplaceResolvedModVersions(ctx context.Context, versionID int64, modVersionIDs []int64) error
}

type SptVersionRepository interface {
	List(ctx context.Context) ([]*domain.SptVersion, error)
	Create(ctx context.Context, version *domain.SptVersion) error

	// RecountMods refreshes the cached number of visible mods per SPT version.
	RecountMods(ctx context.Context) error
}

type LicenseRepository interface {
	List(ctx context.Context) ([]*domain.License, error)
	GetByID(ctx context.Context, id int64) (*domain.License, error)
}

// ============================================================================
// Users
// ============================================================================

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ============================================================================
// Tracking & Maintenance
// ============================================================================

type TrackingRepository interface {
	// Record stores the event and bumps the cached counters of the version
	// and its parent in one transaction, unless the same event from the same
	// ip was already recorded after since. It reports whether it counted.
	Record(ctx context.Context, event *domain.TrackingEvent, since time.Time) (bool, error)

	RecalculateModDownloads(ctx context.Context) error
	RecalculateAddonDownloads(ctx context.Context) error
}

type CacheRepository interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
