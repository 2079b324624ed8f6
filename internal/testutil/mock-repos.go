package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// MockModRepo is a mock of ModRepository.
type MockModRepo struct {
	mock.Mock
}

func (m *MockModRepo) Create(ctx context.Context, mod *domain.Mod) error {
	args := m.Called(ctx, mod)
	return args.Error(0)
}

func (m *MockModRepo) GetByID(ctx context.Context, id int64) (*domain.Mod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mod), args.Error(1)
}

func (m *MockModRepo) Update(ctx context.Context, mod *domain.Mod) error {
	args := m.Called(ctx, mod)
	return args.Error(0)
}

func (m *MockModRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockModRepo) Restore(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockModRepo) List(ctx context.Context, filter ports.ModListFilter) ([]*domain.Mod, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Mod), args.Int(1), args.Error(2)
}

func (m *MockModRepo) SetAuthors(ctx context.Context, modID int64, userIDs []int64) error {
	args := m.Called(ctx, modID, userIDs)
	return args.Error(0)
}

// MockModVersionRepo is a mock of ModVersionRepository.
type MockModVersionRepo struct {
	mock.Mock
}

func (m *MockModVersionRepo) Create(ctx context.Context, version *domain.ModVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockModVersionRepo) GetByID(ctx context.Context, id int64) (*domain.ModVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModVersion), args.Error(1)
}

func (m *MockModVersionRepo) Update(ctx context.Context, version *domain.ModVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockModVersionRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockModVersionRepo) ListByMod(ctx context.Context, modID int64, filter ports.VersionListFilter) ([]*domain.ModVersion, int, error) {
	args := m.Called(ctx, modID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ModVersion), args.Int(1), args.Error(2)
}

func (m *MockModVersionRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockModVersionRepo) ReplaceDependencies(ctx context.Context, versionID int64, deps []domain.ModDependency) error {
	args := m.Called(ctx, versionID, deps)
	return args.Error(0)
}

func (m *MockModVersionRepo) ListDependencies(ctx context.Context, versionID int64) ([]domain.ModDependency, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModDependency), args.Error(1)
}

func (m *MockModVersionRepo) ReplaceResolvedDependencies(ctx context.Context, versionID int64, resolved []domain.ResolvedDependency) error {
	args := m.Called(ctx, versionID, resolved)
	return args.Error(0)
}

func (m *MockModVersionRepo) ReplaceSptVersions(ctx context.Context, versionID int64, sptVersionIDs []int64) error {
	args := m.Called(ctx, versionID, sptVersionIDs)
	return args.Error(0)
}

// MockAddonRepo is a mock of AddonRepository.
type MockAddonRepo struct {
	mock.Mock
}

func (m *MockAddonRepo) Create(ctx context.Context, addon *domain.Addon) error {
	args := m.Called(ctx, addon)
	return args.Error(0)
}

func (m *MockAddonRepo) GetByID(ctx context.Context, id int64) (*domain.Addon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Addon), args.Error(1)
}

func (m *MockAddonRepo) Update(ctx context.Context, addon *domain.Addon) error {
	args := m.Called(ctx, addon)
	return args.Error(0)
}

func (m *MockAddonRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAddonRepo) List(ctx context.Context, filter ports.AddonListFilter) ([]*domain.Addon, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Addon), args.Int(1), args.Error(2)
}

// MockAddonVersionRepo is a mock of AddonVersionRepository.
type MockAddonVersionRepo struct {
	mock.Mock
}

func (m *MockAddonVersionRepo) Create(ctx context.Context, version *domain.AddonVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockAddonVersionRepo) GetByID(ctx context.Context, id int64) (*domain.AddonVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddonVersion), args.Error(1)
}

func (m *MockAddonVersionRepo) Update(ctx context.Context, version *domain.AddonVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockAddonVersionRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAddonVersionRepo) ListByAddon(ctx context.Context, addonID int64, filter ports.VersionListFilter) ([]*domain.AddonVersion, int, error) {
	args := m.Called(ctx, addonID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.AddonVersion), args.Int(1), args.Error(2)
}

func (m *MockAddonVersionRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAddonVersionRepo) ReplaceResolvedModVersions(ctx context.Context, versionID int64, modVersionIDs []int64) error {
	args := m.Called(ctx, versionID, modVersionIDs)
	return args.Error(0)
}

// MockSptVersionRepo is a mock of SptVersionRepository.
type MockSptVersionRepo struct {
	mock.Mock
}

func (m *MockSptVersionRepo) List(ctx context.Context) ([]*domain.SptVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SptVersion), args.Error(1)
}

func (m *MockSptVersionRepo) Create(ctx context.Context, version *domain.SptVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockSptVersionRepo) RecountMods(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLicenseRepo is a mock of LicenseRepository.
type MockLicenseRepo struct {
	mock.Mock
}

func (m *MockLicenseRepo) List(ctx context.Context) ([]*domain.License, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.License), args.Error(1)
}

func (m *MockLicenseRepo) GetByID(ctx context.Context, id int64) (*domain.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.License), args.Error(1)
}

// MockUserRepo is a mock of UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTrackingRepo is a mock of TrackingRepository.
type MockTrackingRepo struct {
	mock.Mock
}

func (m *MockTrackingRepo) Record(ctx context.Context, event *domain.TrackingEvent, since time.Time) (bool, error) {
	args := m.Called(ctx, event, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackingRepo) RecalculateModDownloads(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrackingRepo) RecalculateAddonDownloads(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCacheRepo is a mock of CacheRepository.
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
