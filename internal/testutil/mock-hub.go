package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// MockHubSource is a mock of HubSource.
type MockHubSource struct {
	mock.Mock
}

func (m *MockHubSource) Licenses(ctx context.Context) ([]ports.HubLicense, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubLicense), args.Error(1)
}

func (m *MockHubSource) Users(ctx context.Context, afterID int64, limit int) ([]ports.HubUser, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubUser), args.Error(1)
}

func (m *MockHubSource) Follows(ctx context.Context, afterID int64, limit int) ([]ports.HubFollow, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubFollow), args.Error(1)
}

func (m *MockHubSource) SptLabels(ctx context.Context) ([]ports.HubLabel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubLabel), args.Error(1)
}

func (m *MockHubSource) Mods(ctx context.Context, afterID int64, limit int) ([]ports.HubMod, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubMod), args.Error(1)
}

func (m *MockHubSource) ModAuthors(ctx context.Context, fileIDs []int64) (map[int64][]int64, error) {
	args := m.Called(ctx, fileIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]int64), args.Error(1)
}

func (m *MockHubSource) ModOptions(ctx context.Context, fileIDs []int64) (map[int64]ports.HubModOptions, error) {
	args := m.Called(ctx, fileIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]ports.HubModOptions), args.Error(1)
}

func (m *MockHubSource) ModVersions(ctx context.Context, afterID int64, limit int) ([]ports.HubModVersion, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubModVersion), args.Error(1)
}

func (m *MockHubSource) VersionLabels(ctx context.Context, versionIDs []int64) (map[int64][]string, error) {
	args := m.Called(ctx, versionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]string), args.Error(1)
}

func (m *MockHubSource) ModIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockImportRepo is a mock of ImportRepository.
type MockImportRepo struct {
	mock.Mock
}

func (m *MockImportRepo) UpsertLicenses(ctx context.Context, licenses []domain.License) (map[int64]int64, error) {
	args := m.Called(ctx, licenses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) UpsertUsers(ctx context.Context, users []domain.User) (map[int64]int64, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) UpsertBans(ctx context.Context, bans []domain.Ban) error {
	args := m.Called(ctx, bans)
	return args.Error(0)
}

func (m *MockImportRepo) UpsertFollows(ctx context.Context, follows []domain.UserFollow) error {
	args := m.Called(ctx, follows)
	return args.Error(0)
}

func (m *MockImportRepo) UpsertSptVersions(ctx context.Context, versions []domain.SptVersion) error {
	args := m.Called(ctx, versions)
	return args.Error(0)
}

func (m *MockImportRepo) UpsertMods(ctx context.Context, mods []domain.Mod) (map[int64]int64, error) {
	args := m.Called(ctx, mods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) UpsertModVersions(ctx context.Context, versions []domain.ModVersion) (map[int64]int64, error) {
	args := m.Called(ctx, versions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) ReplaceModAuthors(ctx context.Context, authors map[int64][]int64) error {
	args := m.Called(ctx, authors)
	return args.Error(0)
}

func (m *MockImportRepo) UserIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, hubIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) ModIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, hubIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockImportRepo) PruneMods(ctx context.Context, keep []int64, at time.Time) (int64, error) {
	args := m.Called(ctx, keep, at)
	return args.Get(0).(int64), args.Error(1)
}
