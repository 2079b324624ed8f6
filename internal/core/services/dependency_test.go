package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/testutil"
)

func TestDependencyService_ResolveModVersion(t *testing.T) {
	repo := new(testutil.MockModVersionRepo)
	svc := NewDependencyService(repo)

	repo.On("ListDependencies", mock.Anything, int64(10)).Return([]domain.ModDependency{
		{ID: 1, DependentModID: 2, Constraint: "^1.0.0"},
		{ID: 2, DependentModID: 3, Constraint: "^9.0.0"},
	}, nil)
	repo.On("ListByMod", mock.Anything, int64(2), ports.VersionListFilter{PublishedOnly: true, Limit: resolvePageSize}).
		Return([]*domain.ModVersion{
			{ID: 20, Version: "1.0.0"},
			{ID: 21, Version: "1.4.2"},
			{ID: 22, Version: "2.0.0"},
		}, 3, nil)
	repo.On("ListByMod", mock.Anything, int64(3), ports.VersionListFilter{PublishedOnly: true, Limit: resolvePageSize}).
		Return([]*domain.ModVersion{{ID: 30, Version: "1.0.0"}}, 1, nil)
	repo.On("ReplaceResolvedDependencies", mock.Anything, int64(10), []domain.ResolvedDependency{
		{ModVersionID: 10, DependencyID: 1, ResolvedModVersionID: 21},
		{ModVersionID: 10, DependencyID: 1, ResolvedModVersionID: 20},
	}).Return(nil)

	assert.NoError(t, svc.ResolveModVersion(context.Background(), 10))
	repo.AssertExpectations(t)
}

func TestPublishedVersions_Pages(t *testing.T) {
	repo := new(testutil.MockModVersionRepo)

	first := make([]*domain.ModVersion, resolvePageSize)
	for i := range first {
		first[i] = &domain.ModVersion{ID: int64(i + 1)}
	}
	repo.On("ListByMod", mock.Anything, int64(2), ports.VersionListFilter{PublishedOnly: true, Limit: resolvePageSize}).
		Return(first, resolvePageSize+1, nil)
	repo.On("ListByMod", mock.Anything, int64(2), ports.VersionListFilter{PublishedOnly: true, Limit: resolvePageSize, Offset: resolvePageSize}).
		Return([]*domain.ModVersion{{ID: 999}}, resolvePageSize+1, nil)

	all, err := publishedVersions(context.Background(), repo, 2)
	assert.NoError(t, err)
	assert.Len(t, all, resolvePageSize+1)
}

func TestAddonVersionService_ResolveAddonVersion(t *testing.T) {
	repo := new(testutil.MockAddonVersionRepo)
	addons := new(testutil.MockAddonRepo)
	modVersions := new(testutil.MockModVersionRepo)
	svc := NewAddonVersionService(repo, addons, modVersions, nil)

	repo.On("GetByID", mock.Anything, int64(50)).Return(&domain.AddonVersion{ID: 50, AddonID: 5, ModVersionConstraint: "~1.4.0"}, nil)
	addons.On("GetByID", mock.Anything, int64(5)).Return(&domain.Addon{ID: 5, ModID: ptr(int64(2))}, nil)
	modVersions.On("ListByMod", mock.Anything, int64(2), ports.VersionListFilter{PublishedOnly: true, Limit: resolvePageSize}).
		Return([]*domain.ModVersion{{ID: 20, Version: "1.0.0"}, {ID: 21, Version: "1.4.2"}}, 2, nil)
	repo.On("ReplaceResolvedModVersions", mock.Anything, int64(50), []int64{21}).Return(nil)

	assert.NoError(t, svc.ResolveAddonVersion(context.Background(), 50))
	repo.AssertExpectations(t)
}

func TestAddonVersionService_ResolveAddonVersion_Detached(t *testing.T) {
	repo := new(testutil.MockAddonVersionRepo)
	addons := new(testutil.MockAddonRepo)
	modVersions := new(testutil.MockModVersionRepo)
	svc := NewAddonVersionService(repo, addons, modVersions, nil)

	repo.On("GetByID", mock.Anything, int64(50)).Return(&domain.AddonVersion{ID: 50, AddonID: 5}, nil)
	addons.On("GetByID", mock.Anything, int64(5)).Return(&domain.Addon{ID: 5, ModID: ptr(int64(2)), DetachedAt: ptr(time.Now())}, nil)
	repo.On("ReplaceResolvedModVersions", mock.Anything, int64(50), []int64(nil)).Return(nil)

	assert.NoError(t, svc.ResolveAddonVersion(context.Background(), 50))
	modVersions.AssertNotCalled(t, "ListByMod", mock.Anything, mock.Anything, mock.Anything)
}
