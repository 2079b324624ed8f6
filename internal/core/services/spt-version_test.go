package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forge-service/internal/core/domain"
	"forge-service/internal/testutil"
)

func sptCatalogue() []*domain.SptVersion {
	return []*domain.SptVersion{
		{ID: 1, Version: "3.8.0"},
		{ID: 2, Version: "3.8.3"},
		{ID: 3, Version: "3.9.0"},
		{ID: 4, Version: "3.10.0-beta.1", VersionParts: domain.VersionParts{Label: "beta.1"}},
	}
}

func TestMatchSptVersions(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       []int64
	}{
		{"tilde", "~3.8.0", []int64{2, 1}},
		{"hub wildcard", "3.8.x", []int64{2, 1}},
		{"range", ">=3.8.3 <=3.9.0", []int64{3, 2}},
		{"any skips prerelease", "", []int64{3, 2, 1}},
		{"explicit prerelease", ">=3.10.0-0", []int64{4}},
		{"no match", "^4.0.0", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchSptVersions(tt.constraint, sptCatalogue())
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchSptVersions_InvalidConstraint(t *testing.T) {
	_, err := MatchSptVersions("not a constraint", sptCatalogue())
	assert.ErrorIs(t, err, domain.ErrInvalidConstraint)
}

func TestSptVersionService_ResolveAll(t *testing.T) {
	repo := new(testutil.MockSptVersionRepo)
	versions := new(testutil.MockModVersionRepo)
	svc := NewSptVersionService(repo, versions)

	repo.On("List", mock.Anything).Return(sptCatalogue(), nil)
	repo.On("RecountMods", mock.Anything).Return(nil)
	versions.On("ListIDs", mock.Anything).Return([]int64{10, 11}, nil)
	versions.On("GetByID", mock.Anything, int64(10)).Return(&domain.ModVersion{ID: 10, SptVersionConstraint: "~3.9.0"}, nil)
	versions.On("GetByID", mock.Anything, int64(11)).Return(nil, domain.ErrModVersionNotFound)
	versions.On("ReplaceSptVersions", mock.Anything, int64(10), []int64{3}).Return(nil)

	failed, err := svc.ResolveAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, failed)
	repo.AssertExpectations(t)
	versions.AssertExpectations(t)
}

func TestSptVersionService_Create_ModeratorOnly(t *testing.T) {
	repo := new(testutil.MockSptVersionRepo)
	svc := NewSptVersionService(repo, nil)

	_, err := svc.Create(context.Background(), nil, "3.11.0", "", "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Create(context.Background(), &domain.User{ID: 1, Role: domain.RoleMember}, "3.11.0", "", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.SptVersion) bool {
		return v.Version == "3.11.0" && v.Minor == 11
	})).Return(nil)

	tests := []struct {
		name string
		role domain.Role
	}{
		{"moderator", domain.RoleModerator},
		{"administrator", domain.RoleAdministrator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spt, err := svc.Create(context.Background(), &domain.User{ID: 1, Role: tt.role}, "v3.11", "", "green")
			require.NoError(t, err)
			assert.Equal(t, "green", spt.ColorClass)
		})
	}
	repo.AssertNumberOfCalls(t, "Create", 2)
}
