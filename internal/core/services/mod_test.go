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

func ptr[T any](v T) *T { return &v }

func publishedMod(id, ownerID int64) *domain.Mod {
	return &domain.Mod{
		ID:           id,
		OwnerID:      ptr(ownerID),
		Name:         "Realism",
		Slug:         "realism",
		PublishedAt:  ptr(time.Now().Add(-time.Hour)),
		VersionCount: 1,
	}
}

func TestModService_Create(t *testing.T) {
	repo := new(testutil.MockModRepo)
	bans := new(testutil.MockBanRepo).NotBanned()
	svc := NewModService(repo, bans)

	actor := &domain.User{ID: 7, Name: "owner"}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Mod) bool {
		return m.Slug == "more-checkmarks" && *m.OwnerID == 7
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Mod).ID = 42
	}).Return(nil)
	repo.On("SetAuthors", mock.Anything, int64(42), []int64{8}).Return(nil)
	repo.On("GetByID", mock.Anything, int64(42)).Return(&domain.Mod{ID: 42, Name: "More Checkmarks"}, nil)

	mod, err := svc.Create(context.Background(), actor, CreateModRequest{
		Name:      "  More Checkmarks ",
		AuthorIDs: []int64{7, 8, 8},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), mod.ID)
	repo.AssertExpectations(t)
}

func TestModService_Create_EmptyName(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	_, err := svc.Create(context.Background(), &domain.User{ID: 1}, CreateModRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidModName)
}

func TestModService_Create_Guest(t *testing.T) {
	svc := NewModService(new(testutil.MockModRepo), new(testutil.MockBanRepo))

	_, err := svc.Create(context.Background(), nil, CreateModRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestModService_Create_Banned(t *testing.T) {
	bans := new(testutil.MockBanRepo)
	bans.On("ActiveForUser", mock.Anything, int64(3), mock.Anything).Return(&domain.Ban{ID: 1, UserID: 3}, nil)
	svc := NewModService(new(testutil.MockModRepo), bans)

	_, err := svc.Create(context.Background(), &domain.User{ID: 3}, CreateModRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUserBanned)
}

func TestModService_Get_HiddenFromGuests(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, nil)

	unpublished := &domain.Mod{ID: 1, OwnerID: ptr(int64(5)), VersionCount: 1}
	repo.On("GetByID", mock.Anything, int64(1)).Return(unpublished, nil)

	_, err := svc.Get(context.Background(), nil, 1)
	assert.ErrorIs(t, err, domain.ErrModNotFound)

	mod, err := svc.Get(context.Background(), &domain.User{ID: 5}, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), mod.ID)
}

func TestModService_Get_NoVersions(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, nil)

	mod := publishedMod(1, 5)
	mod.VersionCount = 0
	repo.On("GetByID", mock.Anything, int64(1)).Return(mod, nil)

	_, err := svc.Get(context.Background(), &domain.User{ID: 9}, 1)
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestModService_Get_DeletedVisibleToModerators(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, nil)

	mod := publishedMod(1, 5)
	mod.DeletedAt = ptr(time.Now())
	repo.On("GetByID", mock.Anything, int64(1)).Return(mod, nil)

	_, err := svc.Get(context.Background(), &domain.User{ID: 5}, 1)
	assert.ErrorIs(t, err, domain.ErrModNotFound)

	got, err := svc.Get(context.Background(), &domain.User{ID: 2, Role: domain.RoleModerator}, 1)
	assert.NoError(t, err)
	assert.Equal(t, mod, got)
}

func TestModService_List_DefaultLimit(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, nil)

	filter := ports.ModListFilter{IncludeHidden: true, IncludeDeleted: true}
	expected := ports.ModListFilter{Limit: 20}

	repo.On("List", mock.Anything, expected).Return([]*domain.Mod{}, 0, nil)

	_, _, err := svc.List(context.Background(), nil, filter)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestModService_Update_Forbidden(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)

	_, err := svc.Update(context.Background(), &domain.User{ID: 6}, 1, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestModService_Update_ByAuthor(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	mod := publishedMod(1, 5)
	mod.AuthorIDs = []int64{6}
	repo.On("GetByID", mock.Anything, int64(1)).Return(mod, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Mod) bool {
		return m.Name == "Realism Overhaul" && m.Slug == "realism-overhaul" && m.ContainsAds
	})).Return(nil)

	_, err := svc.Update(context.Background(), &domain.User{ID: 6}, 1, map[string]interface{}{
		"name":         "Realism Overhaul",
		"contains_ads": true,
	})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestModService_Update_SlugConflictKeepsAuthors(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrModSlugConflict)

	_, err := svc.Update(context.Background(), &domain.User{ID: 5}, 1, map[string]interface{}{
		"name":       "Taken",
		"author_ids": []int64{5, 7},
	})
	assert.ErrorIs(t, err, domain.ErrModSlugConflict)
	repo.AssertNotCalled(t, "SetAuthors", mock.Anything, mock.Anything, mock.Anything)
}

func TestModService_Update_SetsAuthorsAfterUpdate(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	var calls []string
	repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		calls = append(calls, "Update")
	})
	repo.On("SetAuthors", mock.Anything, int64(1), []int64{7}).Return(nil).Run(func(mock.Arguments) {
		calls = append(calls, "SetAuthors")
	})

	_, err := svc.Update(context.Background(), &domain.User{ID: 5}, 1, map[string]interface{}{
		"author_ids": []int64{5, 7},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Update", "SetAuthors"}, calls)
}

func TestModService_Delete(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, new(testutil.MockBanRepo).NotBanned())

	repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	repo.On("SoftDelete", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.Delete(context.Background(), &domain.User{ID: 5}, 1)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestModService_Restore(t *testing.T) {
	repo := new(testutil.MockModRepo)
	svc := NewModService(repo, nil)
	moderator := &domain.User{ID: 2, Role: domain.RoleModerator}

	t.Run("not deleted", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil).Once()

		_, err := svc.Restore(context.Background(), moderator, 1)
		assert.ErrorIs(t, err, domain.ErrNotDeleted)
	})

	t.Run("member", func(t *testing.T) {
		_, err := svc.Restore(context.Background(), &domain.User{ID: 5}, 1)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("deleted", func(t *testing.T) {
		deleted := publishedMod(1, 5)
		deleted.DeletedAt = ptr(time.Now())
		repo.On("GetByID", mock.Anything, int64(1)).Return(deleted, nil).Once()
		repo.On("Restore", mock.Anything, int64(1)).Return(nil).Once()
		repo.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil).Once()

		mod, err := svc.Restore(context.Background(), moderator, 1)
		assert.NoError(t, err)
		assert.Nil(t, mod.DeletedAt)
	})
}

func TestModService_SetFeatured_RequiresModerator(t *testing.T) {
	svc := NewModService(new(testutil.MockModRepo), nil)

	_, err := svc.SetFeatured(context.Background(), &domain.User{ID: 5}, 1, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Realism Mod", "realism-mod"},
		{"SAIN - Solarint's AI", "sain-solarints-ai"},
		{"Item_Info.v2", "item-info-v2"},
		{"---", ""},
		{"Ünïcode Name", "ncode-name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateSlug(tt.name))
		})
	}
}
