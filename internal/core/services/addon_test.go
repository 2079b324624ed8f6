package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forge-service/internal/core/domain"
	"forge-service/internal/testutil"
)

func TestAddonService_Create(t *testing.T) {
	repo := new(testutil.MockAddonRepo)
	mods := new(testutil.MockModRepo)
	svc := NewAddonService(repo, mods, new(testutil.MockBanRepo).NotBanned())

	mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Addon) bool {
		return *a.ModID == 1 && *a.OwnerID == 9 && a.Slug == "extra-loot"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Addon).ID = 30
	}).Return(nil)
	repo.On("GetByID", mock.Anything, int64(30)).Return(&domain.Addon{ID: 30, Name: "Extra Loot"}, nil)

	addon, err := svc.Create(context.Background(), &domain.User{ID: 9}, 1, CreateAddonRequest{Name: " Extra Loot "})
	require.NoError(t, err)
	assert.Equal(t, int64(30), addon.ID)
	repo.AssertExpectations(t)
}

func TestAddonService_Create_HiddenMod(t *testing.T) {
	mods := new(testutil.MockModRepo)
	svc := NewAddonService(new(testutil.MockAddonRepo), mods, new(testutil.MockBanRepo).NotBanned())

	mods.On("GetByID", mock.Anything, int64(1)).Return(&domain.Mod{ID: 1, OwnerID: ptr(int64(5))}, nil)

	_, err := svc.Create(context.Background(), &domain.User{ID: 9}, 1, CreateAddonRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestAddonService_Detach(t *testing.T) {
	tests := []struct {
		name    string
		actor   *domain.User
		addon   *domain.Addon
		wantErr error
	}{
		{
			name:  "mod owner",
			actor: &domain.User{ID: 5},
			addon: &domain.Addon{ID: 3, ModID: ptr(int64(1))},
		},
		{
			name:  "moderator",
			actor: &domain.User{ID: 8, Role: domain.RoleModerator},
			addon: &domain.Addon{ID: 3, ModID: ptr(int64(1))},
		},
		{
			name:    "addon owner is not enough",
			actor:   &domain.User{ID: 9},
			addon:   &domain.Addon{ID: 3, ModID: ptr(int64(1)), OwnerID: ptr(int64(9))},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "already detached",
			actor:   &domain.User{ID: 5},
			addon:   &domain.Addon{ID: 3, ModID: ptr(int64(1)), DetachedAt: ptr(time.Now())},
			wantErr: domain.ErrAddonAlreadyDetached,
		},
		{
			name:    "guest",
			wantErr: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testutil.MockAddonRepo)
			mods := new(testutil.MockModRepo)
			svc := NewAddonService(repo, mods, nil)

			if tt.addon != nil {
				repo.On("GetByID", mock.Anything, tt.addon.ID).Return(tt.addon, nil)
			}
			mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil).Maybe()
			repo.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.Addon) bool {
				return a.DetachedAt != nil
			})).Return(nil).Maybe()

			_, err := svc.Detach(context.Background(), tt.actor, 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}
