package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	"forge-service/internal/testutil"
)

type commentFixture struct {
	comments *testutil.MockCommentRepo
	mods     *testutil.MockModRepo
	users    *testutil.MockUserRepo
	notifier *testutil.MockNotifier
	svc      *CommentService
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		comments: new(testutil.MockCommentRepo),
		mods:     new(testutil.MockModRepo),
		users:    new(testutil.MockUserRepo),
		notifier: new(testutil.MockNotifier),
	}
	f.svc = NewCommentService(f.comments, f.mods, new(testutil.MockAddonRepo), f.users, new(testutil.MockBanRepo).NotBanned(), f.notifier)
	return f
}

func TestCommentService_Create_NotifiesOwner(t *testing.T) {
	f := newCommentFixture()

	f.mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	f.comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.Body == "Great mod" && c.ParentID == nil && c.RootID == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Comment).ID = 100
	}).Return(nil)
	f.notifier.On("Notify", mock.Anything, int64(5), domain.NotificationNewComment, mock.Anything).Return(nil)

	c, err := f.svc.Create(context.Background(), &domain.User{ID: 9, Name: "fan"}, CreateCommentRequest{
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		Body:            "  Great mod ",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100), c.ID)
	f.notifier.AssertExpectations(t)
}

func TestCommentService_Create_SelfCommentDoesNotNotify(t *testing.T) {
	f := newCommentFixture()

	f.mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	f.comments.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), &domain.User{ID: 5}, CreateCommentRequest{
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		Body:            "changelog below",
	})
	assert.NoError(t, err)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommentService_Create_ReplyInheritsRoot(t *testing.T) {
	f := newCommentFixture()

	rootID := int64(100)
	parent := &domain.Comment{
		ID:              101,
		UserID:          7,
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		ParentID:        &rootID,
		RootID:          &rootID,
	}

	f.mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	f.comments.On("GetByID", mock.Anything, int64(101)).Return(parent, nil)
	f.comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return *c.ParentID == 101 && *c.RootID == 100
	})).Return(nil)
	f.notifier.On("Notify", mock.Anything, int64(5), domain.NotificationNewComment, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, int64(7), domain.NotificationReply, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), &domain.User{ID: 9}, CreateCommentRequest{
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		ParentID:        ptr(int64(101)),
		Body:            "agreed",
	})
	assert.NoError(t, err)
	f.comments.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCommentService_Create_ReplyTargetMismatch(t *testing.T) {
	f := newCommentFixture()

	f.mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	f.comments.On("GetByID", mock.Anything, int64(50)).Return(&domain.Comment{
		ID:              50,
		CommentableType: domain.CommentableMod,
		CommentableID:   2,
	}, nil)

	_, err := f.svc.Create(context.Background(), &domain.User{ID: 9}, CreateCommentRequest{
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		ParentID:        ptr(int64(50)),
		Body:            "hi",
	})
	assert.ErrorIs(t, err, domain.ErrReplyTargetMismatch)
}

func TestCommentService_Create_Validation(t *testing.T) {
	f := newCommentFixture()

	_, err := f.svc.Create(context.Background(), &domain.User{ID: 9}, CreateCommentRequest{
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
		Body:            "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCommentBody)

	_, err = f.svc.Create(context.Background(), &domain.User{ID: 9}, CreateCommentRequest{
		CommentableType: "thread",
		CommentableID:   1,
		Body:            "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCommentable)
}

func TestCommentService_Update(t *testing.T) {
	f := newCommentFixture()

	f.comments.On("GetByID", mock.Anything, int64(100)).Return(&domain.Comment{ID: 100, UserID: 9, Body: "old"}, nil)
	f.comments.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.Body == "new" && c.EditedAt != nil
	})).Return(nil)

	_, err := f.svc.Update(context.Background(), &domain.User{ID: 8}, 100, "new")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	c, err := f.svc.Update(context.Background(), &domain.User{ID: 9}, 100, "new")
	assert.NoError(t, err)
	assert.NotNil(t, c.EditedAt)
}

func TestCommentService_Delete_ByModerator(t *testing.T) {
	f := newCommentFixture()

	f.comments.On("GetByID", mock.Anything, int64(100)).Return(&domain.Comment{ID: 100, UserID: 9}, nil)
	f.comments.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.DeletedAt != nil
	})).Return(nil)

	err := f.svc.Delete(context.Background(), &domain.User{ID: 2, Role: domain.RoleModerator}, 100)
	assert.NoError(t, err)
	f.comments.AssertExpectations(t)
}

func TestCommentService_SetPinned(t *testing.T) {
	f := newCommentFixture()

	f.mods.On("GetByID", mock.Anything, int64(1)).Return(publishedMod(1, 5), nil)
	f.comments.On("GetByID", mock.Anything, int64(100)).Return(&domain.Comment{
		ID:              100,
		UserID:          9,
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
	}, nil)
	f.comments.On("GetByID", mock.Anything, int64(101)).Return(&domain.Comment{
		ID:              101,
		ParentID:        ptr(int64(100)),
		CommentableType: domain.CommentableMod,
		CommentableID:   1,
	}, nil)
	f.comments.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.SetPinned(context.Background(), &domain.User{ID: 5}, 101, true)
	assert.ErrorIs(t, err, domain.ErrCannotPinReply)

	_, err = f.svc.SetPinned(context.Background(), &domain.User{ID: 9}, 100, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	c, err := f.svc.SetPinned(context.Background(), &domain.User{ID: 5}, 100, true)
	assert.NoError(t, err)
	assert.NotNil(t, c.PinnedAt)
}

func TestBuildThreads(t *testing.T) {
	now := time.Now()
	all := []*domain.Comment{
		{ID: 1, Body: "first"},
		{ID: 2, Body: "pinned", PinnedAt: &now},
		{ID: 3, Body: "reply", ParentID: ptr(int64(1)), RootID: ptr(int64(1))},
		{ID: 4, Body: "nested", ParentID: ptr(int64(3)), RootID: ptr(int64(1))},
		{ID: 5, Body: "removed", DeletedAt: &now},
	}

	threads := BuildThreads(all)

	assert.Len(t, threads, 3)
	assert.Equal(t, int64(2), threads[0].ID)
	assert.Equal(t, int64(1), threads[1].ID)
	assert.Len(t, threads[1].Replies, 2)
	assert.Equal(t, "", threads[2].Body)
}
