package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	"forge-service/internal/testutil"
)

func TestFollowService_Follow(t *testing.T) {
	repo := new(testutil.MockFollowRepo)
	users := new(testutil.MockUserRepo)
	notifier := new(testutil.MockNotifier)
	svc := NewFollowService(repo, users, notifier)

	users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2}, nil)
	repo.On("Follow", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()
	repo.On("Follow", mock.Anything, int64(1), int64(2)).Return(false, nil).Once()
	notifier.On("Notify", mock.Anything, int64(2), domain.NotificationNewFollow, mock.Anything).Return(nil).Once()

	actor := &domain.User{ID: 1, Name: "a"}
	assert.NoError(t, svc.Follow(context.Background(), actor, 2))
	assert.NoError(t, svc.Follow(context.Background(), actor, 2))
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestFollowService_Follow_Self(t *testing.T) {
	svc := NewFollowService(new(testutil.MockFollowRepo), new(testutil.MockUserRepo), nil)

	err := svc.Follow(context.Background(), &domain.User{ID: 1}, 1)
	assert.ErrorIs(t, err, domain.ErrCannotFollowSelf)
}

func TestFollowService_Followers(t *testing.T) {
	repo := new(testutil.MockFollowRepo)
	users := new(testutil.MockUserRepo)
	svc := NewFollowService(repo, users, nil)

	users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2}, nil)
	repo.On("ListFollowers", mock.Anything, int64(2), 100, 0).Return([]*domain.User{{ID: 1}}, 1, nil)

	followers, total, err := svc.Followers(context.Background(), 2, 500, -1)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, followers, 1)
}

func TestConversationService_StartOrGet(t *testing.T) {
	repo := new(testutil.MockConversationRepo)
	users := new(testutil.MockUserRepo)
	svc := NewConversationService(repo, users, new(testutil.MockBanRepo).NotBanned(), nil)

	users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3}, nil)
	repo.On("FindByParticipants", mock.Anything, int64(3), int64(8)).Return(nil, domain.ErrConversationNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
		return c.User1ID == 3 && c.User2ID == 8
	})).Return(nil)

	conv, err := svc.StartOrGet(context.Background(), &domain.User{ID: 8}, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), conv.User1ID)

	existing := &domain.Conversation{ID: 4, User1ID: 3, User2ID: 8}
	repo.On("FindByParticipants", mock.Anything, int64(3), int64(8)).Return(existing, nil).Once()

	conv, err = svc.StartOrGet(context.Background(), &domain.User{ID: 8}, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), conv.ID)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestConversationService_StartOrGet_Self(t *testing.T) {
	svc := NewConversationService(new(testutil.MockConversationRepo), new(testutil.MockUserRepo), new(testutil.MockBanRepo).NotBanned(), nil)

	_, err := svc.StartOrGet(context.Background(), &domain.User{ID: 8}, 8)
	assert.ErrorIs(t, err, domain.ErrCannotMessageSelf)
}

func TestConversationService_Send(t *testing.T) {
	repo := new(testutil.MockConversationRepo)
	notifier := new(testutil.MockNotifier)
	svc := NewConversationService(repo, new(testutil.MockUserRepo), new(testutil.MockBanRepo).NotBanned(), notifier)

	repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Conversation{ID: 4, User1ID: 3, User2ID: 8}, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.Content == "hello" && m.UserID == 8
	})).Return(nil)
	notifier.On("Notify", mock.Anything, int64(3), domain.NotificationNewMessage, mock.Anything).Return(errors.New("down"))

	msg, err := svc.Send(context.Background(), &domain.User{ID: 8}, 4, " hello ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)

	_, err = svc.Send(context.Background(), &domain.User{ID: 5}, 4, "intruder")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	_, err = svc.Send(context.Background(), &domain.User{ID: 8}, 4, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)
}

func TestConversationService_Send_Banned(t *testing.T) {
	bans := new(testutil.MockBanRepo)
	bans.On("ActiveForUser", mock.Anything, int64(8), mock.Anything).Return(&domain.Ban{UserID: 8}, nil)
	svc := NewConversationService(new(testutil.MockConversationRepo), new(testutil.MockUserRepo), bans, nil)

	_, err := svc.Send(context.Background(), &domain.User{ID: 8}, 4, "hello")
	assert.ErrorIs(t, err, domain.ErrUserBanned)
}

func TestConversationService_MarkRead(t *testing.T) {
	repo := new(testutil.MockConversationRepo)
	svc := NewConversationService(repo, new(testutil.MockUserRepo), nil, nil)

	repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Conversation{ID: 4, User1ID: 3, User2ID: 8}, nil)
	repo.On("MarkRead", mock.Anything, int64(4), int64(3), mock.AnythingOfType("time.Time")).Return(int64(2), nil)

	n, err := svc.MarkRead(context.Background(), &domain.User{ID: 3}, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNotificationService_Notify(t *testing.T) {
	repo := new(testutil.MockNotificationRepo)
	svc := NewNotificationService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 3 && string(n.Data) == `{"follower_id":1}`
	})).Return(nil)

	err := svc.Notify(context.Background(), 3, domain.NotificationNewFollow, map[string]interface{}{"follower_id": 1})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_RequiresUser(t *testing.T) {
	svc := NewNotificationService(new(testutil.MockNotificationRepo))

	_, _, err := svc.List(context.Background(), nil, false, 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.MarkAllRead(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
