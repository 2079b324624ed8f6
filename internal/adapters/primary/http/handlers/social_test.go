package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
)

func TestListComments_InvalidType(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/comments?type=thread&id=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/comments?type=mod&id=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateComment_Validation(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 2})

	w := env.do(http.MethodPost, "/api/v1/comments", auth, map[string]interface{}{
		"commentable_type": "thread",
		"commentable_id":   1,
		"body":             "hi",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The selected commentable type is invalid."}, errs["commentable_type"])
}

func TestFollowUser(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 2, Name: "fan"})
	env.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3}, nil)
	env.follows.On("Follow", mock.Anything, int64(2), int64(3)).Return(false, nil)

	w := env.do(http.MethodPost, "/api/v1/users/3/follow", auth, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	env.follows.AssertExpectations(t)
}

func TestFollowUser_Self(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 2})

	w := env.do(http.MethodPost, "/api/v1/users/2/follow", auth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFollowers(t *testing.T) {
	env := setupRouter()
	env.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3}, nil)
	env.follows.On("ListFollowers", mock.Anything, int64(3), 20, 0).
		Return([]*domain.User{{ID: 4, Name: "fan", Email: "fan@example.com"}}, 1, nil)

	w := env.do(http.MethodGet, "/api/v1/users/3/followers", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "fan@example.com")
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 5})
	env.notifications.On("MarkAllRead", mock.Anything, int64(5), mock.Anything).Return(int64(3), nil)

	w := env.do(http.MethodPost, "/api/v1/notifications/read-all", auth, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["marked"])
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 5})
	env.notifications.On("MarkRead", mock.Anything, int64(5), int64(9), mock.Anything).Return(domain.ErrNotificationNotFound)

	w := env.do(http.MethodPost, "/api/v1/notifications/9/read", auth, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartConversation_Self(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 5})

	w := env.do(http.MethodPost, "/api/v1/conversations", auth, map[string]interface{}{"user_id": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBanUser_InvalidDuration(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 1, Role: domain.RoleModerator})

	w := env.do(http.MethodPost, "/api/v1/users/4/ban", auth, map[string]interface{}{"duration": "three days"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The duration field must be a duration such as 72h."}, errs["duration"])
}

func TestListReports_NonModerator(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 6})

	w := env.do(http.MethodGet, "/api/v1/reports", auth, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
