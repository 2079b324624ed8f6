package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
	"forge-service/internal/testutil"
)

const testSecret = "test-secret"

type testEnv struct {
	router        *gin.Engine
	mods          *testutil.MockModRepo
	modVersions   *testutil.MockModVersionRepo
	addons        *testutil.MockAddonRepo
	addonVersions *testutil.MockAddonVersionRepo
	sptVersions   *testutil.MockSptVersionRepo
	licenses      *testutil.MockLicenseRepo
	users         *testutil.MockUserRepo
	tracking      *testutil.MockTrackingRepo
	comments      *testutil.MockCommentRepo
	follows       *testutil.MockFollowRepo
	conversations *testutil.MockConversationRepo
	notifications *testutil.MockNotificationRepo
	reports       *testutil.MockReportRepo
	bans          *testutil.MockBanRepo
}

func setupRouter() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		mods:          new(testutil.MockModRepo),
		modVersions:   new(testutil.MockModVersionRepo),
		addons:        new(testutil.MockAddonRepo),
		addonVersions: new(testutil.MockAddonVersionRepo),
		sptVersions:   new(testutil.MockSptVersionRepo),
		licenses:      new(testutil.MockLicenseRepo),
		users:         new(testutil.MockUserRepo),
		tracking:      new(testutil.MockTrackingRepo),
		comments:      new(testutil.MockCommentRepo),
		follows:       new(testutil.MockFollowRepo),
		conversations: new(testutil.MockConversationRepo),
		notifications: new(testutil.MockNotificationRepo),
		reports:       new(testutil.MockReportRepo),
		bans:          new(testutil.MockBanRepo).NotBanned(),
	}

	notifications := services.NewNotificationService(env.notifications)
	h := New(Services{
		Auth:          services.NewAuthService(env.users, notifications, testSecret, time.Hour),
		Mods:          services.NewModService(env.mods, env.bans),
		ModVersions:   services.NewModVersionService(env.modVersions, env.mods, env.bans),
		Addons:        services.NewAddonService(env.addons, env.mods, env.bans),
		AddonVersions: services.NewAddonVersionService(env.addonVersions, env.addons, env.modVersions, env.bans),
		SptVersions:   services.NewSptVersionService(env.sptVersions, env.modVersions),
		Licenses:      services.NewLicenseService(env.licenses),
		Downloads:     services.NewDownloadService(env.tracking, env.modVersions, env.addonVersions),
		Comments:      services.NewCommentService(env.comments, env.mods, env.addons, env.users, env.bans, notifications),
		Follows:       services.NewFollowService(env.follows, env.users, notifications),
		Conversations: services.NewConversationService(env.conversations, env.users, env.bans, notifications),
		Notifications: notifications,
		Reports:       services.NewReportService(env.reports, env.mods, env.addons, env.users, env.comments, env.bans, notifications),
		Bans:          services.NewBanService(env.bans, env.users),
	})

	env.router = gin.New()
	h.RegisterRoutes(env.router.Group("/api/v1"))
	return env
}

// login registers user with the user repo mock and returns a bearer header
// value for it.
func (env *testEnv) login(t *testing.T, user *domain.User, abilities ...string) string {
	t.Helper()
	env.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Maybe()

	claims := services.TokenClaims{
		UserID:    user.ID,
		TokenName: "test",
		Abilities: abilities,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (env *testEnv) do(method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func ptr[T any](v T) *T { return &v }
