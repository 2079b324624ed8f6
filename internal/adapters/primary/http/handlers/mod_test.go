package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

func TestListMods(t *testing.T) {
	env := setupRouter()
	mods := []*domain.Mod{{ID: 1, Name: "Realism", Slug: "realism", VersionCount: 2}}
	env.mods.On("List", mock.Anything, mock.MatchedBy(func(f ports.ModListFilter) bool {
		return f.Search == "real" && f.Limit == 10 && !f.IncludeDeleted
	})).Return(mods, 1, nil)

	w := env.do(http.MethodGet, "/api/v1/mods?search=real&limit=10&trashed=true", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(1), resp["next_offset"])
	item := resp["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "realism", item["slug"])
	assert.Equal(t, []interface{}{}, item["author_ids"])
}

func TestListMods_InvalidOwner(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/mods?owner_id=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMod(t *testing.T) {
	env := setupRouter()
	env.mods.On("GetByID", mock.Anything, int64(5)).Return(&domain.Mod{
		ID:           5,
		Name:         "SAIN",
		PublishedAt:  ptr(time.Now().Add(-time.Hour)),
		VersionCount: 1,
	}, nil)

	w := env.do(http.MethodGet, "/api/v1/mods/5", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SAIN", decode(t, w)["name"])
}

func TestGetMod_HiddenFromGuest(t *testing.T) {
	env := setupRouter()
	env.mods.On("GetByID", mock.Anything, int64(5)).Return(&domain.Mod{ID: 5, Name: "Draft"}, nil)

	w := env.do(http.MethodGet, "/api/v1/mods/5", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMod_InvalidID(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/mods/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid mod id", decode(t, w)["message"])
}

func TestCreateMod(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 7, Name: "owner"})

	env.mods.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Mod) bool {
		return m.Slug == "more-checkmarks" && *m.OwnerID == 7
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Mod).ID = 42
	}).Return(nil)
	env.mods.On("GetByID", mock.Anything, int64(42)).Return(&domain.Mod{ID: 42, Name: "More Checkmarks", Slug: "more-checkmarks"}, nil)

	w := env.do(http.MethodPost, "/api/v1/mods", auth, map[string]interface{}{"name": "More Checkmarks"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(42), decode(t, w)["id"])
	env.mods.AssertExpectations(t)
}

func TestCreateMod_Guest(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodPost, "/api/v1/mods", "", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateMod_ReadOnlyToken(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 7}, "read")

	w := env.do(http.MethodPost, "/api/v1/mods", auth, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateMod_Validation(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 7})

	w := env.do(http.MethodPost, "/api/v1/mods", auth, map[string]interface{}{"source_code_link": "nope"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "source_code_link")
}

func TestUpdateMod_Forbidden(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 8})
	env.mods.On("GetByID", mock.Anything, int64(3)).Return(&domain.Mod{ID: 3, OwnerID: ptr(int64(1))}, nil)

	w := env.do(http.MethodPatch, "/api/v1/mods/3", auth, map[string]interface{}{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadModVersion(t *testing.T) {
	env := setupRouter()
	env.modVersions.On("GetByID", mock.Anything, int64(12)).Return(&domain.ModVersion{
		ID:          12,
		Link:        "https://example.com/mod.zip",
		Downloads:   30,
		PublishedAt: ptr(time.Now().Add(-time.Hour)),
	}, nil)
	env.tracking.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.TrackingEvent) bool {
		return e.EventName == domain.EventModDownload && e.VisitableID == 12
	}), mock.Anything).Return(true, nil)

	w := env.do(http.MethodPost, "/api/v1/mod_versions/12/download", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "https://example.com/mod.zip", resp["link"])
	assert.Equal(t, true, resp["counted"])
}

func TestDownloadModVersion_Unpublished(t *testing.T) {
	env := setupRouter()
	env.modVersions.On("GetByID", mock.Anything, int64(12)).Return(&domain.ModVersion{ID: 12}, nil)

	w := env.do(http.MethodPost, "/api/v1/mod_versions/12/download", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListLicenses(t *testing.T) {
	env := setupRouter()
	env.licenses.On("List", mock.Anything).Return([]*domain.License{{ID: 1, Name: "MIT"}}, nil)

	w := env.do(http.MethodGet, "/api/v1/licenses", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	env.licenses.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrLicenseNotFound)
	w = env.do(http.MethodGet, "/api/v1/licenses/2", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
