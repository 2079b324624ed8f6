package hubimport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/testutil"
)

var importNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestImporter(source *testutil.MockHubSource, repo *testutil.MockImportRepo, opts Options, followUps ...FollowUp) *Importer {
	im := NewImporter(source, repo, opts, followUps...)
	im.now = func() time.Time { return importNow }
	return im
}

func ptrInt64(v int64) *int64 { return &v }

func matches[T any](t *testing.T, want T, opts ...cmp.Option) interface{} {
	return mock.MatchedBy(func(got T) bool {
		if diff := cmp.Diff(want, got, opts...); diff != "" {
			t.Logf("argument mismatch (-want +got):\n%s", diff)
			return false
		}
		return true
	})
}

func TestImporter_Run(t *testing.T) {
	source := new(testutil.MockHubSource)
	repo := new(testutil.MockImportRepo)

	registered := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	uploaded := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	// Licenses
	source.On("Licenses", mock.Anything).Return([]ports.HubLicense{{LicenseID: 1, Name: "MIT License"}}, nil)
	repo.On("UpsertLicenses", mock.Anything, []domain.License{{HubID: ptrInt64(1), Name: "MIT License"}}).
		Return(map[int64]int64{1: 11}, nil)

	// Users
	source.On("Users", mock.Anything, int64(0), 2).Return([]ports.HubUser{
		{UserID: 1, Username: "admin", Email: "a@example.com", Password: "Bcrypt:$2y$10$hash", IsAdmin: true, Activated: true, RegisteredAt: registered},
		{UserID: 2, Username: "spammer", Email: "s@example.com", Banned: true, BanReason: "spam", RegisteredAt: registered},
	}, nil)
	source.On("Users", mock.Anything, int64(2), 2).Return([]ports.HubUser{}, nil)
	repo.On("UpsertUsers", mock.Anything, matches(t, []domain.User{
		{
			HubID: ptrInt64(1), Name: "admin", Email: "a@example.com", Password: "$2y$10$hash",
			EmailVerifiedAt: &registered, Role: domain.RoleAdministrator, CreatedAt: registered, UpdatedAt: registered,
		},
		{
			HubID: ptrInt64(2), Name: "spammer", Email: "s@example.com",
			CreatedAt: registered, UpdatedAt: registered,
		},
	})).Return(map[int64]int64{1: 101, 2: 102}, nil)
	repo.On("UpsertBans", mock.Anything, matches(t, []domain.Ban{
		{HubID: ptrInt64(2), UserID: 102, Comment: "spam", CreatedAt: importNow},
	})).Return(nil)

	// Follows
	source.On("Follows", mock.Anything, int64(0), 2).Return([]ports.HubFollow{
		{FollowID: 1, UserID: 1, FollowUserID: 2},
		{FollowID: 2, UserID: 1, FollowUserID: 99},
	}, nil)
	source.On("Follows", mock.Anything, int64(2), 2).Return([]ports.HubFollow{}, nil)
	repo.On("UserIDsByHubID", mock.Anything, []int64{1, 2, 99}).Return(map[int64]int64{1: 101, 2: 102}, nil)
	repo.On("UpsertFollows", mock.Anything, []domain.UserFollow{{FollowerID: 101, FollowingID: 102}}).Return(nil)

	// SPT versions
	source.On("SptLabels", mock.Anything).Return([]ports.HubLabel{
		{LabelID: 1, Label: "SPT 3.9.0", CSSClass: "green"},
		{LabelID: 2, Label: "SPT 3.9.0"},
		{LabelID: 3, Label: "Outdated"},
	}, nil)
	repo.On("UpsertSptVersions", mock.Anything, matches(t, []domain.SptVersion{
		{VersionParts: domain.VersionParts{Major: 3, Minor: 9}, Version: "3.9.0", ColorClass: "green", CreatedAt: importNow, UpdatedAt: importNow},
	})).Return(nil)

	// Mods
	source.On("Mods", mock.Anything, int64(0), 2).Return([]ports.HubMod{
		{FileID: 10, UserID: 1, Subject: "Realism Mod", Teaser: "<b>Best</b> mod", Message: "<p>Hi</p>", LicenseID: 1, CreatedAt: registered, UpdatedAt: uploaded},
		{FileID: 11, Subject: ""},
	}, nil)
	source.On("Mods", mock.Anything, int64(11), 2).Return([]ports.HubMod{}, nil)
	source.On("ModAuthors", mock.Anything, []int64{10, 11}).Return(map[int64][]int64{10: {1, 2}}, nil)
	source.On("ModOptions", mock.Anything, []int64{10, 11}).Return(map[int64]ports.HubModOptions{
		10: {SourceCodeLink: "https://github.com/example/realism", ContainsAds: true},
	}, nil)
	repo.On("UserIDsByHubID", mock.Anything, []int64{1, 2}).Return(map[int64]int64{1: 101, 2: 102}, nil)
	repo.On("UpsertMods", mock.Anything, matches(t, []domain.Mod{
		{
			HubID: ptrInt64(10), OwnerID: ptrInt64(101), Name: "Realism Mod", Slug: "realism-mod",
			Teaser: "Best mod", Description: "Hi", LicenseID: ptrInt64(11),
			SourceCodeLink: "https://github.com/example/realism", ContainsAds: true,
			PublishedAt: &registered, CreatedAt: registered, UpdatedAt: uploaded,
		},
	})).Return(map[int64]int64{10: 1000}, nil)
	repo.On("ReplaceModAuthors", mock.Anything, map[int64][]int64{1000: {102}}).Return(nil)

	// Mod versions
	source.On("ModVersions", mock.Anything, int64(0), 2).Return([]ports.HubModVersion{
		{VersionID: 20, FileID: 10, VersionNumber: "1.0", DownloadURL: "https://example.com/r.7z", DownloadCount: 7, UploadTime: uploaded},
	}, nil)
	source.On("VersionLabels", mock.Anything, []int64{20}).Return(map[int64][]string{20: {"SPT 3.9.0"}}, nil)
	repo.On("ModIDsByHubID", mock.Anything, []int64{10}).Return(map[int64]int64{10: 1000}, nil)
	repo.On("UpsertModVersions", mock.Anything, matches(t, []domain.ModVersion{
		{
			VersionParts: domain.VersionParts{Major: 1}, HubID: ptrInt64(20), ModID: 1000, Version: "1.0.0",
			Link: "https://example.com/r.7z", SptVersionConstraint: "~3.9.0", Downloads: 7,
			PublishedAt: &uploaded, CreatedAt: uploaded, UpdatedAt: uploaded,
		},
	})).Return(map[int64]int64{20: 2000}, nil)

	// Prune
	source.On("ModIDs", mock.Anything).Return([]int64{10}, nil)
	repo.On("PruneMods", mock.Anything, []int64{10}, importNow).Return(int64(3), nil)

	var followUps []string
	im := newTestImporter(source, repo, Options{ChunkSize: 2},
		FollowUp{Name: "spt", Run: func(context.Context) error { followUps = append(followUps, "spt"); return nil }},
		FollowUp{Name: "downloads", Run: func(context.Context) error { followUps = append(followUps, "downloads"); return nil }},
	)

	stats, err := im.Run(context.Background())
	require.NoError(t, err)

	want := Stats{
		Licenses:    1,
		Users:       2,
		Bans:        1,
		Follows:     1,
		SptVersions: 1,
		Mods:        1,
		ModVersions: 1,
		Pruned:      3,
		Skipped:     2,
	}
	if diff := cmp.Diff(want, *stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"spt", "downloads"}, followUps)

	source.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestImporter_Run_StepFailureAborts(t *testing.T) {
	source := new(testutil.MockHubSource)
	repo := new(testutil.MockImportRepo)

	source.On("Licenses", mock.Anything).Return(nil, errors.New("connection refused"))

	ran := false
	im := newTestImporter(source, repo, Options{}, FollowUp{Name: "x", Run: func(context.Context) error { ran = true; return nil }})

	_, err := im.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import licenses")
	assert.False(t, ran)
	source.AssertNotCalled(t, "Users", mock.Anything, mock.Anything, mock.Anything)
}

func TestImporter_PruneSkipped(t *testing.T) {
	source := new(testutil.MockHubSource)
	repo := new(testutil.MockImportRepo)
	im := newTestImporter(source, repo, Options{SkipPrune: true})

	stats := &Stats{}
	require.NoError(t, im.pruneMods(context.Background(), stats))
	assert.Zero(t, stats.Pruned)
	source.AssertNotCalled(t, "ModIDs", mock.Anything)
}

func TestEachChunk(t *testing.T) {
	data := []int64{1, 2, 3, 4, 5}
	var calls []int64

	fetch := func(_ context.Context, afterID int64, limit int) ([]int64, error) {
		calls = append(calls, afterID)
		var out []int64
		for _, id := range data {
			if id > afterID && len(out) < limit {
				out = append(out, id)
			}
		}
		return out, nil
	}

	var seen []int64
	err := eachChunk(context.Background(), 2, fetch,
		func(id int64) int64 { return id },
		func(rows []int64) error {
			seen = append(seen, rows...)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, data, seen)
	assert.Equal(t, []int64{0, 2, 4}, calls)
}

func TestEachChunk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eachChunk(ctx, 2,
		func(context.Context, int64, int) ([]int64, error) { return []int64{1, 2}, nil },
		func(id int64) int64 { return id },
		func([]int64) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
