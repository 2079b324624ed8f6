package ports

import (
	"context"
	"time"

	"forge-service/internal/core/domain"
)

// ============================================================================
// Hub Rows
// ============================================================================

// HubUser is a row of wcf1_user joined with its staff group membership.
type HubUser struct {
	UserID       int64
	Username     string
	Email        string
	Password     string
	Banned       bool
	BanReason    string
	BanExpires   int64 // unix seconds, 0 = permanent
	Activated    bool
	AboutMe      string
	AvatarPath   string
	CoverPath    string
	IsAdmin      bool
	IsModerator  bool
	RegisteredAt time.Time
}

type HubFollow struct {
	FollowID     int64
	UserID       int64
	FollowUserID int64
	CreatedAt    time.Time
}

type HubLicense struct {
	LicenseID int64
	Name      string
	URL       string
}

// HubLabel is a wcf1_label of the SPT version label group.
type HubLabel struct {
	LabelID  int64
	Label    string
	CSSClass string
}

// HubMod is a filebase1_file row joined with its English content.
type HubMod struct {
	FileID        int64
	UserID        int64
	Subject       string
	Teaser        string
	Message       string
	IconPath      string
	LicenseID     int64
	LicenseName   string
	IsFeatured    bool
	IsDisabled    bool
	IsDeleted     bool
	DownloadCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HubModOptions carries the per-file custom option values.
type HubModOptions struct {
	SourceCodeLink    string
	ContainsAIContent bool
	ContainsAds       bool
}

type HubModVersion struct {
	VersionID     int64
	FileID        int64
	VersionNumber string
	Description   string
	DownloadURL   string
	VirusTotalURL string
	IsDisabled    bool
	DownloadCount int64
	UploadTime    time.Time
}

// ============================================================================
// Hub Source
// ============================================================================

// HubSource reads the legacy Woltlab database. Chunked methods page by
// primary key: rows with id > afterID, ascending, at most limit rows.
type HubSource interface {
	Licenses(ctx context.Context) ([]HubLicense, error)
	Users(ctx context.Context, afterID int64, limit int) ([]HubUser, error)
	Follows(ctx context.Context, afterID int64, limit int) ([]HubFollow, error)
	SptLabels(ctx context.Context) ([]HubLabel, error)
	Mods(ctx context.Context, afterID int64, limit int) ([]HubMod, error)

	// ModAuthors and ModOptions are bulk lookups for one chunk of mods.
	ModAuthors(ctx context.Context, fileIDs []int64) (map[int64][]int64, error)
	ModOptions(ctx context.Context, fileIDs []int64) (map[int64]HubModOptions, error)

	ModVersions(ctx context.Context, afterID int64, limit int) ([]HubModVersion, error)

	// VersionLabels maps version ids to the SPT label texts attached to them.
	VersionLabels(ctx context.Context, versionIDs []int64) (map[int64][]string, error)

	// ModIDs returns every live file id, used to prune removed mods.
	ModIDs(ctx context.Context) ([]int64, error)
}

// ============================================================================
// Import Repository
// ============================================================================

// ImportRepository writes Hub data into the Forge schema. Every Upsert is
// idempotent on hub_id and returns the hub id -> forge id mapping of the
// rows it touched.
type ImportRepository interface {
	UpsertLicenses(ctx context.Context, licenses []domain.License) (map[int64]int64, error)
	UpsertUsers(ctx context.Context, users []domain.User) (map[int64]int64, error)
	UpsertBans(ctx context.Context, bans []domain.Ban) error
	UpsertFollows(ctx context.Context, follows []domain.UserFollow) error
	UpsertSptVersions(ctx context.Context, versions []domain.SptVersion) error
	UpsertMods(ctx context.Context, mods []domain.Mod) (map[int64]int64, error)
	UpsertModVersions(ctx context.Context, versions []domain.ModVersion) (map[int64]int64, error)
	ReplaceModAuthors(ctx context.Context, authors map[int64][]int64) error

	// UserIDsByHubID and ModIDsByHubID resolve hub ids of already imported rows.
	UserIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error)
	ModIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error)

	// PruneMods soft-deletes imported mods whose hub id is not in keep.
	PruneMods(ctx context.Context, keep []int64, at time.Time) (int64, error)
}
