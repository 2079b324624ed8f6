// Package hubimport migrates the legacy Hub (Woltlab) database into the
// Forge schema.
package hubimport

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
	"forge-service/internal/semver"
)

const DefaultChunkSize = 1000

type Options struct {
	ChunkSize int
	SkipPrune bool
}

// FollowUp runs after a successful import, for example to resolve the SPT
// versions of the imported mod versions.
type FollowUp struct {
	Name string
	Run  func(ctx context.Context) error
}

// Stats counts the rows written and skipped per step.
type Stats struct {
	Licenses    int
	Users       int
	Bans        int
	Follows     int
	SptVersions int
	Mods        int
	ModVersions int
	Pruned      int64
	Skipped     int
}

type Importer struct {
	source    ports.HubSource
	repo      ports.ImportRepository
	opts      Options
	followUps []FollowUp
	licenses  *LicenseResolver
	now       func() time.Time
}

func NewImporter(source ports.HubSource, repo ports.ImportRepository, opts Options, followUps ...FollowUp) *Importer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Importer{
		source:    source,
		repo:      repo,
		opts:      opts,
		followUps: followUps,
		licenses:  NewLicenseResolver(),
		now:       time.Now,
	}
}

// Run executes every import step in order. A failing step aborts the
// import; rows that cannot be transformed are logged and skipped.
func (im *Importer) Run(ctx context.Context) (*Stats, error) {
	start := im.now()
	stats := &Stats{}

	steps := []struct {
		name string
		run  func(context.Context, *Stats) error
	}{
		{"licenses", im.importLicenses},
		{"users", im.importUsers},
		{"follows", im.importFollows},
		{"spt_versions", im.importSptVersions},
		{"mods", im.importMods},
		{"mod_versions", im.importModVersions},
		{"prune", im.pruneMods},
	}

	for _, step := range steps {
		stepStart := im.now()
		if err := step.run(ctx, stats); err != nil {
			log.WithError(err).WithField("step", step.name).Error("hub import step failed")
			return stats, fmt.Errorf("import %s: %w", step.name, err)
		}
		log.WithFields(log.Fields{
			"step":       step.name,
			"latency_ms": im.now().Sub(stepStart).Milliseconds(),
		}).Info("hub import step finished")
	}

	for _, f := range im.followUps {
		if err := f.Run(ctx); err != nil {
			return stats, fmt.Errorf("%s: %w", f.Name, err)
		}
		log.WithField("follow_up", f.Name).Info("hub import follow-up finished")
	}

	log.WithFields(log.Fields{
		"licenses":     stats.Licenses,
		"users":        stats.Users,
		"bans":         stats.Bans,
		"follows":      stats.Follows,
		"spt_versions": stats.SptVersions,
		"mods":         stats.Mods,
		"mod_versions": stats.ModVersions,
		"pruned":       stats.Pruned,
		"skipped":      stats.Skipped,
		"latency_ms":   im.now().Sub(start).Milliseconds(),
	}).Info("hub import finished")

	return stats, nil
}

// eachChunk pages a keyset-ordered source until it returns a short page.
func eachChunk[T any](
	ctx context.Context,
	limit int,
	fetch func(ctx context.Context, afterID int64, limit int) ([]T, error),
	id func(T) int64,
	handle func(rows []T) error,
) error {
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rows, err := fetch(ctx, afterID, limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := handle(rows); err != nil {
			return err
		}
		if len(rows) < limit {
			return nil
		}
		afterID = id(rows[len(rows)-1])
	}
}

func skipRow(stats *Stats, step string, hubID int64, err error) {
	stats.Skipped++
	log.WithError(err).WithFields(log.Fields{"step": step, "hub_id": hubID}).Warn("skipping hub row")
}

func (im *Importer) importLicenses(ctx context.Context, stats *Stats) error {
	rows, err := im.source.Licenses(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	licenses := make([]domain.License, 0, len(rows))
	names := make(map[int64]string, len(rows))
	for _, r := range rows {
		hubID := r.LicenseID
		licenses = append(licenses, domain.License{HubID: &hubID, Name: r.Name, Link: r.URL})
		names[r.LicenseID] = r.Name
	}

	ids, err := im.repo.UpsertLicenses(ctx, licenses)
	if err != nil {
		return err
	}
	for hubID, forgeID := range ids {
		im.licenses.Add(hubID, forgeID, names[hubID])
	}

	stats.Licenses += len(ids)
	return nil
}

func (im *Importer) importUsers(ctx context.Context, stats *Stats) error {
	return eachChunk(ctx, im.opts.ChunkSize, im.source.Users,
		func(u ports.HubUser) int64 { return u.UserID },
		func(rows []ports.HubUser) error {
			users := make([]domain.User, 0, len(rows))
			for _, r := range rows {
				user, err := transformUser(r)
				if err != nil {
					skipRow(stats, "users", r.UserID, err)
					continue
				}
				users = append(users, user)
			}
			if len(users) == 0 {
				return nil
			}

			ids, err := im.repo.UpsertUsers(ctx, users)
			if err != nil {
				return err
			}
			stats.Users += len(ids)

			bans := im.transformBans(rows, ids)
			if len(bans) > 0 {
				if err := im.repo.UpsertBans(ctx, bans); err != nil {
					return err
				}
				stats.Bans += len(bans)
			}
			return nil
		})
}

func transformUser(r ports.HubUser) (domain.User, error) {
	if r.Username == "" || r.Email == "" {
		return domain.User{}, fmt.Errorf("user %d has no name or email", r.UserID)
	}

	about, err := CleanContent(r.AboutMe)
	if err != nil {
		return domain.User{}, err
	}

	hubID := r.UserID
	user := domain.User{
		HubID:        &hubID,
		Name:         r.Username,
		Email:        r.Email,
		Password:     StripPasswordPrefix(r.Password),
		About:        about,
		ProfilePhoto: r.AvatarPath,
		CoverPhoto:   r.CoverPath,
		Role:         domain.RoleMember,
		CreatedAt:    r.RegisteredAt,
		UpdatedAt:    r.RegisteredAt,
	}
	if r.Activated {
		verified := r.RegisteredAt
		user.EmailVerifiedAt = &verified
	}
	switch {
	case r.IsAdmin:
		user.Role = domain.RoleAdministrator
	case r.IsModerator:
		user.Role = domain.RoleModerator
	}
	return user, nil
}

func (im *Importer) transformBans(rows []ports.HubUser, ids map[int64]int64) []domain.Ban {
	var bans []domain.Ban
	now := im.now()
	for _, r := range rows {
		if !r.Banned {
			continue
		}
		userID, ok := ids[r.UserID]
		if !ok {
			continue
		}

		hubID := r.UserID
		ban := domain.Ban{HubID: &hubID, UserID: userID, Comment: r.BanReason, CreatedAt: now}
		if r.BanExpires > 0 {
			expires := time.Unix(r.BanExpires, 0).UTC()
			ban.ExpiredAt = &expires
		}
		bans = append(bans, ban)
	}
	return bans
}

func (im *Importer) importFollows(ctx context.Context, stats *Stats) error {
	return eachChunk(ctx, im.opts.ChunkSize, im.source.Follows,
		func(f ports.HubFollow) int64 { return f.FollowID },
		func(rows []ports.HubFollow) error {
			hubIDs := make([]int64, 0, len(rows)*2)
			for _, r := range rows {
				hubIDs = append(hubIDs, r.UserID, r.FollowUserID)
			}
			ids, err := im.repo.UserIDsByHubID(ctx, uniqueIDs(hubIDs))
			if err != nil {
				return err
			}

			follows := make([]domain.UserFollow, 0, len(rows))
			for _, r := range rows {
				follower, ok1 := ids[r.UserID]
				following, ok2 := ids[r.FollowUserID]
				if !ok1 || !ok2 {
					skipRow(stats, "follows", r.FollowID, fmt.Errorf("unknown user"))
					continue
				}
				if follower == following {
					skipRow(stats, "follows", r.FollowID, domain.ErrCannotFollowSelf)
					continue
				}
				follows = append(follows, domain.UserFollow{FollowerID: follower, FollowingID: following, CreatedAt: r.CreatedAt})
			}
			if len(follows) == 0 {
				return nil
			}

			if err := im.repo.UpsertFollows(ctx, follows); err != nil {
				return err
			}
			stats.Follows += len(follows)
			return nil
		})
}

func (im *Importer) importSptVersions(ctx context.Context, stats *Stats) error {
	labels, err := im.source.SptLabels(ctx)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var versions []domain.SptVersion
	now := im.now()
	for _, l := range labels {
		version, ok := SptVersionFromLabel(l.Label)
		if !ok || seen[version] {
			continue
		}
		parts, err := semver.Parse(version)
		if err != nil {
			skipRow(stats, "spt_versions", l.LabelID, err)
			continue
		}
		seen[version] = true
		versions = append(versions, domain.SptVersion{
			VersionParts: parts,
			Version:      version,
			ColorClass:   l.CSSClass,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if len(versions) == 0 {
		return nil
	}

	if err := im.repo.UpsertSptVersions(ctx, versions); err != nil {
		return err
	}
	stats.SptVersions += len(versions)
	return nil
}

func (im *Importer) importMods(ctx context.Context, stats *Stats) error {
	return eachChunk(ctx, im.opts.ChunkSize, im.source.Mods,
		func(m ports.HubMod) int64 { return m.FileID },
		func(rows []ports.HubMod) error {
			fileIDs := make([]int64, 0, len(rows))
			for _, r := range rows {
				fileIDs = append(fileIDs, r.FileID)
			}

			authors, err := im.source.ModAuthors(ctx, fileIDs)
			if err != nil {
				return err
			}
			options, err := im.source.ModOptions(ctx, fileIDs)
			if err != nil {
				return err
			}

			userHubIDs := make([]int64, 0, len(rows))
			for _, r := range rows {
				userHubIDs = append(userHubIDs, r.UserID)
				userHubIDs = append(userHubIDs, authors[r.FileID]...)
			}
			users, err := im.repo.UserIDsByHubID(ctx, uniqueIDs(userHubIDs))
			if err != nil {
				return err
			}

			mods := make([]domain.Mod, 0, len(rows))
			for _, r := range rows {
				mod, err := im.transformMod(r, options[r.FileID], users)
				if err != nil {
					skipRow(stats, "mods", r.FileID, err)
					continue
				}
				mods = append(mods, mod)
			}
			if len(mods) == 0 {
				return nil
			}

			ids, err := im.repo.UpsertMods(ctx, mods)
			if err != nil {
				return err
			}
			stats.Mods += len(ids)

			modAuthors := make(map[int64][]int64, len(ids))
			for _, r := range rows {
				modID, ok := ids[r.FileID]
				if !ok {
					continue
				}
				owner := users[r.UserID]
				list := []int64{}
				for _, hubUserID := range authors[r.FileID] {
					if id, ok := users[hubUserID]; ok && id != owner {
						list = append(list, id)
					}
				}
				modAuthors[modID] = uniqueIDs(list)
			}
			return im.repo.ReplaceModAuthors(ctx, modAuthors)
		})
}

func (im *Importer) transformMod(r ports.HubMod, opts ports.HubModOptions, users map[int64]int64) (domain.Mod, error) {
	if r.Subject == "" {
		return domain.Mod{}, fmt.Errorf("mod %d has no subject", r.FileID)
	}

	description, err := CleanContent(r.Message)
	if err != nil {
		return domain.Mod{}, err
	}

	hubID := r.FileID
	mod := domain.Mod{
		HubID:             &hubID,
		Name:              r.Subject,
		Slug:              domain.Slugify(r.Subject),
		Teaser:            CleanTeaser(r.Teaser),
		Description:       description,
		Thumbnail:         r.IconPath,
		LicenseID:         im.licenses.Resolve(r.LicenseID, r.LicenseName),
		SourceCodeLink:    opts.SourceCodeLink,
		Featured:          r.IsFeatured,
		ContainsAIContent: opts.ContainsAIContent,
		ContainsAds:       opts.ContainsAds,
		Disabled:          r.IsDisabled,
		Downloads:         r.DownloadCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if owner, ok := users[r.UserID]; ok {
		mod.OwnerID = &owner
	}
	if !r.IsDisabled {
		published := r.CreatedAt
		mod.PublishedAt = &published
	}
	if r.IsDeleted {
		deleted := r.UpdatedAt
		mod.DeletedAt = &deleted
	}
	return mod, nil
}

func (im *Importer) importModVersions(ctx context.Context, stats *Stats) error {
	return eachChunk(ctx, im.opts.ChunkSize, im.source.ModVersions,
		func(v ports.HubModVersion) int64 { return v.VersionID },
		func(rows []ports.HubModVersion) error {
			versionIDs := make([]int64, 0, len(rows))
			fileIDs := make([]int64, 0, len(rows))
			for _, r := range rows {
				versionIDs = append(versionIDs, r.VersionID)
				fileIDs = append(fileIDs, r.FileID)
			}

			labels, err := im.source.VersionLabels(ctx, versionIDs)
			if err != nil {
				return err
			}
			mods, err := im.repo.ModIDsByHubID(ctx, uniqueIDs(fileIDs))
			if err != nil {
				return err
			}

			versions := make([]domain.ModVersion, 0, len(rows))
			for _, r := range rows {
				modID, ok := mods[r.FileID]
				if !ok {
					skipRow(stats, "mod_versions", r.VersionID, domain.ErrModNotFound)
					continue
				}
				v, err := transformModVersion(r, modID, labels[r.VersionID])
				if err != nil {
					skipRow(stats, "mod_versions", r.VersionID, err)
					continue
				}
				versions = append(versions, v)
			}
			if len(versions) == 0 {
				return nil
			}

			ids, err := im.repo.UpsertModVersions(ctx, versions)
			if err != nil {
				return err
			}
			stats.ModVersions += len(ids)
			return nil
		})
}

func transformModVersion(r ports.HubModVersion, modID int64, labels []string) (domain.ModVersion, error) {
	version, err := semver.Canonical(r.VersionNumber)
	if err != nil {
		return domain.ModVersion{}, err
	}
	parts, err := semver.Parse(version)
	if err != nil {
		return domain.ModVersion{}, err
	}

	description, err := CleanContent(r.Description)
	if err != nil {
		return domain.ModVersion{}, err
	}

	hubID := r.VersionID
	v := domain.ModVersion{
		VersionParts:         parts,
		HubID:                &hubID,
		ModID:                modID,
		Version:              version,
		Description:          description,
		Link:                 r.DownloadURL,
		SptVersionConstraint: semver.NormalizeConstraint(ConstraintFromLabels(labels)),
		VirusTotalLink:       r.VirusTotalURL,
		Downloads:            r.DownloadCount,
		Disabled:             r.IsDisabled,
		CreatedAt:            r.UploadTime,
		UpdatedAt:            r.UploadTime,
	}
	if !r.IsDisabled {
		published := r.UploadTime
		v.PublishedAt = &published
	}
	return v, nil
}

func (im *Importer) pruneMods(ctx context.Context, stats *Stats) error {
	if im.opts.SkipPrune {
		log.Info("skipping mod prune")
		return nil
	}

	keep, err := im.source.ModIDs(ctx)
	if err != nil {
		return err
	}

	pruned, err := im.repo.PruneMods(ctx, keep, im.now())
	if err != nil {
		return err
	}
	stats.Pruned = pruned
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
