package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// importRepo merges Hub batches through per-transaction staging tables: each
// batch is copied into a temp table shaped like the target, then merged with
// a single INSERT ... ON CONFLICT statement.
type importRepo struct {
	pool *pgxpool.Pool
}

func NewImportRepository(pool *pgxpool.Pool) ports.ImportRepository {
	return &importRepo{pool: pool}
}

// merge stages rows into stage_<table> and runs mergeSQL. When mergeSQL
// returns (hub_id, id) pairs they are collected into the result.
func (r *importRepo) merge(ctx context.Context, table string, columns []string, rows [][]interface{}, mergeSQL string) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(rows))
	if len(rows) == 0 {
		return ids, nil
	}

	stage := "stage_" + table
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		create := fmt.Sprintf(`CREATE TEMP TABLE %s ON COMMIT DROP AS SELECT %s FROM %s WITH NO DATA`,
			stage, strings.Join(columns, ", "), table)
		if _, err := tx.Exec(ctx, create); err != nil {
			return fmt.Errorf("create %s: %w", stage, err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{stage}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy %s: %w", stage, err)
		}

		result, err := tx.Query(ctx, mergeSQL)
		if err != nil {
			return fmt.Errorf("merge %s: %w", table, err)
		}
		defer result.Close()

		returning := len(result.FieldDescriptions()) == 2
		for result.Next() {
			if !returning {
				continue
			}
			var hubID, id int64
			if err := result.Scan(&hubID, &id); err != nil {
				return fmt.Errorf("scan %s id: %w", table, err)
			}
			ids[hubID] = id
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *importRepo) UpsertLicenses(ctx context.Context, licenses []domain.License) (map[int64]int64, error) {
	rows := make([][]interface{}, 0, len(licenses))
	for _, l := range licenses {
		rows = append(rows, []interface{}{l.HubID, l.Name, l.Link})
	}
	return r.merge(ctx, "licenses", []string{"hub_id", "name", "link"}, rows, `
		INSERT INTO licenses (hub_id, name, link)
		SELECT DISTINCT ON (hub_id) hub_id, name, link FROM stage_licenses ORDER BY hub_id
		ON CONFLICT (hub_id) DO UPDATE SET name = EXCLUDED.name, link = EXCLUDED.link
		RETURNING hub_id, id
	`)
}

// UpsertUsers skips rows whose email already belongs to a different account
// and keeps the lowest hub id when the batch itself repeats an email.
func (r *importRepo) UpsertUsers(ctx context.Context, users []domain.User) (map[int64]int64, error) {
	columns := []string{
		"hub_id", "name", "email", "password", "email_verified_at", "about",
		"profile_photo_path", "cover_photo_path", "role", "created_at", "updated_at",
	}
	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{
			u.HubID, u.Name, u.Email, u.Password, u.EmailVerifiedAt, u.About,
			u.ProfilePhoto, u.CoverPhoto, string(u.Role), u.CreatedAt, u.UpdatedAt,
		})
	}
	return r.merge(ctx, "users", columns, rows, `
		INSERT INTO users (`+strings.Join(columns, ", ")+`)
		SELECT DISTINCT ON (LOWER(s.email)) `+prefixColumns("s", columns)+`
		FROM stage_users s
		WHERE NOT EXISTS (
			SELECT 1 FROM users u
			WHERE LOWER(u.email) = LOWER(s.email) AND u.hub_id IS DISTINCT FROM s.hub_id
		)
		ORDER BY LOWER(s.email), s.hub_id
		ON CONFLICT (hub_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			email_verified_at = EXCLUDED.email_verified_at,
			about = EXCLUDED.about,
			profile_photo_path = EXCLUDED.profile_photo_path,
			cover_photo_path = EXCLUDED.cover_photo_path,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING hub_id, id
	`)
}

func (r *importRepo) UpsertBans(ctx context.Context, bans []domain.Ban) error {
	columns := []string{"hub_id", "user_id", "comment", "expired_at", "created_at"}
	rows := make([][]interface{}, 0, len(bans))
	for _, b := range bans {
		rows = append(rows, []interface{}{b.HubID, b.UserID, b.Comment, b.ExpiredAt, b.CreatedAt})
	}
	_, err := r.merge(ctx, "bans", columns, rows, `
		INSERT INTO bans (`+strings.Join(columns, ", ")+`)
		SELECT DISTINCT ON (hub_id) `+strings.Join(columns, ", ")+` FROM stage_bans ORDER BY hub_id
		ON CONFLICT (hub_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			comment = EXCLUDED.comment,
			expired_at = EXCLUDED.expired_at
	`)
	return err
}

func (r *importRepo) UpsertFollows(ctx context.Context, follows []domain.UserFollow) error {
	columns := []string{"follower_id", "following_id", "created_at"}
	rows := make([][]interface{}, 0, len(follows))
	for _, f := range follows {
		rows = append(rows, []interface{}{f.FollowerID, f.FollowingID, f.CreatedAt})
	}
	_, err := r.merge(ctx, "user_follows", columns, rows, `
		INSERT INTO user_follows (follower_id, following_id, created_at)
		SELECT follower_id, following_id, MIN(created_at)
		FROM stage_user_follows
		WHERE follower_id <> following_id
		GROUP BY follower_id, following_id
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`)
	return err
}

func (r *importRepo) UpsertSptVersions(ctx context.Context, versions []domain.SptVersion) error {
	columns := []string{
		"version", "version_major", "version_minor", "version_patch", "version_labels",
		"color_class", "created_at", "updated_at",
	}
	rows := make([][]interface{}, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []interface{}{
			v.Version, v.Major, v.Minor, v.Patch, v.Label, v.ColorClass, v.CreatedAt, v.UpdatedAt,
		})
	}
	_, err := r.merge(ctx, "spt_versions", columns, rows, `
		INSERT INTO spt_versions (`+strings.Join(columns, ", ")+`)
		SELECT DISTINCT ON (version) `+strings.Join(columns, ", ")+` FROM stage_spt_versions ORDER BY version
		ON CONFLICT (version) DO UPDATE SET
			color_class = EXCLUDED.color_class,
			updated_at = EXCLUDED.updated_at
	`)
	return err
}

func (r *importRepo) UpsertMods(ctx context.Context, mods []domain.Mod) (map[int64]int64, error) {
	columns := []string{
		"hub_id", "owner_id", "name", "slug", "teaser", "description", "thumbnail",
		"license_id", "source_code_link", "featured", "contains_ai_content",
		"contains_ads", "disabled", "published_at", "downloads", "created_at",
		"updated_at", "deleted_at",
	}
	rows := make([][]interface{}, 0, len(mods))
	for _, m := range mods {
		rows = append(rows, []interface{}{
			m.HubID, m.OwnerID, m.Name, m.Slug, m.Teaser, m.Description, m.Thumbnail,
			m.LicenseID, m.SourceCodeLink, m.Featured, m.ContainsAIContent,
			m.ContainsAds, m.Disabled, m.PublishedAt, m.Downloads, m.CreatedAt,
			m.UpdatedAt, m.DeletedAt,
		})
	}
	// downloads is left alone on update; the recount after the import owns it.
	return r.merge(ctx, "mods", columns, rows, `
		INSERT INTO mods (`+strings.Join(columns, ", ")+`)
		SELECT DISTINCT ON (hub_id) `+strings.Join(columns, ", ")+` FROM stage_mods ORDER BY hub_id
		ON CONFLICT (hub_id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			teaser = EXCLUDED.teaser,
			description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail,
			license_id = EXCLUDED.license_id,
			source_code_link = EXCLUDED.source_code_link,
			featured = EXCLUDED.featured,
			contains_ai_content = EXCLUDED.contains_ai_content,
			contains_ads = EXCLUDED.contains_ads,
			disabled = EXCLUDED.disabled,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
		RETURNING hub_id, id
	`)
}

// UpsertModVersions records the Hub download count as hub_downloads so the
// downloads tracked locally since the last import survive a re-import.
func (r *importRepo) UpsertModVersions(ctx context.Context, versions []domain.ModVersion) (map[int64]int64, error) {
	columns := []string{
		"hub_id", "mod_id", "version", "version_major", "version_minor", "version_patch",
		"version_labels", "description", "link", "spt_version_constraint",
		"virus_total_link", "downloads", "hub_downloads", "disabled", "published_at",
		"created_at", "updated_at",
	}
	rows := make([][]interface{}, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []interface{}{
			v.HubID, v.ModID, v.Version, v.Major, v.Minor, v.Patch,
			v.Label, v.Description, v.Link, v.SptVersionConstraint,
			v.VirusTotalLink, v.Downloads, v.Downloads, v.Disabled, v.PublishedAt,
			v.CreatedAt, v.UpdatedAt,
		})
	}
	return r.merge(ctx, "mod_versions", columns, rows, `
		INSERT INTO mod_versions (`+strings.Join(columns, ", ")+`)
		SELECT DISTINCT ON (s.mod_id, s.version) `+prefixColumns("s", columns)+`
		FROM stage_mod_versions s
		WHERE NOT EXISTS (
			SELECT 1 FROM mod_versions mv
			WHERE mv.mod_id = s.mod_id AND mv.version = s.version
			  AND mv.hub_id IS DISTINCT FROM s.hub_id
		)
		ORDER BY s.mod_id, s.version, s.hub_id DESC
		ON CONFLICT (hub_id) DO UPDATE SET
			mod_id = EXCLUDED.mod_id,
			version = EXCLUDED.version,
			version_major = EXCLUDED.version_major,
			version_minor = EXCLUDED.version_minor,
			version_patch = EXCLUDED.version_patch,
			version_labels = EXCLUDED.version_labels,
			description = EXCLUDED.description,
			link = EXCLUDED.link,
			spt_version_constraint = EXCLUDED.spt_version_constraint,
			virus_total_link = EXCLUDED.virus_total_link,
			downloads = EXCLUDED.hub_downloads + (mod_versions.downloads - mod_versions.hub_downloads),
			hub_downloads = EXCLUDED.hub_downloads,
			disabled = EXCLUDED.disabled,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at
		RETURNING hub_id, id
	`)
}

// ReplaceModAuthors swaps the author set of every mod in authors, keyed by
// forge mod id.
func (r *importRepo) ReplaceModAuthors(ctx context.Context, authors map[int64][]int64) error {
	if len(authors) == 0 {
		return nil
	}
	modIDs := make([]int64, 0, len(authors))
	var rows [][]interface{}
	for modID, userIDs := range authors {
		modIDs = append(modIDs, modID)
		seen := map[int64]bool{}
		for _, userID := range userIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			rows = append(rows, []interface{}{modID, userID})
		}
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM mod_authors WHERE mod_id = ANY($1)`, modIDs); err != nil {
			return fmt.Errorf("clear mod authors: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"mod_authors"}, []string{"mod_id", "user_id"}, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy mod authors: %w", err)
		}
		return nil
	})
}

func (r *importRepo) UserIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error) {
	return r.lookup(ctx, "users", hubIDs)
}

func (r *importRepo) ModIDsByHubID(ctx context.Context, hubIDs []int64) (map[int64]int64, error) {
	return r.lookup(ctx, "mods", hubIDs)
}

func (r *importRepo) lookup(ctx context.Context, table string, hubIDs []int64) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(hubIDs))
	if len(hubIDs) == 0 {
		return ids, nil
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT hub_id, id FROM %s WHERE hub_id = ANY($1)`, table), hubIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup %s by hub id: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hubID, id int64
		if err := rows.Scan(&hubID, &id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		ids[hubID] = id
	}
	return ids, rows.Err()
}

func (r *importRepo) PruneMods(ctx context.Context, keep []int64, at time.Time) (int64, error) {
	if keep == nil {
		keep = []int64{}
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE mods SET deleted_at = $2, updated_at = $2
		WHERE hub_id IS NOT NULL AND deleted_at IS NULL AND NOT (hub_id = ANY($1))
	`, keep, at)
	if err != nil {
		return 0, fmt.Errorf("prune mods: %w", err)
	}
	return result.RowsAffected(), nil
}

func prefixColumns(alias string, columns []string) string {
	prefixed := make([]string, len(columns))
	for i, c := range columns {
		prefixed[i] = alias + "." + c
	}
	return strings.Join(prefixed, ", ")
}
