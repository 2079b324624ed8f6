package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// visibleVersion is the publication gate of a mod_versions row aliased mv.
const visibleVersion = `mv.disabled = FALSE AND mv.published_at IS NOT NULL AND mv.published_at <= NOW()`

// versionOrder sorts the versions aliased alias newest first, releases above
// their pre-releases.
func versionOrder(alias string) string {
	return fmt.Sprintf("%[1]s.version_major DESC, %[1]s.version_minor DESC, %[1]s.version_patch DESC, (%[1]s.version_labels = '') DESC, %[1]s.created_at DESC", alias)
}

var modSelect = `
	SELECT
		m.id, m.hub_id, m.owner_id, m.name, m.slug, m.teaser, m.description,
		m.thumbnail, m.license_id, m.source_code_link, m.featured,
		m.contains_ai_content, m.contains_ads, m.disabled, m.published_at,
		m.downloads, m.created_at, m.updated_at, m.deleted_at,
		COALESCE((SELECT array_agg(ma.user_id ORDER BY ma.user_id) FROM mod_authors ma WHERE ma.mod_id = m.id), '{}') AS author_ids,
		COALESCE(u.name, '') AS owner_name,
		COALESCE(l.name, '') AS license_name,
		(SELECT COUNT(*) FROM mod_versions mv WHERE mv.mod_id = m.id AND ` + visibleVersion + `) AS version_count,
		lv.id, lv.version, lv.link, lv.spt_version_constraint, lv.downloads, lv.published_at
	FROM mods m
	LEFT JOIN users u ON u.id = m.owner_id
	LEFT JOIN licenses l ON l.id = m.license_id
	LEFT JOIN LATERAL (
		SELECT mv.id, mv.version, mv.link, mv.spt_version_constraint, mv.downloads, mv.published_at
		FROM mod_versions mv
		WHERE mv.mod_id = m.id AND ` + visibleVersion + `
		ORDER BY ` + versionOrder("mv") + `
		LIMIT 1
	) lv ON TRUE
`

var modSortColumns = map[string]string{
	"name":         "m.name",
	"created_at":   "m.created_at",
	"updated_at":   "m.updated_at",
	"published_at": "m.published_at",
	"downloads":    "m.downloads",
	"featured":     "m.featured",
}

type modRepo struct {
	pool *pgxpool.Pool
}

func NewModRepository(pool *pgxpool.Pool) ports.ModRepository {
	return &modRepo{pool: pool}
}

func (r *modRepo) Create(ctx context.Context, mod *domain.Mod) error {
	query := `
		INSERT INTO mods
			(hub_id, owner_id, name, slug, teaser, description, thumbnail,
			 license_id, source_code_link, featured, contains_ai_content,
			 contains_ads, disabled, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		mod.HubID, mod.OwnerID, mod.Name, mod.Slug, mod.Teaser, mod.Description,
		mod.Thumbnail, mod.LicenseID, mod.SourceCodeLink, mod.Featured,
		mod.ContainsAIContent, mod.ContainsAds, mod.Disabled, mod.PublishedAt,
		mod.CreatedAt, mod.UpdatedAt,
	).Scan(&mod.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModSlugConflict
		}
		return fmt.Errorf("create mod: %w", err)
	}
	return nil
}

func (r *modRepo) GetByID(ctx context.Context, id int64) (*domain.Mod, error) {
	mod, err := scanMod(r.pool.QueryRow(ctx, modSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModNotFound
		}
		return nil, fmt.Errorf("get mod by id: %w", err)
	}
	return mod, nil
}

func (r *modRepo) Update(ctx context.Context, mod *domain.Mod) error {
	query := `
		UPDATE mods
		SET name=$1, slug=$2, teaser=$3, description=$4, thumbnail=$5,
			license_id=$6, source_code_link=$7, featured=$8,
			contains_ai_content=$9, contains_ads=$10, disabled=$11,
			published_at=$12, updated_at=NOW()
		WHERE id=$13
	`
	result, err := r.pool.Exec(ctx, query,
		mod.Name, mod.Slug, mod.Teaser, mod.Description, mod.Thumbnail,
		mod.LicenseID, mod.SourceCodeLink, mod.Featured,
		mod.ContainsAIContent, mod.ContainsAds, mod.Disabled,
		mod.PublishedAt, mod.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModSlugConflict
		}
		return fmt.Errorf("update mod: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModNotFound
	}
	return nil
}

func (r *modRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.pool.Exec(ctx, `UPDATE mods SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("delete mod: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModNotFound
	}
	return nil
}

func (r *modRepo) Restore(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE mods SET deleted_at=NULL, updated_at=NOW() WHERE id=$1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModSlugConflict
		}
		return fmt.Errorf("restore mod: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotDeleted
	}
	return nil
}

func (r *modRepo) List(ctx context.Context, filter ports.ModListFilter) ([]*domain.Mod, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if !filter.IncludeHidden {
		conditions = append(conditions,
			`m.disabled = FALSE AND m.published_at IS NOT NULL AND m.published_at <= NOW()`,
			`EXISTS (SELECT 1 FROM mod_versions mv WHERE mv.mod_id = m.id AND `+visibleVersion+`)`,
		)
	}
	if !filter.IncludeDeleted {
		conditions = append(conditions, "m.deleted_at IS NULL")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("m.name ILIKE '%%' || $%d || '%%'", argPos))
		args = append(args, filter.Search)
		argPos++
	}
	if filter.SptVersion != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM mod_versions mv
			JOIN mod_version_spt_version mvs ON mvs.mod_version_id = mv.id
			JOIN spt_versions s ON s.id = mvs.spt_version_id
			WHERE mv.mod_id = m.id AND s.version = $%d)`, argPos))
		args = append(args, filter.SptVersion)
		argPos++
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("m.featured = $%d", argPos))
		args = append(args, *filter.Featured)
		argPos++
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"(m.owner_id = $%d OR EXISTS (SELECT 1 FROM mod_authors ma WHERE ma.mod_id = m.id AND ma.user_id = $%d))", argPos, argPos))
		args = append(args, *filter.OwnerID)
		argPos++
	}

	where := whereClause(conditions)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM mods m WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mods: %w", err)
	}

	orderBy := sortColumn(modSortColumns, filter.SortBy, filter.Order, "m.created_at DESC")
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s, m.id DESC LIMIT $%d OFFSET $%d",
		modSelect, where, orderBy, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list mods: %w", err)
	}
	defer rows.Close()

	mods := []*domain.Mod{}
	for rows.Next() {
		mod, err := scanMod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan mod: %w", err)
		}
		mods = append(mods, mod)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate mods: %w", err)
	}
	return mods, total, nil
}

func (r *modRepo) SetAuthors(ctx context.Context, modID int64, userIDs []int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM mod_authors WHERE mod_id = $1`, modID); err != nil {
			return fmt.Errorf("clear mod authors: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}
		rows := make([][]interface{}, 0, len(userIDs))
		for _, id := range userIDs {
			rows = append(rows, []interface{}{modID, id})
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"mod_authors"}, []string{"mod_id", "user_id"}, pgx.CopyFromRows(rows)); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("insert mod authors: %w", err)
		}
		return nil
	})
}

func scanMod(row pgx.Row) (*domain.Mod, error) {
	var (
		m           domain.Mod
		lvID        *int64
		lvVersion   *string
		lvLink      *string
		lvConstr    *string
		lvDownloads *int64
		lvPublished *time.Time
	)
	err := row.Scan(
		&m.ID, &m.HubID, &m.OwnerID, &m.Name, &m.Slug, &m.Teaser, &m.Description,
		&m.Thumbnail, &m.LicenseID, &m.SourceCodeLink, &m.Featured,
		&m.ContainsAIContent, &m.ContainsAds, &m.Disabled, &m.PublishedAt,
		&m.Downloads, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
		&m.AuthorIDs, &m.OwnerName, &m.LicenseName, &m.VersionCount,
		&lvID, &lvVersion, &lvLink, &lvConstr, &lvDownloads, &lvPublished,
	)
	if err != nil {
		return nil, err
	}
	if lvID != nil {
		m.LatestVersion = &domain.ModVersion{
			ID:                   *lvID,
			ModID:                m.ID,
			Version:              *lvVersion,
			Link:                 *lvLink,
			SptVersionConstraint: *lvConstr,
			Downloads:            *lvDownloads,
			PublishedAt:          lvPublished,
		}
	}
	return &m, nil
}
