package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

const addonVersionSelect = `
	SELECT
		av.id, av.addon_id, av.version, av.version_major, av.version_minor,
		av.version_patch, av.version_labels, av.description, av.link,
		av.mod_version_constraint, av.virus_total_link, av.downloads,
		av.disabled, av.published_at, av.created_at, av.updated_at,
		COALESCE((
			SELECT array_agg(ar.mod_version_id ORDER BY ar.mod_version_id DESC)
			FROM addon_resolved_mod_versions ar
			WHERE ar.addon_version_id = av.id
		), '{}') AS compatible
	FROM addon_versions av
`

var addonVersionSortColumns = map[string]string{
	"created_at":   "av.created_at",
	"published_at": "av.published_at",
	"downloads":    "av.downloads",
}

type addonVersionRepo struct {
	pool *pgxpool.Pool
}

func NewAddonVersionRepository(pool *pgxpool.Pool) ports.AddonVersionRepository {
	return &addonVersionRepo{pool: pool}
}

func (r *addonVersionRepo) Create(ctx context.Context, v *domain.AddonVersion) error {
	query := `
		INSERT INTO addon_versions
			(addon_id, version, version_major, version_minor, version_patch,
			 version_labels, description, link, mod_version_constraint,
			 virus_total_link, disabled, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		v.AddonID, v.Version, v.Major, v.Minor, v.Patch, v.Label, v.Description,
		v.Link, v.ModVersionConstraint, v.VirusTotalLink, v.Disabled,
		v.PublishedAt, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAddonVersionConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrAddonNotFound
		}
		return fmt.Errorf("create addon version: %w", err)
	}
	return nil
}

func (r *addonVersionRepo) GetByID(ctx context.Context, id int64) (*domain.AddonVersion, error) {
	v, err := scanAddonVersion(r.pool.QueryRow(ctx, addonVersionSelect+` WHERE av.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddonVersionNotFound
		}
		return nil, fmt.Errorf("get addon version by id: %w", err)
	}
	return v, nil
}

func (r *addonVersionRepo) Update(ctx context.Context, v *domain.AddonVersion) error {
	query := `
		UPDATE addon_versions
		SET version=$1, version_major=$2, version_minor=$3, version_patch=$4,
			version_labels=$5, description=$6, link=$7, mod_version_constraint=$8,
			virus_total_link=$9, disabled=$10, published_at=$11, updated_at=NOW()
		WHERE id=$12
	`
	result, err := r.pool.Exec(ctx, query,
		v.Version, v.Major, v.Minor, v.Patch, v.Label, v.Description, v.Link,
		v.ModVersionConstraint, v.VirusTotalLink, v.Disabled, v.PublishedAt, v.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAddonVersionConflict
		}
		return fmt.Errorf("update addon version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAddonVersionNotFound
	}
	return nil
}

func (r *addonVersionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM addon_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete addon version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAddonVersionNotFound
	}
	return nil
}

func (r *addonVersionRepo) ListByAddon(ctx context.Context, addonID int64, filter ports.VersionListFilter) ([]*domain.AddonVersion, int, error) {
	where := "av.addon_id = $1"
	if filter.PublishedOnly {
		where += " AND " + visibleAddonVersion
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM addon_versions av WHERE "+where, addonID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count addon versions: %w", err)
	}

	orderBy := sortColumn(addonVersionSortColumns, filter.SortBy, filter.Order, versionOrder("av"))
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s, av.id DESC LIMIT $2 OFFSET $3", addonVersionSelect, where, orderBy)

	rows, err := r.pool.Query(ctx, query, addonID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list addon versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.AddonVersion{}
	for rows.Next() {
		v, err := scanAddonVersion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan addon version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate addon versions: %w", err)
	}
	return versions, total, nil
}

func (r *addonVersionRepo) ListIDs(ctx context.Context) ([]int64, error) {
	return collectIDs(ctx, r.pool, `SELECT id FROM addon_versions ORDER BY id`)
}

func (r *addonVersionRepo) ReplaceResolvedModVersions(ctx context.Context, versionID int64, modVersionIDs []int64) error {
	rows := make([][]interface{}, 0, len(modVersionIDs))
	for _, id := range modVersionIDs {
		rows = append(rows, []interface{}{versionID, id})
	}
	return replaceRows(ctx, r.pool,
		`DELETE FROM addon_resolved_mod_versions WHERE addon_version_id = $1`, versionID,
		"addon_resolved_mod_versions", []string{"addon_version_id", "mod_version_id"}, rows)
}

func scanAddonVersion(row pgx.Row) (*domain.AddonVersion, error) {
	var v domain.AddonVersion
	err := row.Scan(
		&v.ID, &v.AddonID, &v.Version, &v.Major, &v.Minor, &v.Patch, &v.Label,
		&v.Description, &v.Link, &v.ModVersionConstraint, &v.VirusTotalLink,
		&v.Downloads, &v.Disabled, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt,
		&v.CompatibleModVersionIDs,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
