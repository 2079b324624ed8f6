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

const visibleAddonVersion = `av.disabled = FALSE AND av.published_at IS NOT NULL AND av.published_at <= NOW()`

const addonSelect = `
	SELECT
		a.id, a.mod_id, a.owner_id, a.name, a.slug, a.teaser, a.description,
		a.license_id, a.downloads, a.disabled, a.published_at, a.detached_at,
		a.created_at, a.updated_at, a.deleted_at,
		COALESCE((SELECT array_agg(aa.user_id ORDER BY aa.user_id) FROM addon_authors aa WHERE aa.addon_id = a.id), '{}') AS author_ids,
		(SELECT COUNT(*) FROM addon_versions av WHERE av.addon_id = a.id AND ` + visibleAddonVersion + `) AS version_count
	FROM addons a
`

type addonRepo struct {
	pool *pgxpool.Pool
}

func NewAddonRepository(pool *pgxpool.Pool) ports.AddonRepository {
	return &addonRepo{pool: pool}
}

func (r *addonRepo) Create(ctx context.Context, addon *domain.Addon) error {
	query := `
		INSERT INTO addons
			(mod_id, owner_id, name, slug, teaser, description, license_id,
			 disabled, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		addon.ModID, addon.OwnerID, addon.Name, addon.Slug, addon.Teaser,
		addon.Description, addon.LicenseID, addon.Disabled, addon.PublishedAt,
		addon.CreatedAt, addon.UpdatedAt,
	).Scan(&addon.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrModNotFound
		}
		return fmt.Errorf("create addon: %w", err)
	}

	if len(addon.AuthorIDs) > 0 {
		rows := make([][]interface{}, 0, len(addon.AuthorIDs))
		for _, id := range addon.AuthorIDs {
			rows = append(rows, []interface{}{addon.ID, id})
		}
		if err := replaceRows(ctx, r.pool, `DELETE FROM addon_authors WHERE addon_id = $1`, addon.ID,
			"addon_authors", []string{"addon_id", "user_id"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func (r *addonRepo) GetByID(ctx context.Context, id int64) (*domain.Addon, error) {
	addon, err := scanAddon(r.pool.QueryRow(ctx, addonSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddonNotFound
		}
		return nil, fmt.Errorf("get addon by id: %w", err)
	}
	return addon, nil
}

func (r *addonRepo) Update(ctx context.Context, addon *domain.Addon) error {
	query := `
		UPDATE addons
		SET mod_id=$1, name=$2, slug=$3, teaser=$4, description=$5,
			license_id=$6, disabled=$7, published_at=$8, detached_at=$9,
			updated_at=NOW()
		WHERE id=$10
	`
	result, err := r.pool.Exec(ctx, query,
		addon.ModID, addon.Name, addon.Slug, addon.Teaser, addon.Description,
		addon.LicenseID, addon.Disabled, addon.PublishedAt, addon.DetachedAt,
		addon.ID,
	)
	if err != nil {
		return fmt.Errorf("update addon: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAddonNotFound
	}
	return nil
}

func (r *addonRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.pool.Exec(ctx, `UPDATE addons SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("delete addon: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAddonNotFound
	}
	return nil
}

// List returns the attached addons of a mod. Detached addons no longer
// belong to the mod's listing.
func (r *addonRepo) List(ctx context.Context, filter ports.AddonListFilter) ([]*domain.Addon, int, error) {
	conditions := []string{"a.deleted_at IS NULL", "a.detached_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if filter.ModID != 0 {
		conditions = append(conditions, fmt.Sprintf("a.mod_id = $%d", argPos))
		args = append(args, filter.ModID)
		argPos++
	}
	if !filter.IncludeHidden {
		conditions = append(conditions,
			`a.disabled = FALSE AND a.published_at IS NOT NULL AND a.published_at <= NOW()`,
			`EXISTS (SELECT 1 FROM addon_versions av WHERE av.addon_id = a.id AND `+visibleAddonVersion+`)`,
		)
	}

	where := whereClause(conditions)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM addons a WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count addons: %w", err)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY a.downloads DESC, a.id DESC LIMIT $%d OFFSET $%d",
		addonSelect, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list addons: %w", err)
	}
	defer rows.Close()

	addons := []*domain.Addon{}
	for rows.Next() {
		a, err := scanAddon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan addon: %w", err)
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate addons: %w", err)
	}
	return addons, total, nil
}

func scanAddon(row pgx.Row) (*domain.Addon, error) {
	var a domain.Addon
	err := row.Scan(
		&a.ID, &a.ModID, &a.OwnerID, &a.Name, &a.Slug, &a.Teaser, &a.Description,
		&a.LicenseID, &a.Downloads, &a.Disabled, &a.PublishedAt, &a.DetachedAt,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.AuthorIDs, &a.VersionCount,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
