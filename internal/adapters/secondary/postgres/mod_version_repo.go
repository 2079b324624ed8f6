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

const modVersionSelect = `
	SELECT
		mv.id, mv.hub_id, mv.mod_id, mv.version, mv.version_major,
		mv.version_minor, mv.version_patch, mv.version_labels, mv.description,
		mv.link, mv.spt_version_constraint, mv.virus_total_link, mv.downloads,
		mv.disabled, mv.published_at, mv.created_at, mv.updated_at,
		COALESCE((
			SELECT array_agg(s.version ORDER BY s.version_major DESC, s.version_minor DESC, s.version_patch DESC)
			FROM mod_version_spt_version mvs
			JOIN spt_versions s ON s.id = mvs.spt_version_id
			WHERE mvs.mod_version_id = mv.id
		), '{}') AS spt_versions
	FROM mod_versions mv
`

var versionSortColumns = map[string]string{
	"created_at":   "mv.created_at",
	"published_at": "mv.published_at",
	"downloads":    "mv.downloads",
}

type modVersionRepo struct {
	pool *pgxpool.Pool
}

func NewModVersionRepository(pool *pgxpool.Pool) ports.ModVersionRepository {
	return &modVersionRepo{pool: pool}
}

func (r *modVersionRepo) Create(ctx context.Context, v *domain.ModVersion) error {
	query := `
		INSERT INTO mod_versions
			(hub_id, mod_id, version, version_major, version_minor, version_patch,
			 version_labels, description, link, spt_version_constraint,
			 virus_total_link, disabled, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		v.HubID, v.ModID, v.Version, v.Major, v.Minor, v.Patch, v.Label,
		v.Description, v.Link, v.SptVersionConstraint, v.VirusTotalLink,
		v.Disabled, v.PublishedAt, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModVersionConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrModNotFound
		}
		return fmt.Errorf("create mod version: %w", err)
	}
	return nil
}

func (r *modVersionRepo) GetByID(ctx context.Context, id int64) (*domain.ModVersion, error) {
	v, err := scanModVersion(r.pool.QueryRow(ctx, modVersionSelect+` WHERE mv.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModVersionNotFound
		}
		return nil, fmt.Errorf("get mod version by id: %w", err)
	}

	deps, err := r.ListDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Dependencies = deps
	return v, nil
}

func (r *modVersionRepo) Update(ctx context.Context, v *domain.ModVersion) error {
	query := `
		UPDATE mod_versions
		SET version=$1, version_major=$2, version_minor=$3, version_patch=$4,
			version_labels=$5, description=$6, link=$7, spt_version_constraint=$8,
			virus_total_link=$9, disabled=$10, published_at=$11, updated_at=NOW()
		WHERE id=$12
	`
	result, err := r.pool.Exec(ctx, query,
		v.Version, v.Major, v.Minor, v.Patch, v.Label, v.Description, v.Link,
		v.SptVersionConstraint, v.VirusTotalLink, v.Disabled, v.PublishedAt, v.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModVersionConflict
		}
		return fmt.Errorf("update mod version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModVersionNotFound
	}
	return nil
}

func (r *modVersionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mod_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mod version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModVersionNotFound
	}
	return nil
}

func (r *modVersionRepo) ListByMod(ctx context.Context, modID int64, filter ports.VersionListFilter) ([]*domain.ModVersion, int, error) {
	where := "mv.mod_id = $1"
	if filter.PublishedOnly {
		where += " AND " + visibleVersion
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM mod_versions mv WHERE "+where, modID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mod versions: %w", err)
	}

	orderBy := sortColumn(versionSortColumns, filter.SortBy, filter.Order, versionOrder("mv"))
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s, mv.id DESC LIMIT $2 OFFSET $3", modVersionSelect, where, orderBy)

	rows, err := r.pool.Query(ctx, query, modID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list mod versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.ModVersion{}
	for rows.Next() {
		v, err := scanModVersion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan mod version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate mod versions: %w", err)
	}
	return versions, total, nil
}

func (r *modVersionRepo) ListIDs(ctx context.Context) ([]int64, error) {
	return collectIDs(ctx, r.pool, `SELECT id FROM mod_versions ORDER BY id`)
}

func (r *modVersionRepo) ReplaceDependencies(ctx context.Context, versionID int64, deps []domain.ModDependency) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM mod_dependencies WHERE mod_version_id = $1`, versionID); err != nil {
			return fmt.Errorf("clear dependencies: %w", err)
		}
		for i := range deps {
			err := tx.QueryRow(ctx, `
				INSERT INTO mod_dependencies (mod_version_id, dependent_mod_id, constraint_expr)
				VALUES ($1, $2, $3)
				RETURNING id
			`, versionID, deps[i].DependentModID, deps[i].Constraint).Scan(&deps[i].ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrModNotFound
				}
				return fmt.Errorf("insert dependency: %w", err)
			}
			deps[i].ModVersionID = versionID
		}
		return nil
	})
}

// ListDependencies returns the declared dependencies with their resolved
// versions, newest first. The newest one is the recommended version.
func (r *modVersionRepo) ListDependencies(ctx context.Context, versionID int64) ([]domain.ModDependency, error) {
	query := `
		SELECT d.id, d.mod_version_id, d.dependent_mod_id, d.constraint_expr,
			COALESCE((
				SELECT array_agg(rd.resolved_mod_version_id ORDER BY ` + versionOrder("rv") + `)
				FROM mod_resolved_dependencies rd
				JOIN mod_versions rv ON rv.id = rd.resolved_mod_version_id
				WHERE rd.dependency_id = d.id
			), '{}') AS resolved
		FROM mod_dependencies d
		WHERE d.mod_version_id = $1
		ORDER BY d.id
	`
	rows, err := r.pool.Query(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	deps := []domain.ModDependency{}
	for rows.Next() {
		var d domain.ModDependency
		if err := rows.Scan(&d.ID, &d.ModVersionID, &d.DependentModID, &d.Constraint, &d.ResolvedVersionIDs); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		if len(d.ResolvedVersionIDs) > 0 {
			recommended := d.ResolvedVersionIDs[0]
			d.RecommendedID = &recommended
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (r *modVersionRepo) ReplaceResolvedDependencies(ctx context.Context, versionID int64, resolved []domain.ResolvedDependency) error {
	rows := make([][]interface{}, 0, len(resolved))
	for _, rd := range resolved {
		rows = append(rows, []interface{}{versionID, rd.DependencyID, rd.ResolvedModVersionID})
	}
	return replaceRows(ctx, r.pool,
		`DELETE FROM mod_resolved_dependencies WHERE mod_version_id = $1`, versionID,
		"mod_resolved_dependencies", []string{"mod_version_id", "dependency_id", "resolved_mod_version_id"}, rows)
}

func (r *modVersionRepo) ReplaceSptVersions(ctx context.Context, versionID int64, sptVersionIDs []int64) error {
	rows := make([][]interface{}, 0, len(sptVersionIDs))
	for _, id := range sptVersionIDs {
		rows = append(rows, []interface{}{versionID, id})
	}
	return replaceRows(ctx, r.pool,
		`DELETE FROM mod_version_spt_version WHERE mod_version_id = $1`, versionID,
		"mod_version_spt_version", []string{"mod_version_id", "spt_version_id"}, rows)
}

func scanModVersion(row pgx.Row) (*domain.ModVersion, error) {
	var v domain.ModVersion
	err := row.Scan(
		&v.ID, &v.HubID, &v.ModID, &v.Version, &v.Major, &v.Minor, &v.Patch,
		&v.Label, &v.Description, &v.Link, &v.SptVersionConstraint,
		&v.VirusTotalLink, &v.Downloads, &v.Disabled, &v.PublishedAt,
		&v.CreatedAt, &v.UpdatedAt, &v.SptVersions,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// replaceRows deletes the rows selected by deleteSQL and copies rows into
// table, in one transaction.
func replaceRows(ctx context.Context, pool *pgxpool.Pool, deleteSQL string, id int64, table string, columns []string, rows [][]interface{}) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSQL, id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
		return nil
	})
}

func collectIDs(ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) ([]int64, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect ids: %w", err)
	}
	return ids, nil
}
