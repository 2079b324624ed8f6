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

type sptVersionRepo struct {
	pool *pgxpool.Pool
}

func NewSptVersionRepository(pool *pgxpool.Pool) ports.SptVersionRepository {
	return &sptVersionRepo{pool: pool}
}

func (r *sptVersionRepo) List(ctx context.Context) ([]*domain.SptVersion, error) {
	query := `
		SELECT id, version, version_major, version_minor, version_patch,
			   version_labels, link, color_class, mod_count, created_at, updated_at
		FROM spt_versions
		ORDER BY version_major DESC, version_minor DESC, version_patch DESC, (version_labels = '') DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list spt versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.SptVersion{}
	for rows.Next() {
		var s domain.SptVersion
		if err := rows.Scan(&s.ID, &s.Version, &s.Major, &s.Minor, &s.Patch,
			&s.Label, &s.Link, &s.ColorClass, &s.ModCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan spt version: %w", err)
		}
		versions = append(versions, &s)
	}
	return versions, rows.Err()
}

func (r *sptVersionRepo) Create(ctx context.Context, s *domain.SptVersion) error {
	query := `
		INSERT INTO spt_versions
			(version, version_major, version_minor, version_patch, version_labels,
			 link, color_class, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		s.Version, s.Major, s.Minor, s.Patch, s.Label, s.Link, s.ColorClass,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSptVersionConflict
		}
		return fmt.Errorf("create spt version: %w", err)
	}
	return nil
}

// RecountMods stores the number of distinct publicly visible mods that have
// a visible version resolved to each SPT version.
func (r *sptVersionRepo) RecountMods(ctx context.Context) error {
	query := `
		UPDATE spt_versions s
		SET mod_count = COALESCE(c.mods, 0), updated_at = NOW()
		FROM spt_versions s2
		LEFT JOIN (
			SELECT mvs.spt_version_id, COUNT(DISTINCT mv.mod_id) AS mods
			FROM mod_version_spt_version mvs
			JOIN mod_versions mv ON mv.id = mvs.mod_version_id
			JOIN mods m ON m.id = mv.mod_id
			WHERE ` + visibleVersion + `
			  AND m.disabled = FALSE AND m.deleted_at IS NULL
			  AND m.published_at IS NOT NULL AND m.published_at <= NOW()
			GROUP BY mvs.spt_version_id
		) c ON c.spt_version_id = s2.id
		WHERE s.id = s2.id
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("recount spt version mods: %w", err)
	}
	return nil
}

type licenseRepo struct {
	pool *pgxpool.Pool
}

func NewLicenseRepository(pool *pgxpool.Pool) ports.LicenseRepository {
	return &licenseRepo{pool: pool}
}

func (r *licenseRepo) List(ctx context.Context) ([]*domain.License, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, hub_id, name, link FROM licenses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	licenses := []*domain.License{}
	for rows.Next() {
		var l domain.License
		if err := rows.Scan(&l.ID, &l.HubID, &l.Name, &l.Link); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, &l)
	}
	return licenses, rows.Err()
}

func (r *licenseRepo) GetByID(ctx context.Context, id int64) (*domain.License, error) {
	var l domain.License
	err := r.pool.QueryRow(ctx, `SELECT id, hub_id, name, link FROM licenses WHERE id = $1`, id).
		Scan(&l.ID, &l.HubID, &l.Name, &l.Link)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("get license by id: %w", err)
	}
	return &l, nil
}
