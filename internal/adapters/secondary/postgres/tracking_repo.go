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

type trackingRepo struct {
	pool *pgxpool.Pool
}

func NewTrackingRepository(pool *pgxpool.Pool) ports.TrackingRepository {
	return &trackingRepo{pool: pool}
}

func (r *trackingRepo) Record(ctx context.Context, event *domain.TrackingEvent, since time.Time) (bool, error) {
	var versionTable, parentTable, parentKey string
	switch event.EventName {
	case domain.EventModDownload:
		versionTable, parentTable, parentKey = "mod_versions", "mods", "mod_id"
	case domain.EventAddonDownload:
		versionTable, parentTable, parentKey = "addon_versions", "addons", "addon_id"
	default:
		return false, fmt.Errorf("unknown tracking event %q", event.EventName)
	}

	counted := false
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// One writer per (event, target, ip) until commit.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::bigint || ':' || $3::text, 0))`,
			string(event.EventName), event.VisitableID, event.IP); err != nil {
			return fmt.Errorf("lock tracking key: %w", err)
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO tracking_events (event_name, visitable_type, visitable_id, user_id, ip, created_at)
			SELECT $1::text, $2::text, $3::bigint, $4::bigint, $5::text, $6::timestamptz
			WHERE NOT EXISTS (
				SELECT 1 FROM tracking_events
				WHERE event_name = $1 AND visitable_id = $3 AND ip = $5 AND created_at > $7
			)
			RETURNING id
		`, string(event.EventName), event.VisitableType, event.VisitableID, event.UserID, event.IP, event.CreatedAt, since).Scan(&event.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert tracking event: %w", err)
		}

		var parentID int64
		err = tx.QueryRow(ctx, fmt.Sprintf(
			`UPDATE %s SET downloads = downloads + 1 WHERE id = $1 RETURNING %s`, versionTable, parentKey),
			event.VisitableID).Scan(&parentID)
		if err != nil {
			return fmt.Errorf("bump %s downloads: %w", versionTable, err)
		}

		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`UPDATE %s SET downloads = downloads + 1 WHERE id = $1`, parentTable), parentID); err != nil {
			return fmt.Errorf("bump %s downloads: %w", parentTable, err)
		}
		counted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return counted, nil
}

// RecalculateModDownloads rebuilds version counters from the Hub baseline
// plus tracked downloads, then mod totals as the sum of their versions.
func (r *trackingRepo) RecalculateModDownloads(ctx context.Context) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE mod_versions mv
			SET downloads = mv.hub_downloads + (
				SELECT COUNT(*) FROM tracking_events t
				WHERE t.event_name = $1 AND t.visitable_id = mv.id
			)
		`, string(domain.EventModDownload)); err != nil {
			return fmt.Errorf("recalculate mod version downloads: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE mods m
			SET downloads = COALESCE((SELECT SUM(mv.downloads) FROM mod_versions mv WHERE mv.mod_id = m.id), 0)
		`); err != nil {
			return fmt.Errorf("recalculate mod downloads: %w", err)
		}
		return nil
	})
}

func (r *trackingRepo) RecalculateAddonDownloads(ctx context.Context) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE addon_versions av
			SET downloads = COALESCE((
				SELECT COUNT(*) FROM tracking_events t
				WHERE t.event_name = $1 AND t.visitable_id = av.id
			), 0)
		`, string(domain.EventAddonDownload)); err != nil {
			return fmt.Errorf("recalculate addon version downloads: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE addons a
			SET downloads = COALESCE((SELECT SUM(av.downloads) FROM addon_versions av WHERE av.addon_id = a.id), 0)
		`); err != nil {
			return fmt.Errorf("recalculate addon downloads: %w", err)
		}
		return nil
	})
}

type cacheRepo struct {
	pool *pgxpool.Pool
}

func NewCacheRepository(pool *pgxpool.Pool) ports.CacheRepository {
	return &cacheRepo{pool: pool}
}

func (r *cacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM cache WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired cache rows: %w", err)
	}
	return result.RowsAffected(), nil
}
