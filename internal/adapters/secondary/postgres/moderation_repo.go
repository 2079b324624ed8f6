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

// ============================================================================
// Reports
// ============================================================================

const reportColumns = `id, reporter_id, reportable_type, reportable_id, reason, context, status, handled_by_id, created_at, updated_at`

type reportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) ports.ReportRepository {
	return &reportRepo{pool: pool}
}

func (r *reportRepo) Create(ctx context.Context, rep *domain.Report) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reports
			(reporter_id, reportable_type, reportable_id, reason, context, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`, rep.ReporterID, string(rep.ReportableType), rep.ReportableID, string(rep.Reason),
		rep.Context, string(rep.Status), rep.CreatedAt, rep.UpdatedAt).Scan(&rep.ID)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("get report by id: %w", err)
	}
	return rep, nil
}

func (r *reportRepo) Update(ctx context.Context, rep *domain.Report) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE reports SET status = $1, handled_by_id = $2, updated_at = $3 WHERE id = $4`,
		string(rep.Status), rep.HandledByID, rep.UpdatedAt, rep.ID)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *reportRepo) Exists(ctx context.Context, reporterID int64, typ domain.ReportableType, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reports
			WHERE reporter_id = $1 AND reportable_type = $2 AND reportable_id = $3
		)
	`, reporterID, string(typ), id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing report: %w", err)
	}
	return exists, nil
}

func (r *reportRepo) List(ctx context.Context, status domain.ReportStatus, limit, offset int) ([]*domain.Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE status = $1`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []*domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, total, nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var (
		rep                 domain.Report
		typ, reason, status string
	)
	err := row.Scan(&rep.ID, &rep.ReporterID, &typ, &rep.ReportableID, &reason,
		&rep.Context, &status, &rep.HandledByID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rep.ReportableType = domain.ReportableType(typ)
	rep.Reason = domain.ReportReason(reason)
	rep.Status = domain.ReportStatus(status)
	return &rep, nil
}

// ============================================================================
// Bans
// ============================================================================

type banRepo struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) ports.BanRepository {
	return &banRepo{pool: pool}
}

func (r *banRepo) Create(ctx context.Context, ban *domain.Ban) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bans (user_id, created_by_id, comment, expired_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, ban.UserID, ban.CreatedByID, ban.Comment, ban.ExpiredAt, ban.CreatedAt).Scan(&ban.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("create ban: %w", err)
	}
	return nil
}

func (r *banRepo) ActiveForUser(ctx context.Context, userID int64, at time.Time) (*domain.Ban, error) {
	var b domain.Ban
	err := r.pool.QueryRow(ctx, `
		SELECT id, hub_id, user_id, created_by_id, comment, expired_at, created_at
		FROM bans
		WHERE user_id = $1 AND (expired_at IS NULL OR expired_at > $2)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, at).Scan(&b.ID, &b.HubID, &b.UserID, &b.CreatedByID, &b.Comment, &b.ExpiredAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBanNotFound
		}
		return nil, fmt.Errorf("get active ban: %w", err)
	}
	return &b, nil
}

func (r *banRepo) Expire(ctx context.Context, banID int64, at time.Time) error {
	result, err := r.pool.Exec(ctx, `UPDATE bans SET expired_at = $2 WHERE id = $1`, banID, at)
	if err != nil {
		return fmt.Errorf("expire ban: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBanNotFound
	}
	return nil
}
