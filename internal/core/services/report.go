package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type ReportService struct {
	repo     ports.ReportRepository
	mods     ports.ModRepository
	addons   ports.AddonRepository
	users    ports.UserRepository
	comments ports.CommentRepository
	bans     ports.BanRepository
	notifier Notifier
}

func NewReportService(
	repo ports.ReportRepository,
	mods ports.ModRepository,
	addons ports.AddonRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	bans ports.BanRepository,
	notifier Notifier,
) *ReportService {
	return &ReportService{
		repo:     repo,
		mods:     mods,
		addons:   addons,
		users:    users,
		comments: comments,
		bans:     bans,
		notifier: notifier,
	}
}

type CreateReportRequest struct {
	ReportableType domain.ReportableType
	ReportableID   int64
	Reason         domain.ReportReason
	Context        string
}

func (s *ReportService) Create(ctx context.Context, actor *domain.User, req CreateReportRequest) (*domain.Report, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	report, err := domain.NewReport(actor.ID, req.ReportableType, req.ReportableID, req.Reason, req.Context)
	if err != nil {
		return nil, err
	}

	if err := s.ensureReportable(ctx, actor.ID, req.ReportableType, req.ReportableID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, actor.ID, req.ReportableType, req.ReportableID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReport
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"report_id":       report.ID,
		"reportable_type": report.ReportableType,
		"reportable_id":   report.ReportableID,
		"reason":          report.Reason,
	}).Info("report created")

	return report, nil
}

func (s *ReportService) List(ctx context.Context, actor *domain.User, status domain.ReportStatus, limit, offset int) ([]*domain.Report, int, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, 0, err
	}
	if status == "" {
		status = domain.ReportStatusPending
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, status, limit, offset)
}

func (s *ReportService) Resolve(ctx context.Context, actor *domain.User, id int64) (*domain.Report, error) {
	return s.close(ctx, actor, id, domain.ReportStatusResolved)
}

func (s *ReportService) Dismiss(ctx context.Context, actor *domain.User, id int64) (*domain.Report, error) {
	return s.close(ctx, actor, id, domain.ReportStatusDismissed)
}

func (s *ReportService) close(ctx context.Context, actor *domain.User, id int64, status domain.ReportStatus) (*domain.Report, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, err
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := report.Close(status, actor.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, report.ReporterID, domain.NotificationReportDone, map[string]interface{}{
		"report_id": report.ID,
		"status":    report.Status,
	})

	return report, nil
}

// ensureReportable checks that the target exists and that the actor is not
// reporting their own content.
func (s *ReportService) ensureReportable(ctx context.Context, actorID int64, typ domain.ReportableType, id int64) error {
	var own bool
	switch typ {
	case domain.ReportableMod:
		mod, err := s.mods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		own = mod.IsAuthoredBy(actorID)
	case domain.ReportableAddon:
		addon, err := s.addons.GetByID(ctx, id)
		if err != nil {
			return err
		}
		own = addon.IsAuthoredBy(actorID)
	case domain.ReportableUser:
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return err
		}
	case domain.ReportableComment:
		comment, err := s.comments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		own = comment.UserID == actorID
	default:
		return domain.ErrInvalidReportable
	}
	if own {
		return domain.ErrCannotReportSelf
	}
	return nil
}
