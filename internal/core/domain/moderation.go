package domain

import "time"

// ============================================================================
// Value Objects
// ============================================================================

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate_content"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonMisleading    ReportReason = "misleading"
	ReportReasonDMCA          ReportReason = "dmca"
	ReportReasonOther         ReportReason = "other"
)

func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonInappropriate, ReportReasonHarassment,
		ReportReasonMisleading, ReportReasonDMCA, ReportReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ReportableType names what can be reported. Comments are reportable in
// addition to everything commentable.
type ReportableType string

const (
	ReportableMod     ReportableType = "mod"
	ReportableAddon   ReportableType = "addon"
	ReportableUser    ReportableType = "user"
	ReportableComment ReportableType = "comment"
)

func (t ReportableType) IsValid() bool {
	switch t {
	case ReportableMod, ReportableAddon, ReportableUser, ReportableComment:
		return true
	}
	return false
}

// ============================================================================
// Entities
// ============================================================================

type Report struct {
	ID             int64          `json:"id"`
	ReporterID     int64          `json:"reporter_id"`
	ReportableType ReportableType `json:"reportable_type"`
	ReportableID   int64          `json:"reportable_id"`
	Reason         ReportReason   `json:"reason"`
	Context        string         `json:"context"`
	Status         ReportStatus   `json:"status"`
	HandledByID    *int64         `json:"handled_by_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewReport validates and builds a pending report.
func NewReport(reporterID int64, typ ReportableType, id int64, reason ReportReason, context string) (*Report, error) {
	if !typ.IsValid() {
		return nil, ErrInvalidReportable
	}
	if !reason.IsValid() {
		return nil, ErrInvalidReportReason
	}
	if typ == ReportableUser && id == reporterID {
		return nil, ErrCannotReportSelf
	}
	now := time.Now()
	return &Report{
		ReporterID:     reporterID,
		ReportableType: typ,
		ReportableID:   id,
		Reason:         reason,
		Context:        context,
		Status:         ReportStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Close moves a pending report to a final status.
func (r *Report) Close(status ReportStatus, moderatorID int64) error {
	if r.Status != ReportStatusPending {
		return ErrReportAlreadyClosed
	}
	r.Status = status
	r.HandledByID = &moderatorID
	r.UpdatedAt = time.Now()
	return nil
}

type Ban struct {
	ID          int64      `json:"id"`
	HubID       *int64     `json:"-"`
	UserID      int64      `json:"user_id"`
	CreatedByID *int64     `json:"created_by_id"`
	Comment     string     `json:"comment"`
	ExpiredAt   *time.Time `json:"expired_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsActive reports whether the ban is in force at t. A nil expiry is permanent.
func (b *Ban) IsActive(t time.Time) bool {
	return b.ExpiredAt == nil || b.ExpiredAt.After(t)
}
