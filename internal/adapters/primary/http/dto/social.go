package dto

import (
	"time"

	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
)

type CreateCommentRequest struct {
	CommentableType string `json:"commentable_type" binding:"required,oneof=mod addon user"`
	CommentableID   int64  `json:"commentable_id" binding:"required,gt=0"`
	ParentID        *int64 `json:"parent_id" binding:"omitempty,gt=0"`
	Body            string `json:"body" binding:"required,max=10000"`
}

func (r CreateCommentRequest) ToService() services.CreateCommentRequest {
	return services.CreateCommentRequest{
		CommentableType: domain.CommentableType(r.CommentableType),
		CommentableID:   r.CommentableID,
		ParentID:        r.ParentID,
		Body:            r.Body,
	}
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type StartConversationRequest struct {
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type MarkedResponse struct {
	Marked int64 `json:"marked"`
}

type CreateReportRequest struct {
	ReportableType string `json:"reportable_type" binding:"required,oneof=mod addon user comment"`
	ReportableID   int64  `json:"reportable_id" binding:"required,gt=0"`
	Reason         string `json:"reason" binding:"required,oneof=spam inappropriate_content harassment misleading dmca other"`
	Context        string `json:"context" binding:"max=1000"`
}

func (r CreateReportRequest) ToService() services.CreateReportRequest {
	return services.CreateReportRequest{
		ReportableType: domain.ReportableType(r.ReportableType),
		ReportableID:   r.ReportableID,
		Reason:         domain.ReportReason(r.Reason),
		Context:        r.Context,
	}
}

// BanRequest takes the duration as a Go duration string ("72h"). An empty
// duration bans permanently.
type BanRequest struct {
	Comment  string `json:"comment" binding:"max=1000"`
	Duration string `json:"duration" binding:"omitempty,duration"`
}

func (r BanRequest) ToService() services.BanRequest {
	var d time.Duration
	if r.Duration != "" {
		d, _ = time.ParseDuration(r.Duration)
	}
	return services.BanRequest{Comment: r.Comment, Duration: d}
}
