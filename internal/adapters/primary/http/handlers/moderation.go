package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	"forge-service/internal/core/domain"
)

// ============================================================================
// Reports
// ============================================================================

func (h *Handler) CreateReport(c *gin.Context) {
	var req dto.CreateReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reportSvc.Create(c.Request.Context(), currentUser(c), req.ToService())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *Handler) ListReports(c *gin.Context) {
	limit, offset := pagination(c)
	status := domain.ReportStatus(c.DefaultQuery("status", string(domain.ReportStatusPending)))

	reports, total, err := h.reportSvc.List(c.Request.Context(), currentUser(c), status, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(reports, total, limit, offset))
}

func (h *Handler) ResolveReport(c *gin.Context) {
	id, ok := parseID(c, "id", "report")
	if !ok {
		return
	}

	report, err := h.reportSvc.Resolve(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) DismissReport(c *gin.Context) {
	id, ok := parseID(c, "id", "report")
	if !ok {
		return
	}

	report, err := h.reportSvc.Dismiss(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ============================================================================
// Bans
// ============================================================================

func (h *Handler) BanUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	var req dto.BanRequest
	if !bindJSON(c, &req) {
		return
	}

	ban, err := h.banSvc.Ban(c.Request.Context(), currentUser(c), id, req.ToService())
	if err != nil {
		log.WithError(err).WithField("user_id", id).Warn("ban failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ban)
}

func (h *Handler) UnbanUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.banSvc.Unban(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
