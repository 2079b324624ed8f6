package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	ports "forge-service/internal/core/ports/output"
)

func (h *Handler) ListModVersions(c *gin.Context) {
	modID, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	filter := ports.VersionListFilter{
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Limit:  limit,
		Offset: offset,
	}

	versions, total, err := h.versionSvc.ListByMod(c.Request.Context(), currentUser(c), modID, filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.MapList(versions, dto.ToModVersionResponse), total, limit, offset))
}

func (h *Handler) GetModVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "mod version")
	if !ok {
		return
	}

	version, err := h.versionSvc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModVersionResponse(version))
}

func (h *Handler) CreateModVersion(c *gin.Context) {
	modID, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	var req dto.CreateModVersionRequest
	if !bindJSON(c, &req) {
		return
	}

	version, err := h.versionSvc.Create(c.Request.Context(), currentUser(c), modID, req.ToService())
	if err != nil {
		log.WithError(err).Error("create mod version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToModVersionResponse(version))
}

func (h *Handler) UpdateModVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "mod version")
	if !ok {
		return
	}

	var req dto.UpdateModVersionRequest
	if !bindJSON(c, &req) {
		return
	}

	version, err := h.versionSvc.Update(c.Request.Context(), currentUser(c), id, req.Updates())
	if err != nil {
		log.WithError(err).Error("update mod version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModVersionResponse(version))
}

func (h *Handler) DeleteModVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "mod version")
	if !ok {
		return
	}

	if err := h.versionSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DownloadModVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "mod version")
	if !ok {
		return
	}

	version, counted, err := h.downloadSvc.RecordModDownload(c.Request.Context(), currentUser(c), id, c.ClientIP())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DownloadResponse{Link: version.Link, Downloads: version.Downloads, Counted: counted})
}

func (h *Handler) DownloadAddonVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "addon version")
	if !ok {
		return
	}

	version, counted, err := h.downloadSvc.RecordAddonDownload(c.Request.Context(), currentUser(c), id, c.ClientIP())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DownloadResponse{Link: version.Link, Downloads: version.Downloads, Counted: counted})
}
