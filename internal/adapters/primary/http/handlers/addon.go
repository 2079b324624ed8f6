package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

func (h *Handler) ListAddons(c *gin.Context) {
	modID, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	addons, total, err := h.addonSvc.ListByMod(c.Request.Context(), currentUser(c), modID, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(addons, total, limit, offset))
}

func (h *Handler) GetAddon(c *gin.Context) {
	id, ok := parseID(c, "id", "addon")
	if !ok {
		return
	}

	addon, err := h.addonSvc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, addon)
}

func (h *Handler) CreateAddon(c *gin.Context) {
	modID, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	var req dto.CreateAddonRequest
	if !bindJSON(c, &req) {
		return
	}

	addon, err := h.addonSvc.Create(c.Request.Context(), currentUser(c), modID, req.ToService())
	if err != nil {
		log.WithError(err).Error("create addon failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, addon)
}

func (h *Handler) UpdateAddon(c *gin.Context) {
	id, ok := parseID(c, "id", "addon")
	if !ok {
		return
	}

	var req dto.UpdateAddonRequest
	if !bindJSON(c, &req) {
		return
	}

	addon, err := h.addonSvc.Update(c.Request.Context(), currentUser(c), id, req.Updates())
	if err != nil {
		log.WithError(err).Error("update addon failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, addon)
}

func (h *Handler) DeleteAddon(c *gin.Context) {
	id, ok := parseID(c, "id", "addon")
	if !ok {
		return
	}

	if err := h.addonSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DetachAddon(c *gin.Context) {
	id, ok := parseID(c, "id", "addon")
	if !ok {
		return
	}

	addon, err := h.addonSvc.Detach(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, addon)
}

func (h *Handler) ListAddonVersions(c *gin.Context) {
	addonID, ok := parseID(c, "id", "addon")
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

	versions, total, err := h.addonVersionSvc.ListByAddon(c.Request.Context(), currentUser(c), addonID, filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(versions, total, limit, offset))
}

func (h *Handler) CreateAddonVersion(c *gin.Context) {
	addonID, ok := parseID(c, "id", "addon")
	if !ok {
		return
	}

	var req dto.CreateAddonVersionRequest
	if !bindJSON(c, &req) {
		return
	}

	version, err := h.addonVersionSvc.Create(c.Request.Context(), currentUser(c), addonID, req.ToService())
	if err != nil {
		log.WithError(err).Error("create addon version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, version)
}

func (h *Handler) UpdateAddonVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "addon version")
	if !ok {
		return
	}

	var req dto.UpdateAddonVersionRequest
	if !bindJSON(c, &req) {
		return
	}

	version, err := h.addonVersionSvc.Update(c.Request.Context(), currentUser(c), id, req.Updates())
	if err != nil {
		log.WithError(err).Error("update addon version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, version)
}

func (h *Handler) DeleteAddonVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "addon version")
	if !ok {
		return
	}

	if err := h.addonVersionSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSptVersions(c *gin.Context) {
	versions, err := h.sptSvc.List(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list spt versions failed")
		mapDomainError(c, err)
		return
	}
	if versions == nil {
		versions = []*domain.SptVersion{}
	}

	c.JSON(http.StatusOK, gin.H{"items": versions})
}

func (h *Handler) CreateSptVersion(c *gin.Context) {
	var req dto.CreateSptVersionRequest
	if !bindJSON(c, &req) {
		return
	}

	version, err := h.sptSvc.Create(c.Request.Context(), currentUser(c), req.Version, req.Link, req.ColorClass)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, version)
}

func (h *Handler) ListLicenses(c *gin.Context) {
	licenses, err := h.licenseSvc.List(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list licenses failed")
		mapDomainError(c, err)
		return
	}
	if licenses == nil {
		licenses = []*domain.License{}
	}

	c.JSON(http.StatusOK, gin.H{"items": licenses})
}

func (h *Handler) GetLicense(c *gin.Context) {
	id, ok := parseID(c, "id", "license")
	if !ok {
		return
	}

	license, err := h.licenseSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, license)
}
