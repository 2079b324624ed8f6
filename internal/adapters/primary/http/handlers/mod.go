package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	ports "forge-service/internal/core/ports/output"
)

func (h *Handler) ListMods(c *gin.Context) {
	limit, offset := pagination(c)

	filter := ports.ModListFilter{
		Search:         c.Query("search"),
		SptVersion:     c.Query("spt_version"),
		IncludeDeleted: c.Query("trashed") == "true",
		SortBy:         c.Query("sort_by"),
		Order:          c.Query("order"),
		Limit:          limit,
		Offset:         offset,
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}
	if v := c.Query("owner_id"); v != "" {
		ownerID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid owner id"})
			return
		}
		filter.OwnerID = &ownerID
	}

	mods, total, err := h.modSvc.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		log.WithError(err).Error("list mods failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.MapList(mods, dto.ToModResponse), total, limit, offset))
}

func (h *Handler) GetMod(c *gin.Context) {
	id, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	mod, err := h.modSvc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModResponse(mod))
}

func (h *Handler) CreateMod(c *gin.Context) {
	var req dto.CreateModRequest
	if !bindJSON(c, &req) {
		return
	}

	mod, err := h.modSvc.Create(c.Request.Context(), currentUser(c), req.ToService())
	if err != nil {
		log.WithError(err).Error("create mod failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToModResponse(mod))
}

func (h *Handler) UpdateMod(c *gin.Context) {
	id, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	var req dto.UpdateModRequest
	if !bindJSON(c, &req) {
		return
	}

	mod, err := h.modSvc.Update(c.Request.Context(), currentUser(c), id, req.Updates())
	if err != nil {
		log.WithError(err).Error("update mod failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModResponse(mod))
}

func (h *Handler) DeleteMod(c *gin.Context) {
	id, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	if err := h.modSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RestoreMod(c *gin.Context) {
	id, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	mod, err := h.modSvc.Restore(c.Request.Context(), currentUser(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModResponse(mod))
}

func (h *Handler) FeatureMod(c *gin.Context) {
	id, ok := parseID(c, "id", "mod")
	if !ok {
		return
	}

	var req dto.FeatureRequest
	if !bindJSON(c, &req) {
		return
	}

	mod, err := h.modSvc.SetFeatured(c.Request.Context(), currentUser(c), id, *req.Featured)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModResponse(mod))
}
