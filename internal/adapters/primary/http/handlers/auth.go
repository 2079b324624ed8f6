package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/dto"
	"forge-service/internal/core/services"
)

func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), services.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.WithError(err).Warn("register failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSelfResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authSvc.Login(c.Request.Context(), services.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		TokenName: req.TokenName,
		Abilities: req.Abilities,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      dto.ToSelfResponse(user),
	})
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "If the address is registered and unverified, a new verification link has been sent."})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToSelfResponse(currentUser(c)))
}
