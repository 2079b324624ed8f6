package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forge-service/internal/adapters/primary/http/middleware"
	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
)

// Services groups the application services the API exposes.
type Services struct {
	Auth          *services.AuthService
	Mods          *services.ModService
	ModVersions   *services.ModVersionService
	Addons        *services.AddonService
	AddonVersions *services.AddonVersionService
	SptVersions   *services.SptVersionService
	Licenses      *services.LicenseService
	Downloads     *services.DownloadService
	Comments      *services.CommentService
	Follows       *services.FollowService
	Conversations *services.ConversationService
	Notifications *services.NotificationService
	Reports       *services.ReportService
	Bans          *services.BanService
}

type Handler struct {
	authSvc         *services.AuthService
	modSvc          *services.ModService
	versionSvc      *services.ModVersionService
	addonSvc        *services.AddonService
	addonVersionSvc *services.AddonVersionService
	sptSvc          *services.SptVersionService
	licenseSvc      *services.LicenseService
	downloadSvc     *services.DownloadService
	commentSvc      *services.CommentService
	followSvc       *services.FollowService
	conversationSvc *services.ConversationService
	notificationSvc *services.NotificationService
	reportSvc       *services.ReportService
	banSvc          *services.BanService
}

func New(svc Services) *Handler {
	registerValidation()
	return &Handler{
		authSvc:         svc.Auth,
		modSvc:          svc.Mods,
		versionSvc:      svc.ModVersions,
		addonSvc:        svc.Addons,
		addonVersionSvc: svc.AddonVersions,
		sptSvc:          svc.SptVersions,
		licenseSvc:      svc.Licenses,
		downloadSvc:     svc.Downloads,
		commentSvc:      svc.Comments,
		followSvc:       svc.Follows,
		conversationSvc: svc.Conversations,
		notificationSvc: svc.Notifications,
		reportSvc:       svc.Reports,
		banSvc:          svc.Bans,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.Authenticate(h.authSvc))

	// Auth
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/email/verification-notification", h.ResendVerification)

	// Public reads
	r.GET("/mods", h.ListMods)
	r.GET("/mods/:id", h.GetMod)
	r.GET("/mods/:id/versions", h.ListModVersions)
	r.GET("/mod_versions/:id", h.GetModVersion)
	r.GET("/mods/:id/addons", h.ListAddons)
	r.GET("/addons/:id", h.GetAddon)
	r.GET("/addons/:id/versions", h.ListAddonVersions)
	r.GET("/comments", h.ListComments)
	r.GET("/users/:id/followers", h.ListFollowers)
	r.GET("/users/:id/following", h.ListFollowing)
	r.GET("/spt_versions", h.ListSptVersions)
	r.GET("/licenses", h.ListLicenses)
	r.GET("/licenses/:id", h.GetLicense)

	// Downloads are counted for guests too
	r.POST("/mod_versions/:id/download", h.DownloadModVersion)
	r.POST("/addon_versions/:id/download", h.DownloadAddonVersion)

	authed := r.Group("", middleware.RequireAuth())
	authed.GET("/user", h.Me)
	authed.GET("/conversations", h.ListConversations)
	authed.GET("/conversations/:id/messages", h.ListMessages)
	authed.GET("/notifications", h.ListNotifications)
	authed.GET("/reports", h.ListReports)

	write := authed.Group("", middleware.RequireAbility("write"))

	// Mods
	write.POST("/mods", h.CreateMod)
	write.PATCH("/mods/:id", h.UpdateMod)
	write.DELETE("/mods/:id", h.DeleteMod)
	write.POST("/mods/:id/restore", h.RestoreMod)
	write.POST("/mods/:id/feature", h.FeatureMod)

	// Mod Versions
	write.POST("/mods/:id/versions", h.CreateModVersion)
	write.PATCH("/mod_versions/:id", h.UpdateModVersion)
	write.DELETE("/mod_versions/:id", h.DeleteModVersion)

	// Addons
	write.POST("/mods/:id/addons", h.CreateAddon)
	write.PATCH("/addons/:id", h.UpdateAddon)
	write.DELETE("/addons/:id", h.DeleteAddon)
	write.POST("/addons/:id/detach", h.DetachAddon)
	write.POST("/addons/:id/versions", h.CreateAddonVersion)
	write.PATCH("/addon_versions/:id", h.UpdateAddonVersion)
	write.DELETE("/addon_versions/:id", h.DeleteAddonVersion)

	// SPT Versions
	write.POST("/spt_versions", h.CreateSptVersion)

	// Comments
	write.POST("/comments", h.CreateComment)
	write.PATCH("/comments/:id", h.UpdateComment)
	write.DELETE("/comments/:id", h.DeleteComment)
	write.POST("/comments/:id/pin", h.PinComment)
	write.DELETE("/comments/:id/pin", h.UnpinComment)

	// Follows
	write.POST("/users/:id/follow", h.FollowUser)
	write.DELETE("/users/:id/follow", h.UnfollowUser)

	// Conversations
	write.POST("/conversations", h.StartConversation)
	write.POST("/conversations/:id/messages", h.SendMessage)
	write.POST("/conversations/:id/read", h.MarkConversationRead)

	// Notifications
	write.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	write.POST("/notifications/:id/read", h.MarkNotificationRead)

	// Moderation
	write.POST("/reports", h.CreateReport)
	write.POST("/reports/:id/resolve", h.ResolveReport)
	write.POST("/reports/:id/dismiss", h.DismissReport)
	write.POST("/users/:id/ban", h.BanUser)
	write.DELETE("/users/:id/ban", h.UnbanUser)
}

// parseID reads a positive integer path parameter. On failure it writes a
// 400 response naming what.
func parseID(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + what + " id"})
		return 0, false
	}
	return id, true
}

// pagination reads limit/offset with the same bounds the services apply.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func currentUser(c *gin.Context) *domain.User {
	return middleware.CurrentUser(c)
}
