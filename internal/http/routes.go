package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", AuthJWT(h.JWTSecret), h.Me)
		auth.GET("/google", h.GoogleBegin)
		auth.GET("/google/callback", h.GoogleCallback)
	}

	// owner dashboard
	api := r.Group("/api", AuthJWT(h.JWTSecret))
	{
		api.POST("/links", h.CreateLink)
		api.GET("/links", h.ListLinks)
		api.PATCH("/links/:id", h.UpdateLink)
		api.DELETE("/links/:id", h.DeleteLink)
		api.PUT("/links/reorder", h.ReorderLinks)
		api.PATCH("/profile", h.UpdateProfile)
		api.PUT("/profile/socials", h.SetSocials)
	}

	// anonymous visitor surface
	pub := r.Group("/api/public")
	{
		pub.GET("/u/:username", h.PublicProfile)
		pub.POST("/u/:username/subscribe", h.RateLimit("sub"), h.Subscribe)
		pub.POST("/links/:id/click", h.RateLimit("click"), h.Click)
		pub.POST("/links/:id/unlock", h.RateLimit("unlock"), h.Unlock)
	}

	admin := r.Group("/api/admin", AuthJWT(h.JWTSecret), RequireAdmin())
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id", h.AdminUpdateUser)
		admin.GET("/flags", h.AdminListFlags)
		admin.PUT("/flags/:name", h.AdminSetFlag)
		admin.DELETE("/links/:id", h.AdminDeleteLink)
		admin.GET("/subscribers", h.AdminListSubscribers)
	}

	cron := r.Group("/api/cron", CronAuth(h.CronSecret))
	{
		cron.POST("/links/sweep", h.SweepLinks)
		cron.GET("/links/sweep", h.SweepPreview)
	}

	return r
}
