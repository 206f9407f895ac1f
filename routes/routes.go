package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DeepanshiGandhi/Image-Tracker/auth/middleware"
	"github.com/DeepanshiGandhi/Image-Tracker/handlers"
	"github.com/DeepanshiGandhi/Image-Tracker/limiter"
)

// Register wires every route. Beacon and click routes sit behind the rate
// limiter; generation and listing require a token, generation additionally
// a privileged one.
func Register(r *gin.Engine, t *handlers.Tracker, a *handlers.Auth, l limiter.Limiter, secret []byte) {
	rateLimited := middleware.RateLimitMiddleware(l)
	optional := middleware.AuthOptional(secret)

	r.GET("/track/:id", rateLimited, optional, t.Track)
	r.GET("/click/:id", rateLimited, optional, t.Click)
	r.GET("/proxy/:id/:name", optional, t.ProxyImage)
	r.GET("/dl/:id/:name", optional, t.DownloadPDF)
	r.GET("/generated/:name", t.DownloadGenerated)

	r.GET("/logs", middleware.AuthRequired(secret), t.Logs)

	api := r.Group("/api")
	api.POST("/register", a.Register)
	api.POST("/login", a.Login)

	api.Use(middleware.AuthRequired(secret))
	api.GET("/logs", t.Logs)
	api.POST("/make", middleware.AdminRequired(), t.Generate)
}
