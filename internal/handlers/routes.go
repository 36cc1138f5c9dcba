package handlers

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/blogicum/internal/middleware"
)

// RouterConfig selects the optional parts of the middleware chain
type RouterConfig struct {
	// ServiceName labels traces; tracing is off when empty
	ServiceName string
	// SecureCookies marks session and CSRF cookies HTTPS-only
	SecureCookies bool
	// Gzip compresses responses
	Gzip bool

	// AuthRateLimit guards login, registration and password reset posts
	AuthRateLimit gin.HandlerFunc
	// UploadRateLimit guards post forms, which accept images
	UploadRateLimit gin.HandlerFunc

	// MediaRoot serves locally stored images under MediaURL when set
	MediaRoot string
	MediaURL  string

	// HealthCheck backs GET /health
	HealthCheck func() error
}

// NewRouter builds the gin engine with every page route
func NewRouter(h *Handlers, cfg RouterConfig) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.RedirectTrailingSlash = true

	r.Use(gin.CustomRecovery(h.Recover))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.ServiceName != "" {
		r.Use(middleware.TracingMiddleware(cfg.ServiceName))
	}
	if cfg.Gzip {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	// Operational endpoints skip sessions and CSRF
	r.GET("/health", Health(cfg.HealthCheck))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaRoot != "" && cfg.MediaURL != "" {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	authLimit := orPassThrough(cfg.AuthRateLimit)
	uploadLimit := orPassThrough(cfg.UploadRateLimit)
	requireLogin := middleware.RequireLogin()
	postAuthor := h.RequirePostAuthor()
	commentAuthor := h.RequireCommentAuthor()

	site := r.Group("/")
	site.Use(middleware.LoadSession(h.sessions, h.users))
	site.Use(middleware.CSRFMiddleware(cfg.SecureCookies))
	{
		site.GET("/", h.Index)
		site.GET("/category/:category_slug/", h.CategoryPosts)
		site.GET("/profile/:username/", h.Profile)

		posts := site.Group("/posts")
		{
			posts.GET("/create/", requireLogin, h.CreatePostForm)
			posts.POST("/create/", requireLogin, uploadLimit, h.CreatePost)
			posts.GET("/:post_id/", h.PostDetail)
			posts.GET("/:post_id/edit/", requireLogin, postAuthor, h.EditPostForm)
			posts.POST("/:post_id/edit/", requireLogin, postAuthor, uploadLimit, h.EditPost)
			posts.GET("/:post_id/delete/", requireLogin, postAuthor, h.DeletePostConfirm)
			posts.POST("/:post_id/delete/", requireLogin, postAuthor, h.DeletePost)
			posts.POST("/:post_id/comment/", requireLogin, h.AddComment)
			posts.GET("/:post_id/edit_comment/:comment_id/", requireLogin, commentAuthor, h.EditCommentForm)
			posts.POST("/:post_id/edit_comment/:comment_id/", requireLogin, commentAuthor, h.EditComment)
			posts.GET("/:post_id/delete_comment/:comment_id/", requireLogin, commentAuthor, h.DeleteCommentConfirm)
			posts.POST("/:post_id/delete_comment/:comment_id/", requireLogin, commentAuthor, h.DeleteComment)
		}

		site.GET("/edit_profile/", requireLogin, h.EditProfilePage)
		site.POST("/edit_profile/", requireLogin, h.EditProfile)

		authGroup := site.Group("/auth")
		{
			authGroup.GET("/registration/", h.RegistrationPage)
			authGroup.POST("/registration/", authLimit, h.Register)
			authGroup.GET("/login/", h.LoginPage)
			authGroup.POST("/login/", authLimit, h.Login)
			authGroup.POST("/logout/", h.Logout)
		}

		password := site.Group("/password")
		{
			password.GET("/change/", requireLogin, h.PasswordChangePage)
			password.POST("/change/", requireLogin, h.PasswordChange)
			password.GET("/change/done/", requireLogin, h.PasswordChangeDone)
			password.GET("/reset/", h.PasswordResetPage)
			password.POST("/reset/", authLimit, h.PasswordReset)
			password.GET("/reset/done/", h.PasswordResetDone)
			password.GET("/reset/confirm/:token/", h.PasswordResetConfirmPage)
			password.POST("/reset/confirm/:token/", authLimit, h.PasswordResetConfirm)
			password.GET("/reset/complete/", h.PasswordResetComplete)
		}

		site.GET("/pages/about/", h.StaticPage("pages/about.html"))
		site.GET("/pages/rules/", h.StaticPage("pages/rules.html"))
		site.GET("/pages/contacts/", h.StaticPage("pages/contacts.html"))
	}

	// Unknown URLs get the 404 page with the visitor still logged in
	r.NoRoute(middleware.LoadSession(h.sessions, h.users), middleware.CSRFMiddleware(cfg.SecureCookies), h.NotFound)

	return r, nil
}

func orPassThrough(mw gin.HandlerFunc) gin.HandlerFunc {
	if mw != nil {
		return mw
	}
	return func(c *gin.Context) { c.Next() }
}
