package app

import (
	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/middleware"
	"github.com/stafflink/core/internal/modules/auth/permission"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/modules/auth/token"
	"github.com/stafflink/core/internal/modules/dataset"
	"github.com/stafflink/core/internal/pkg/flash"
	pkgredis "github.com/stafflink/core/internal/pkg/redis"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})

	sessionSvc := sessionmod.NewService(db, a.logger)
	oracle := permission.NewService(db, sessionSvc, a.logger)
	datasetSvc := dataset.NewService(db, sessionSvc, a.logger)
	fl := flash.New(rc)

	requireSession := middleware.RequireSession(sessionSvc)
	secureCookie := !a.cfg.CookieInsecure

	// Cookie/AJAX surface: credentialed CORS, session auth, HTTP 200
	// envelopes for auth failures.
	ajax := r.Group("/api/v1")
	ajax.Use(ajaxCors(a.cfg))
	ajax.Use(middleware.WithSession())
	ajax.Use(middleware.Idempotence(rc.Raw()))

	sessionmod.NewHandler(sessionSvc, fl, secureCookie, func(c *gin.Context, st *sessionstate.State) {
		oracle.Load(st, st.UserID, st.RoleID)
	}).RegisterRoutes(ajax, requireSession, middleware.RateLimit(rc.Raw()))

	permission.NewHandler(oracle).RegisterRoutes(ajax, requireSession,
		middleware.RequirePermission(oracle, "permission.manage"))
	dataset.NewHandler(datasetSvc).RegisterRoutes(ajax, requireSession)

	tokenHandler := token.NewHandler(sessionSvc, datasetSvc, secureCookie)
	tokenHandler.RegisterMint(ajax, requireSession)

	// Pure bearer surface: permissive CORS, 401/403 statuses.
	ext := r.Group("/ext/v1")
	ext.Use(middleware.APICors())
	tokenHandler.RegisterAPI(ext)

	ajax.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"data": "pong"})
	})
}
