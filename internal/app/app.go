package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/config"
	"github.com/stafflink/core/internal/database"
	"github.com/stafflink/core/internal/middleware"
	jwtpkg "github.com/stafflink/core/internal/pkg/jwt"
	pkgredis "github.com/stafflink/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
}

// New initializes the application: config → DB → Redis → routes. Any
// failure here is a configuration failure and fatal to the process.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	jwtpkg.SetSecret(cfg.JWTSecret)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	app := &App{cfg: cfg, router: router, db: db, logger: logger}
	app.registerRoutes(rc)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }
