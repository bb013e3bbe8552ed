package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/config"
)

// ajaxCors builds the credentialed CORS middleware for the cookie surface.
// With no configured origins (development) every origin is allowed.
func ajaxCors(cfg *config.AppConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	return cors.New(corsConfig)
}
