package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/internal/container"
	"github.com/oksasatya/evcharge/internal/interface/middleware"
	"github.com/oksasatya/evcharge/pkg/response"
)

// NewEngine builds the gin engine with global middleware and every module
// mounted under /api.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	r.NoRoute(func(ctx *gin.Context) { response.Error(ctx, http.StatusNotFound, "Not found") })

	reg := NewRegistry(r)
	// Rate-limit keys and logs under /api read the resolved client address.
	reg.Use(middleware.RealIP())
	InitModules(reg, c)
	routes := reg.RegisterAll()
	c.Logger.WithField("routes", len(routes)).Debug("http routes mounted")
	return r
}
