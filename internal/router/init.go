package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/internal/container"
	handlers "github.com/oksasatya/evcharge/internal/interface/http"
	"github.com/oksasatya/evcharge/internal/interface/middleware"
	"github.com/oksasatya/evcharge/internal/router/modules"
)

// InitModules builds the application services from c and registers every
// feature module with the registry. Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	svc := c.Services()

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Reset)
	r.Add(modules.NewAuthModule(authHandler, svc.Auth, c.Redis, c.Logger))

	var payAuth gin.HandlerFunc
	if c.Config.ChargingPayRequiresAuth {
		payAuth = middleware.Auth(svc.Auth, c.Logger)
	}
	r.Add(modules.NewChargingModule(handlers.NewChargingHandler(svc.Charging), c.Logger, payAuth))
	r.Add(modules.NewPaymentModule(handlers.NewPaymentHandler(svc.Payment), c.Redis, c.Logger))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
