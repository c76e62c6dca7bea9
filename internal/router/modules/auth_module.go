package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/evcharge/internal/interface/http"
	"github.com/oksasatya/evcharge/internal/interface/middleware"
	"github.com/oksasatya/evcharge/pkg/response"
)

// AuthModule wires account and password-reset routes.
// Public: POST /register, /login, /forgot-password, /reset-password/:token
// Protected: GET /protected
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.Authenticator, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth, Redis: rdb, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	perMinute := func(max int, key middleware.KeyFunc) gin.HandlerFunc {
		return middleware.RateLimit(m.Redis, middleware.Limit{Max: max, Window: time.Minute, Key: key})
	}
	loginLimiter := perMinute(10, middleware.KeyByIP())
	forgotLimiter := perMinute(5, middleware.KeyByIPAndPath())
	resetLimiter := perMinute(30, middleware.KeyByIPAndPath())

	rg.POST("/register", response.Handle(m.Logger, m.Handler.Register))
	rg.POST("/login", loginLimiter, response.Handle(m.Logger, m.Handler.Login))
	rg.POST("/forgot-password", forgotLimiter,
		response.Handle(m.Logger, m.Handler.ForgotPassword, handlers.ForgotPasswordOptions...))
	rg.POST("/reset-password/:token", resetLimiter,
		response.Handle(m.Logger, m.Handler.ResetPassword, handlers.ResetPasswordOptions...))

	rg.GET("/protected", middleware.Auth(m.Auth, m.Logger), perMinute(60, middleware.KeyByUserID()),
		response.Handle(m.Logger, m.Handler.Protected))
}
