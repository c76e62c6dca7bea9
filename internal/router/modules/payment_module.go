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

// PaymentModule wires Razorpay order creation and callback verification.
type PaymentModule struct {
	Handler *handlers.PaymentHandler
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewPaymentModule(h *handlers.PaymentHandler, rdb *redis.Client, logger *logrus.Logger) *PaymentModule {
	return &PaymentModule{Handler: h, Redis: rdb, Logger: logger}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, middleware.Limit{Max: 30, Window: time.Minute, Key: middleware.KeyByIPAndPath()})

	rg.POST("/create-order", limiter,
		response.Handle(m.Logger, m.Handler.CreateOrder, handlers.CreateOrderOptions...))
	rg.POST("/verify-payment", limiter,
		response.Handle(m.Logger, m.Handler.VerifyPayment, handlers.VerifyPaymentOptions...))
}
