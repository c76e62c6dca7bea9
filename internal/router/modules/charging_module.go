package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/evcharge/internal/interface/http"
	"github.com/oksasatya/evcharge/pkg/response"
)

// ChargingModule wires the charging log. GET /charging is kept as an alias
// of /charging-records for older clients.
type ChargingModule struct {
	Handler *handlers.ChargingHandler
	Logger  *logrus.Logger
	// PayAuth guards PUT /charging/:id/pay when non-nil.
	PayAuth gin.HandlerFunc
}

func NewChargingModule(h *handlers.ChargingHandler, logger *logrus.Logger, payAuth gin.HandlerFunc) *ChargingModule {
	return &ChargingModule{Handler: h, Logger: logger, PayAuth: payAuth}
}

func (m *ChargingModule) Register(rg *gin.RouterGroup) {
	list := response.Handle(m.Logger, m.Handler.List, handlers.ListChargingOptions...)

	rg.POST("/charging", response.Handle(m.Logger, m.Handler.Create, handlers.CreateChargingOptions...))
	rg.GET("/charging", list)
	rg.GET("/charging-records", list)
	rg.GET("/charging-records/search", response.Handle(m.Logger, m.Handler.Search))

	pay := []gin.HandlerFunc{response.Handle(m.Logger, m.Handler.MarkPaid, handlers.MarkPaidOptions...)}
	if m.PayAuth != nil {
		pay = append([]gin.HandlerFunc{m.PayAuth}, pay...)
	}
	rg.PUT("/charging/:id/pay", pay...)
}

