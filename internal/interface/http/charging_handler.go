package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/pkg/response"
)

type ChargingHandler struct {
	Service *application.ChargingService
}

func NewChargingHandler(s *application.ChargingService) *ChargingHandler {
	return &ChargingHandler{Service: s}
}

type createChargingRequest struct {
	VehicleID     string     `json:"vehicleId" binding:"omitempty,max=64"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	EnergyUsed    flexNumber `json:"energyUsed"`
	AmountCharged flexNumber `json:"amountCharged"`
	IsPaid        bool       `json:"isPaid"`
}

// Create POST /api/charging
func (h *ChargingHandler) Create(c *gin.Context) (response.Result, error) {
	var req createChargingRequest
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	rec, err := h.Service.Create(c.Request.Context(), application.CreateChargingInput{
		VehicleID:     req.VehicleID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		EnergyUsed:    string(req.EnergyUsed),
		AmountCharged: string(req.AmountCharged),
		IsPaid:        req.IsPaid,
	})
	if err != nil {
		return response.Result{}, err
	}
	return response.Created(gin.H{"message": "Charging record saved!", "record": toRecordJSON(rec)}), nil
}

// List GET /api/charging-records
func (h *ChargingHandler) List(c *gin.Context) (response.Result, error) {
	recs, err := h.Service.ListAll(c.Request.Context())
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(toRecordList(recs)), nil
}

// Search GET /api/charging-records/search?vehicleId=&size=
func (h *ChargingHandler) Search(c *gin.Context) (response.Result, error) {
	size, _ := strconv.Atoi(c.Query("size"))
	recs, err := h.Service.Search(c.Request.Context(), c.Query("vehicleId"), size)
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(toRecordList(recs)), nil
}

// MarkPaid PUT /api/charging/:id/pay
func (h *ChargingHandler) MarkPaid(c *gin.Context) (response.Result, error) {
	rec, err := h.Service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"message": "Payment status updated", "record": toRecordJSON(rec)}), nil
}

var (
	CreateChargingOptions = []response.Option{response.WithFallback("Failed to save record")}
	ListChargingOptions   = []response.Option{response.WithFallback("Unable to fetch records")}
	MarkPaidOptions       = []response.Option{response.WithFallback("Failed to update payment status")}
)
