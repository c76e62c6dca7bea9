package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/response"
)

type PaymentHandler struct {
	Service *application.PaymentService
}

func NewPaymentHandler(s *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

// CreateOrder POST /api/create-order {amount, chargingRecordId}
// amount is already in paise.
func (h *PaymentHandler) CreateOrder(c *gin.Context) (response.Result, error) {
	var req struct {
		Amount           flexNumber `json:"amount"`
		ChargingRecordID string     `json:"chargingRecordId"`
	}
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	amount, ok := req.Amount.Float()
	if !ok {
		return response.Result{}, apperror.Validation("Amount must be a positive number")
	}
	order, err := h.Service.CreateOrder(c.Request.Context(), amount, req.ChargingRecordID)
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"success": true, "order": order}), nil
}

// Both our own field names and the ones Razorpay Checkout hands the browser
// are accepted.
type verifyPaymentRequest struct {
	OrderID           string `json:"orderId"`
	PaymentID         string `json:"paymentId"`
	Signature         string `json:"signature"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	ChargingRecordID  string `json:"chargingRecordId"`
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// VerifyPayment POST /api/verify-payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) (response.Result, error) {
	var req verifyPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	rec, err := h.Service.VerifyPayment(c.Request.Context(), application.VerifyPaymentInput{
		OrderID:          firstNonEmpty(req.OrderID, req.RazorpayOrderID),
		PaymentID:        firstNonEmpty(req.PaymentID, req.RazorpayPaymentID),
		Signature:        firstNonEmpty(req.Signature, req.RazorpaySignature),
		ChargingRecordID: req.ChargingRecordID,
	})
	if err != nil {
		return response.Result{}, err
	}
	body := toRecordJSON(rec)
	return response.OK(gin.H{
		"success":        true,
		"message":        "Payment verified and charging record marked as paid",
		"record":         body,
		"chargingRecord": body,
	}), nil
}

var (
	CreateOrderOptions   = []response.Option{response.WithFallback("Failed to create Razorpay order")}
	VerifyPaymentOptions = []response.Option{response.WithFallback("Payment verification failed")}
)
