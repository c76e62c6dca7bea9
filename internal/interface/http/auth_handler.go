package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/internal/interface/middleware"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/response"
)

type AuthHandler struct {
	Auth  *application.AuthService
	Reset *application.PasswordResetService
}

func NewAuthHandler(auth *application.AuthService, reset *application.PasswordResetService) *AuthHandler {
	return &AuthHandler{Auth: auth, Reset: reset}
}

// bcrypt only looks at the first 72 bytes of a password.
type credentialsRequest struct {
	Email    string `json:"email" binding:"omitempty,max=254"`
	Password string `json:"password" binding:"omitempty,max=72"`
}

// Register POST /api/register {email, password}
func (h *AuthHandler) Register(c *gin.Context) (response.Result, error) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	if err := h.Auth.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"message": "User registered successfully"}), nil
}

// Login POST /api/login {email, password}
func (h *AuthHandler) Login(c *gin.Context) (response.Result, error) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"message": "Login successful", "token": res.Token}), nil
}

// ForgotPassword POST /api/forgot-password {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) (response.Result, error) {
	var req struct {
		Email string `json:"email" binding:"omitempty,max=254"`
	}
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	if err := h.Reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"message": "Password reset link sent to email!"}), nil
}

// ResetPassword POST /api/reset-password/:token {password}
func (h *AuthHandler) ResetPassword(c *gin.Context) (response.Result, error) {
	var req struct {
		Password string `json:"password" binding:"omitempty,max=72"`
	}
	if err := bindJSON(c, &req); err != nil {
		return response.Result{}, err
	}
	if err := h.Reset.RedeemReset(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{"message": "Password reset successful"}), nil
}

// Protected GET /api/protected (bearer)
func (h *AuthHandler) Protected(c *gin.Context) (response.Result, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return response.Result{}, application.ErrMissingToken
	}
	return response.OK(gin.H{"message": "Access granted", "user": toUserJSON(u)}), nil
}

// Route options: an unknown email on forgot-password is a 400, not a 404.
var (
	ForgotPasswordOptions = []response.Option{
		response.WithStatus(apperror.KindNotFound, http.StatusBadRequest),
		response.WithFallback("Something went wrong"),
	}
	ResetPasswordOptions = []response.Option{response.WithFallback("Something went wrong")}
)
