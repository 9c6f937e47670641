package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mjaffal21/devcamper-api/internal/httpx"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	service *Service
	cookies *CookieWriter
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service *Service, cookies *CookieWriter) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// RegisterRoutes mounts the auth routes under /api/v1/auth.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/v1/auth")
	protect := RequireAuth(h.service.Tokens(), h.service.Store())

	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/logout", h.Logout)
	g.GET("/me", protect, h.Me)
	g.PUT("/updatedetails", protect, h.UpdateDetails)
	g.PUT("/updatepassword", protect, h.UpdatePassword)
	g.POST("/forgotpassword", h.ForgotPassword)
	g.PUT("/resetpassword/:resettoken", h.ResetPassword)
}

type registerDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher"`
}

func (h *Handler) Register(c *gin.Context) {
	var body registerDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	_, token, err := h.service.Register(c.Request.Context(), body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.InternalError(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, token)
}

type loginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var body loginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, "please provide an email and password")
		return
	}

	_, token, err := h.service.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		httpx.InternalError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// Logout clears the session cookie. The token itself stays valid until its
// natural expiry; there is no server-side revocation.
func (h *Handler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	httpx.OK(c, http.StatusOK, gin.H{})
}

func (h *Handler) Me(c *gin.Context) {
	ident, _ := CurrentIdentity(c)
	user, err := h.service.Store().FindByID(c.Request.Context(), ident.ID)
	if err != nil {
		httpx.Error(c, http.StatusNotFound, "user not found")
		return
	}
	httpx.OK(c, http.StatusOK, user)
}

type updateDetailsDTO struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) UpdateDetails(c *gin.Context) {
	var body updateDetailsDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	ident, _ := CurrentIdentity(c)
	user, err := h.service.UpdateDetails(c.Request.Context(), ident.ID, body.Name, body.Email)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, user)
}

type updatePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	var body updatePasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	ident, _ := CurrentIdentity(c)
	token, err := h.service.ChangePassword(c.Request.Context(), ident.ID, body.CurrentPassword, body.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Error(c, http.StatusUnauthorized, "password is incorrect")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

type forgotPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword reports 404 for an unknown email, matching login's refusal
// to mask the duplicate-email signal on register. Delivery failure rolls the
// reset fields back before responding 500.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var body forgotPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	resetURL := func(token string) string {
		return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, host, token)
	}

	err := h.service.ForgotPassword(c.Request.Context(), body.Email, resetURL)
	switch {
	case err == nil:
		httpx.OK(c, http.StatusOK, "email sent")
	case errors.Is(err, users.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "there is no user with that email")
	case errors.Is(err, ErrDeliveryFailed):
		httpx.Error(c, http.StatusInternalServerError, err.Error())
	default:
		httpx.InternalError(c, err)
	}
}

type resetPasswordDTO struct {
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var body resetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	_, token, err := h.service.ResetPassword(c.Request.Context(), c.Param("resettoken"), body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.InternalError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// sendToken delivers the session token as both an http-only cookie and a
// JSON body field.
func (h *Handler) sendToken(c *gin.Context, status int, token string) {
	h.cookies.Set(c, token)
	c.JSON(status, gin.H{"success": true, "token": token})
}
