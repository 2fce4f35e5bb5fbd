package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classora/classora-auth/internal/config"
	apimiddleware "github.com/classora/classora-auth/internal/middleware"

	httpmiddleware "github.com/classora/classora-auth/internal/http/middleware"
	"github.com/classora/classora-auth/internal/service"
)

// AuthHandler maps the /auth routes onto the auth service.
type AuthHandler struct {
	Auth *service.AuthService
	Cfg  config.Config
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Cfg: cfg}
}

// Register creates a user and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		TenantID string `json:"tenantId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if req.TenantID == "" {
		if tenantID, ok := apimiddleware.TenantID(c); ok {
			req.TenantID = tenantID
		}
	}

	signed, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		TenantID: req.TenantID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendTokenResponse(c, signed)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	signed, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendTokenResponse(c, signed)
}

// Logout clears the session cookie. No authentication is required and no
// store access happens.
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     httpmiddleware.SessionCookieName,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// Me returns the acting user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := httpmiddleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
		return
	}

	profile, err := h.Auth.CurrentUser(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// UpdateDetails changes the acting user's name and/or email. Any other field
// in the payload is ignored.
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	user, ok := httpmiddleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	profile, err := h.Auth.UpdateDetails(c.Request.Context(), user.ID, service.UpdateDetailsInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// UpdatePassword rotates the acting user's password and issues a fresh token.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	user, ok := httpmiddleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	signed, err := h.Auth.UpdatePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendTokenResponse(c, signed)
}

// sendTokenResponse emits the signed token both as the session cookie and as
// a body field, so cookie and bearer clients are served by one operation.
func (h *AuthHandler) sendTokenResponse(c *gin.Context, signed string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     httpmiddleware.SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(h.Cfg.CookieExpireDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "token": signed})
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		c.JSON(authErr.Status, gin.H{"success": false, "error": authErr.Message})
		return
	}
	zap.L().Error("unhandled auth error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
}
