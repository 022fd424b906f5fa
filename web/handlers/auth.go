package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/security"
	"renewtrack.com/renewtrack/web/common"
	"renewtrack.com/renewtrack/web/middlewares"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=4"`
}

// Login exchanges credentials for a bearer token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var user core.User
	err := h.DB.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !security.CheckPassword(user.PasswordHash, req.Password)) {
		common.RespondError(c, fmt.Errorf("invalid credentials: %w", core.ErrUnauthorized))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select user: %w", err))
		return
	}

	token, err := security.CreateIdentityToken(user.Username, h.Secret, security.TokenTTL)
	if err != nil {
		common.RespondError(c, fmt.Errorf("create token: %w", err))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"token":    token,
		"username": user.Username,
	}))
}

// ChangePassword replaces the caller's password after re-checking the
// current one.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	username := middlewares.Username(c)

	var user core.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select user: %w", err))
		return
	}
	if !security.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		common.RespondError(c, fmt.Errorf("current password is incorrect: %w", core.ErrUnauthorized))
		return
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := h.DB.Model(&user).Update("password_hash", hash).Error; err != nil {
		common.RespondError(c, fmt.Errorf("update password: %w", err))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"changed": true}))
}

// verifyCallerPassword re-checks the authenticated caller's password. The
// reports endpoints demand it on every request.
func (h *Handler) verifyCallerPassword(c *gin.Context, password string) bool {
	username := middlewares.Username(c)

	var user core.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select user: %w", err))
		return false
	}
	if password == "" || !security.CheckPassword(user.PasswordHash, password) {
		common.RespondError(c, fmt.Errorf("password verification failed: %w", core.ErrUnauthorized))
		return false
	}
	return true
}
