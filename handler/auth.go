package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
)

type AuthHandler struct {
	config *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
	Workspace string `json:"workspace"`
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("잘못된 요청입니다."))
		return
	}

	// Find user in config
	user := h.config.FindUser(req.Username)
	if user == nil || user.Password != req.Password {
		respondError(c, apperr.Unauthorized("아이디 또는 비밀번호가 올바르지 않습니다."))
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user.Username, user.Workspace, &h.config.Auth)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.CodeInternal, "토큰을 발급할 수 없습니다."))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		Username:  user.Username,
		Workspace: user.Workspace,
	})
}

// GetCurrentUser returns the current user info
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username":  middleware.GetUsername(c),
		"workspace": middleware.GetWorkspace(c),
	})
}
