package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rigworks-backend/internal/logger"
	"rigworks-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	jwtService  *services.JWTService
	store       services.Store
}

func NewAuthHandler(authService *services.AuthService, jwtService *services.JWTService, store services.Store) *AuthHandler {
	return &AuthHandler{authService: authService, jwtService: jwtService, store: store}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.jwtService.GenerateToken(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	logger.Info("account registered", zap.Int64("user_id", account.ID), zap.String("username", account.Username))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    accountView(account),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	account, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := h.jwtService.GenerateToken(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    accountView(account),
	})
}

// RotateSeed issues the player a fresh client seed and resets the
// provably fair nonce.
func (h *AuthHandler) RotateSeed(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	if err := h.authService.RotateClientSeed(c.Request.Context(), account); err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"client_seed": account.ClientSeed,
	})
}
