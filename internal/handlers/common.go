// Package handlers is the HTTP surface. Handlers load the account,
// delegate to a service and translate service errors into statuses;
// all game rules live in the services package.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

// contextWithTimeout bounds work done outside a request context, such
// as websocket pushes.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// currentAccount loads the authenticated player from the store. A
// token for a deleted account aborts with 401.
func currentAccount(c *gin.Context, store services.Store) (*models.PlayerAccount, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	account, err := store.GetAccount(c.Request.Context(), userID.(int64))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return nil, false
	}
	account.PruneExpiredItems(time.Now())
	return account, true
}

// abortServiceError maps service sentinels onto HTTP statuses.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrExpeditionActive),
		errors.Is(err, services.ErrGameActive),
		errors.Is(err, services.ErrGameNotActive),
		errors.Is(err, services.ErrRigBusy):
		// The client acted on state the server no longer has.
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInsufficientMaterials),
		errors.Is(err, services.ErrInsufficientEnergy),
		errors.Is(err, services.ErrInvalidBet),
		errors.Is(err, services.ErrExpeditionNotFinished),
		errors.Is(err, services.ErrRigExpired),
		errors.Is(err, services.ErrRigTooSmall),
		errors.Is(err, services.ErrTileAlreadyRevealed),
		errors.Is(err, services.ErrNothingRevealed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func accountView(account *models.PlayerAccount) gin.H {
	return gin.H{
		"id":         account.ID,
		"username":   account.Username,
		"role":       account.Role,
		"balance":    account.Balance,
		"materials":  account.Materials,
		"inventory":  account.Inventory,
		"energy":     account.Energy,
		"expedition": account.ActiveExpedition,
		"stats":      account.Stats,
	}
}
