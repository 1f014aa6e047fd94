package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rigworks-backend/internal/logger"
	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

type AdminHandler struct {
	store  services.Store
	ledger *services.Ledger
}

func NewAdminHandler(store services.Store, ledger *services.Ledger) *AdminHandler {
	return &AdminHandler{store: store, ledger: ledger}
}

func (h *AdminHandler) ListAccounts(c *gin.Context) {
	ids, err := h.store.ListAccountIDs(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}

	accounts := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		account, err := h.store.GetAccount(c.Request.Context(), id)
		if err != nil {
			continue
		}
		accounts = append(accounts, accountView(account))
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// PurgeAccount deletes a player and all of their game state.
func (h *AdminHandler) PurgeAccount(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return
	}

	if err := h.store.DeleteAccount(c.Request.Context(), userID); err != nil {
		abortServiceError(c, err)
		return
	}

	admin, _ := c.Get("username")
	logger.Warn("account purged",
		zap.Int64("user_id", userID),
		zap.Any("by", admin))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type adjustRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Reason string  `json:"reason" binding:"required"`
}

// AdjustBalance credits or debits an account outside the normal game
// flows, with an audit trail entry.
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and reason are required"})
		return
	}

	account, err := h.store.GetAccount(c.Request.Context(), userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	tx, err := h.ledger.Commit(c.Request.Context(), account, services.Delta{
		Type:        models.TransactionTypeAdminAdjust,
		Balance:     req.Amount,
		Description: req.Reason,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"balance":     account.Balance,
		"transaction": tx,
	})
}
