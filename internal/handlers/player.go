package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

type PlayerHandler struct {
	store  services.Store
	ledger *services.Ledger
}

func NewPlayerHandler(store services.Store, ledger *services.Ledger) *PlayerHandler {
	return &PlayerHandler{store: store, ledger: ledger}
}

func (h *PlayerHandler) GetCurrentUser(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": accountView(account)})
}

// Logout is a client-side token discard; the server keeps no session
// state.
func (h *PlayerHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *PlayerHandler) GetBalance(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":   account.Balance,
		"materials": account.Materials,
		"energy":    account.Energy,
	})
}

func (h *PlayerHandler) GetTransactions(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	transactions, err := h.store.GetTransactions(c.Request.Context(), account.ID, limit)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

type amountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func (h *PlayerHandler) Deposit(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid amount is required"})
		return
	}

	tx, err := h.ledger.Commit(c.Request.Context(), account, services.Delta{
		Type:        models.TransactionTypeDeposit,
		Balance:     req.Amount,
		Description: "Deposit",
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

func (h *PlayerHandler) Withdraw(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid amount is required"})
		return
	}

	tx, err := h.ledger.Commit(c.Request.Context(), account, services.Delta{
		Type:        models.TransactionTypeWithdraw,
		Balance:     -req.Amount,
		Description: "Withdrawal",
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
