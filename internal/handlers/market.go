package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/services"
)

type MarketHandler struct {
	store  services.Store
	market *services.MarketService
}

func NewMarketHandler(store services.Store, market *services.MarketService) *MarketHandler {
	return &MarketHandler{store: store, market: market}
}

// GetPrices returns the current per-tier prices and trends.
func (h *MarketHandler) GetPrices(c *gin.Context) {
	state, err := h.market.Current(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}

	trends := make([]gin.H, 0, len(state.Trends))
	for _, t := range state.Trends {
		trends = append(trends, gin.H{
			"tier":       t.Tier,
			"base_price": t.BasePrice,
			"price":      t.CurrentPrice,
			"multiplier": t.Multiplier,
			"trend":      t.Trend,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"trends":      trends,
		"updated_at":  state.UpdatedAt,
		"next_update": state.NextUpdate,
	})
}

// GetHistory returns the retained price history for one tier.
func (h *MarketHandler) GetHistory(c *gin.Context) {
	tier, err := strconv.Atoi(c.Param("tier"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier"})
		return
	}

	state, err := h.market.Current(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}

	trend, ok := state.Trends[tier]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown tier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":    trend.Tier,
		"history": trend.History,
	})
}

type sellRequest struct {
	Tier     int     `json:"tier" binding:"required,min=1"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

func (h *MarketHandler) Sell(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid tier and quantity are required"})
		return
	}

	tx, proceeds, err := h.market.SellMaterials(c.Request.Context(), account, req.Tier, req.Quantity)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"proceeds":    proceeds,
		"balance":     account.Balance,
		"materials":   account.Materials,
		"transaction": tx,
	})
}
