package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/services"
)

type ExpeditionHandler struct {
	store             services.Store
	expeditionService *services.ExpeditionService
	catalog           *catalog.Catalog
}

func NewExpeditionHandler(store services.Store, expeditionService *services.ExpeditionService, cat *catalog.Catalog) *ExpeditionHandler {
	return &ExpeditionHandler{store: store, expeditionService: expeditionService, catalog: cat}
}

// GetDungeons lists the available dungeons with their entry
// requirements and reward pools.
func (h *ExpeditionHandler) GetDungeons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dungeons": h.catalog.Dungeons})
}

func (h *ExpeditionHandler) GetActive(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"expedition": account.ActiveExpedition})
}

type startExpeditionRequest struct {
	DungeonKey string `json:"dungeon_key" binding:"required"`
	RigID      string `json:"rig_id" binding:"required"`
}

func (h *ExpeditionHandler) Start(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req startExpeditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dungeon_key and rig_id are required"})
		return
	}

	exp, err := h.expeditionService.Start(c.Request.Context(), account, req.DungeonKey, req.RigID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"expedition": exp,
		"energy":     account.Energy,
	})
}

func (h *ExpeditionHandler) Claim(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	rewards, tx, err := h.expeditionService.Claim(c.Request.Context(), account)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"rewards":     rewards,
		"jackpot":     rewards.HasJackpot(),
		"materials":   account.Materials,
		"inventory":   account.Inventory,
		"transaction": tx,
	})
}
