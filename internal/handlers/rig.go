package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/services"
)

type RigHandler struct {
	store      services.Store
	rigService *services.RigService
	catalog    *catalog.Catalog
}

func NewRigHandler(store services.Store, rigService *services.RigService, cat *catalog.Catalog) *RigHandler {
	return &RigHandler{store: store, rigService: rigService, catalog: cat}
}

// GetPresets lists the purchasable rig models.
func (h *RigHandler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.catalog.Rigs})
}

func (h *RigHandler) List(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	rigs, err := h.rigService.List(c.Request.Context(), account)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	views := make([]gin.H, 0, len(rigs))
	for _, rig := range rigs {
		views = append(views, gin.H{
			"rig":           rig,
			"pending_yield": h.rigService.PendingYield(rig, account),
		})
	}

	c.JSON(http.StatusOK, gin.H{"rigs": views, "count": len(views)})
}

type purchaseRigRequest struct {
	PresetKey string `json:"preset_key" binding:"required"`
}

func (h *RigHandler) Purchase(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req purchaseRigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preset_key is required"})
		return
	}

	rig, tx, err := h.rigService.Purchase(c.Request.Context(), account, req.PresetKey)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"rig":         rig,
		"balance":     account.Balance,
		"transaction": tx,
	})
}

func (h *RigHandler) Claim(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	amount, tx, err := h.rigService.Claim(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"claimed":     amount,
		"balance":     account.Balance,
		"transaction": tx,
	})
}

func (h *RigHandler) RefillEnergy(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	tx, err := h.rigService.RefillEnergy(c.Request.Context(), account, c.Param("id"))
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

func (h *RigHandler) Overclock(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	tx, err := h.rigService.Overclock(c.Request.Context(), account, c.Param("id"))
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
