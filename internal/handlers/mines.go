package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

type MinesHandler struct {
	store services.Store
	mines *services.MinesEngine
}

func NewMinesHandler(store services.Store, mines *services.MinesEngine) *MinesHandler {
	return &MinesHandler{store: store, mines: mines}
}

// minesGameView hides the mine layout while the game is live. The
// positions become visible once the board is settled.
func minesGameView(game *models.MinesGame) gin.H {
	view := gin.H{
		"game_id":     game.ID,
		"bet_amount":  game.BetAmount,
		"mines_count": game.MinesCount,
		"revealed":    game.Revealed,
		"status":      game.Status,
		"multiplier":  game.CurrentMultiplier,
		"potential":   game.PotentialWin,
		"server_hash": game.ServerHash,
		"client_seed": game.ClientSeed,
		"nonce":       game.Nonce,
		"created_at":  game.CreatedAt,
	}
	if game.Status != models.MinesStatusActive {
		view["positions"] = game.Positions
		view["ended_at"] = game.EndedAt
	}
	return view
}

func (h *MinesHandler) PlaceBet(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req models.MinesBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid amount and mines_count are required"})
		return
	}

	game, tx, err := h.mines.PlaceBet(c.Request.Context(), account, &req)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"game":        minesGameView(game),
		"balance":     account.Balance,
		"transaction": tx,
	})
}

func (h *MinesHandler) Reveal(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req models.MinesRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_id and position are required"})
		return
	}

	game, err := h.mines.Reveal(c.Request.Context(), account, req.GameID, req.Position)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"game":     minesGameView(game),
		"exploded": game.Status == models.MinesStatusExploded,
	})
}

func (h *MinesHandler) Cashout(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	var req models.MinesCashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_id is required"})
		return
	}

	game, tx, err := h.mines.Cashout(c.Request.Context(), account, req.GameID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"game":        minesGameView(game),
		"win":         game.PotentialWin,
		"balance":     account.Balance,
		"transaction": tx,
	})
}

// GetActive returns the player's live game, if any.
func (h *MinesHandler) GetActive(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	gameID, err := h.store.ActiveMinesGameID(c.Request.Context(), account.ID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	if gameID == "" {
		c.JSON(http.StatusOK, gin.H{"game": nil})
		return
	}

	game, err := h.store.GetMinesGame(c.Request.Context(), gameID)
	if err != nil || game.Status != models.MinesStatusActive {
		c.JSON(http.StatusOK, gin.H{"game": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": minesGameView(game)})
}

// Verify recomputes a finished game's mine layout so the player can
// audit the commitment.
func (h *MinesHandler) Verify(c *gin.Context) {
	account, ok := currentAccount(c, h.store)
	if !ok {
		return
	}

	game, err := h.store.GetMinesGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	if game.UserID != account.ID {
		abortServiceError(c, services.ErrNotOwner)
		return
	}
	if game.Status == models.MinesStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game is still active"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       h.mines.VerifyGame(game),
		"positions":   game.Positions,
		"server_hash": game.ServerHash,
		"client_seed": game.ClientSeed,
		"nonce":       game.Nonce,
	})
}
