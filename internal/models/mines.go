package models

import "time"

const MinesGridSize = 25

type MinesStatus string

const (
	MinesStatusActive   MinesStatus = "active"
	MinesStatusCashed   MinesStatus = "cashed_out"
	MinesStatusExploded MinesStatus = "exploded"
)

// MinesGame is one push-your-luck session. Positions are committed at
// bet time and never change for the lifetime of the game; handlers must
// not echo them back to the client while the game is active.
type MinesGame struct {
	ID         string  `json:"id" redis:"id"`
	UserID     int64   `json:"user_id" redis:"user_id"`
	BetAmount  float64 `json:"bet_amount" redis:"bet_amount"`
	MinesCount int     `json:"mines_count" redis:"mines_count"`

	Positions []int `json:"positions" redis:"positions"`
	Revealed  []int `json:"revealed" redis:"revealed"`

	Status            MinesStatus `json:"status" redis:"status"`
	CurrentMultiplier float64     `json:"current_multiplier" redis:"current_multiplier"`
	PotentialWin      float64     `json:"potential_win" redis:"potential_win"`

	// Provably fair commitment
	ClientSeed string `json:"client_seed" redis:"client_seed"`
	ServerHash string `json:"server_hash" redis:"server_hash"`
	Nonce      int64  `json:"nonce" redis:"nonce"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	EndedAt   time.Time `json:"ended_at,omitempty" redis:"ended_at"`
}

func (g *MinesGame) IsMine(pos int) bool {
	for _, p := range g.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

func (g *MinesGame) IsRevealed(pos int) bool {
	for _, p := range g.Revealed {
		if p == pos {
			return true
		}
	}
	return false
}

type MinesBetRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	MinesCount int     `json:"mines_count" binding:"required,min=1,max=24"`
}

type MinesRevealRequest struct {
	GameID   string `json:"game_id" binding:"required"`
	Position int    `json:"position" binding:"min=0,max=24"`
}

type MinesCashoutRequest struct {
	GameID string `json:"game_id" binding:"required"`
}
