package models

import "time"

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"

	// MaxEnergy is the ceiling for both the player gauge and rig gauges.
	MaxEnergy = 100.0

	StartingBalance = 10000 // $100.00 in cents
)

type PlayerStats struct {
	TotalClaimed   float64 `json:"total_claimed" redis:"total_claimed"`
	TotalWagered   float64 `json:"total_wagered" redis:"total_wagered"`
	TotalWon       float64 `json:"total_won" redis:"total_won"`
	TotalInvested  float64 `json:"total_invested" redis:"total_invested"`
	ExpeditionsRun int64   `json:"expeditions_run" redis:"expeditions_run"`
	JackpotsHit    int64   `json:"jackpots_hit" redis:"jackpots_hit"`
	RigsPurchased  int64   `json:"rigs_purchased" redis:"rigs_purchased"`
}

// AccessoryItem is an inventory entry granted by expedition rolls.
type AccessoryItem struct {
	ID         string    `json:"id" redis:"id"`
	ItemKey    string    `json:"item_key" redis:"item_key"`
	Name       string    `json:"name" redis:"name"`
	Count      int       `json:"count" redis:"count"`
	AcquiredAt time.Time `json:"acquired_at" redis:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at" redis:"expires_at"`
}

type PlayerAccount struct {
	ID           int64  `json:"id" redis:"id"`
	Username     string `json:"username" redis:"username"`
	PasswordHash string `json:"-" redis:"password_hash"`
	Role         string `json:"role" redis:"role"`

	Balance   float64         `json:"balance" redis:"balance"`
	Materials map[int]float64 `json:"materials" redis:"materials"` // tier -> quantity
	Inventory []AccessoryItem `json:"inventory" redis:"inventory"`
	Energy    float64         `json:"energy" redis:"energy"` // 0-100

	ActiveExpedition *Expedition `json:"active_expedition,omitempty" redis:"active_expedition"`
	Stats            PlayerStats `json:"stats" redis:"stats"`

	// Provably fair seeds
	ClientSeed string `json:"client_seed" redis:"client_seed"`
	Nonce      int64  `json:"nonce" redis:"nonce"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

// Normalize applies defaulting rules once at load time so downstream
// logic never has to handle missing fields.
func (a *PlayerAccount) Normalize() {
	if a.Materials == nil {
		a.Materials = make(map[int]float64)
	}
	if a.Inventory == nil {
		a.Inventory = []AccessoryItem{}
	}
	if a.Role == "" {
		a.Role = RolePlayer
	}
	if a.Energy < 0 {
		a.Energy = 0
	}
	if a.Energy > MaxEnergy {
		a.Energy = MaxEnergy
	}
}

// PruneExpiredItems drops inventory entries past their expiry.
func (a *PlayerAccount) PruneExpiredItems(now time.Time) {
	kept := a.Inventory[:0]
	for _, it := range a.Inventory {
		if it.ExpiresAt.IsZero() || it.ExpiresAt.After(now) {
			kept = append(kept, it)
		}
	}
	a.Inventory = kept
}
