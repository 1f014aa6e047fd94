package models_test

import (
	"testing"
	"time"

	"rigworks-backend/internal/models"
)

func TestAccountNormalize(t *testing.T) {
	account := &models.PlayerAccount{ID: 1, Username: "miner", Energy: 150}
	account.Normalize()

	if account.Materials == nil {
		t.Error("Normalize should allocate the materials map")
	}
	if account.Inventory == nil {
		t.Error("Normalize should allocate the inventory slice")
	}
	if account.Role != models.RolePlayer {
		t.Errorf("Normalize should default role to player, got %q", account.Role)
	}
	if account.Energy != models.MaxEnergy {
		t.Errorf("Normalize should clamp energy to %.0f, got %.2f", models.MaxEnergy, account.Energy)
	}
}

func TestPruneExpiredItems(t *testing.T) {
	now := time.Now()
	account := &models.PlayerAccount{
		Inventory: []models.AccessoryItem{
			{ID: "a", ExpiresAt: now.Add(-time.Hour)},
			{ID: "b", ExpiresAt: now.Add(time.Hour)},
			{ID: "c"}, // no expiry
		},
	}

	account.PruneExpiredItems(now)

	if len(account.Inventory) != 2 {
		t.Fatalf("Expected 2 items after prune, got %d", len(account.Inventory))
	}
	for _, it := range account.Inventory {
		if it.ID == "a" {
			t.Error("Expired item should have been pruned")
		}
	}
}

func TestRigExpiry(t *testing.T) {
	purchased := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rig := &models.ProductionUnit{
		PurchasedAt:    purchased,
		DurationMonths: 3,
	}

	if rig.Expired(purchased.AddDate(0, 2, 0)) {
		t.Error("Rig should not be expired before its duration ends")
	}
	if !rig.Expired(purchased.AddDate(0, 3, 1)) {
		t.Error("Rig should be expired after its duration ends")
	}
}

func TestRigOverclocked(t *testing.T) {
	now := time.Now()
	rig := &models.ProductionUnit{OverclockUntil: now.Add(time.Hour)}

	if !rig.Overclocked(now) {
		t.Error("Rig should report overclocked inside the window")
	}
	if rig.Overclocked(now.Add(2 * time.Hour)) {
		t.Error("Rig should not report overclocked after the window")
	}
}

func TestExpeditionFinished(t *testing.T) {
	end := time.Now()
	exp := &models.Expedition{EndTime: end}
	grace := 30 * time.Second

	if exp.Finished(end.Add(-time.Minute), grace) {
		t.Error("Expedition should not be finished a minute early")
	}
	if !exp.Finished(end.Add(-10*time.Second), grace) {
		t.Error("Expedition should be finished inside the grace window")
	}
	if !exp.Finished(end.Add(time.Second), grace) {
		t.Error("Expedition should be finished after its end time")
	}
}

func TestMinesGameLookups(t *testing.T) {
	game := &models.MinesGame{
		Positions: []int{3, 7, 19},
		Revealed:  []int{0, 5},
	}

	if !game.IsMine(7) || game.IsMine(5) {
		t.Error("IsMine mismatch")
	}
	if !game.IsRevealed(5) || game.IsRevealed(7) {
		t.Error("IsRevealed mismatch")
	}
}

func TestMinesBetValidate(t *testing.T) {
	valid := &models.MinesBetRequest{Amount: 1000, MinesCount: 5}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid bet failed validation: %v", err)
	}

	cases := []models.MinesBetRequest{
		{Amount: 0, MinesCount: 5},
		{Amount: 200000, MinesCount: 5},
		{Amount: 1000, MinesCount: 0},
		{Amount: 1000, MinesCount: 25},
	}
	for _, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("Bet %+v should fail validation", c)
		}
	}
}

func TestGenerateClientSeed(t *testing.T) {
	a := models.GenerateClientSeed()
	b := models.GenerateClientSeed()

	if len(a) != 32 {
		t.Errorf("Client seed should be 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("Client seeds should be unique")
	}
}
