package services_test

import (
	"context"
	"errors"
	mathrand "math/rand"
	"testing"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

// seqRNG replays a fixed sequence of uniform draws.
func seqRNG(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestResolveRewardsCommonPool(t *testing.T) {
	cat := catalog.Default()
	dg := cat.Dungeon("flooded_cavern")

	// 0.5 -> common pool, 0.0 -> first entry, 0.9 -> no jackpot.
	rewards := services.ResolveRewards(dg, cat, seqRNG(0.5, 0.0, 0.9))

	if len(rewards) != 1 {
		t.Fatalf("Expected 1 reward, got %d", len(rewards))
	}
	r := rewards[0]
	if r.Kind != models.RewardKindMaterial || r.Tier != 2 || r.Amount != 10 {
		t.Errorf("Expected the first common entry, got %+v", r)
	}
	if rewards.HasJackpot() {
		t.Error("No jackpot should be present")
	}
}

func TestResolveRewardsSaltPool(t *testing.T) {
	cat := catalog.Default()
	dg := cat.Dungeon("flooded_cavern")

	// 0.1 -> salt pool, 0.0 -> first salt entry, 0.9 -> no jackpot.
	rewards := services.ResolveRewards(dg, cat, seqRNG(0.1, 0.0, 0.9))

	if len(rewards) != 1 {
		t.Fatalf("Expected 1 reward, got %d", len(rewards))
	}
	if rewards[0].Tier != 1 || rewards[0].Amount != 2 {
		t.Errorf("Expected the first salt entry, got %+v", rewards[0])
	}
}

func TestResolveRewardsJackpotStacks(t *testing.T) {
	cat := catalog.Default()
	dg := cat.Dungeon("flooded_cavern")

	// Common roll plus a winning jackpot roll picking the item entry.
	rewards := services.ResolveRewards(dg, cat, seqRNG(0.5, 0.0, 0.01, 0.9))

	if len(rewards) != 2 {
		t.Fatalf("Jackpot should stack on the base reward, got %d rewards", len(rewards))
	}
	jackpot := rewards[1]
	if !jackpot.Jackpot {
		t.Error("Second reward should be flagged as jackpot")
	}
	if jackpot.Kind != models.RewardKindItem || jackpot.ItemKey != "lucky_charm" {
		t.Errorf("Expected the lucky_charm rare entry, got %+v", jackpot)
	}
	if jackpot.ItemName != "Lucky Charm" {
		t.Errorf("Item name should be resolved from the catalog, got %q", jackpot.ItemName)
	}
}

func TestResolveRewardsJackpotRate(t *testing.T) {
	cat := catalog.Default()
	eligible := cat.Dungeon("flooded_cavern")
	ineligible := cat.Dungeon("abandoned_shaft")

	rng := mathrand.New(mathrand.NewSource(42))
	const trials = 100000

	jackpots := 0
	for i := 0; i < trials; i++ {
		if services.ResolveRewards(eligible, cat, rng.Float64).HasJackpot() {
			jackpots++
		}
	}
	rate := float64(jackpots) / trials
	if rate < 0.04 || rate > 0.06 {
		t.Errorf("Jackpot rate should be near 5%%, got %.4f", rate)
	}

	for i := 0; i < 1000; i++ {
		if services.ResolveRewards(ineligible, cat, rng.Float64).HasJackpot() {
			t.Fatal("Ineligible dungeon must never roll a jackpot")
		}
	}
}

func newExpeditionTestEnv(t *testing.T) (*services.ExpeditionService, *services.RigService, services.Store, *fakeClock, *models.PlayerAccount) {
	t.Helper()
	cat := catalog.Default()
	store := services.NewMemoryStore()
	clock := newFakeClock()
	ledger := services.NewLedger(store, clock)
	expSvc := services.NewExpeditionService(store, ledger, cat, clock)
	rigSvc := services.NewRigService(store, ledger, cat, clock)

	account := newTestAccount(1)
	account.Balance = 200000
	if err := store.SaveAccount(context.Background(), account); err != nil {
		t.Fatal(err)
	}
	return expSvc, rigSvc, store, clock, account
}

func TestStartExpeditionValidation(t *testing.T) {
	expSvc, rigSvc, _, _, account := newExpeditionTestEnv(t)

	small, _, err := rigSvc.Purchase(context.Background(), account, "starter")
	if err != nil {
		t.Fatal(err)
	}
	big, _, err := rigSvc.Purchase(context.Background(), account, "hauler")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := expSvc.Start(context.Background(), account, "flooded_cavern", small.ID); !errors.Is(err, services.ErrRigTooSmall) {
		t.Errorf("Undersized rig should be rejected, got %v", err)
	}
	if _, err := expSvc.Start(context.Background(), account, "nope", big.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Unknown dungeon should be rejected, got %v", err)
	}

	account.Energy = 5
	if _, err := expSvc.Start(context.Background(), account, "flooded_cavern", big.ID); !errors.Is(err, services.ErrInsufficientEnergy) {
		t.Errorf("Low energy should be rejected, got %v", err)
	}

	account.Energy = models.MaxEnergy
	exp, err := expSvc.Start(context.Background(), account, "flooded_cavern", big.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if account.Energy != models.MaxEnergy-20 {
		t.Errorf("Energy cost not charged: %.2f", account.Energy)
	}
	if exp.EndTime.Sub(exp.StartTime) != 4*time.Hour {
		t.Errorf("Run duration wrong: %s", exp.EndTime.Sub(exp.StartTime))
	}

	if _, err := expSvc.Start(context.Background(), account, "abandoned_shaft", small.ID); !errors.Is(err, services.ErrExpeditionActive) {
		t.Errorf("Second concurrent run should be rejected, got %v", err)
	}
}

func TestBusyRigBlocksRigOps(t *testing.T) {
	expSvc, rigSvc, _, _, account := newExpeditionTestEnv(t)

	rig, _, err := rigSvc.Purchase(context.Background(), account, "hauler")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := expSvc.Start(context.Background(), account, "flooded_cavern", rig.ID); err != nil {
		t.Fatal(err)
	}

	if _, _, err := rigSvc.Claim(context.Background(), account, rig.ID); !errors.Is(err, services.ErrRigBusy) {
		t.Errorf("Claim on a committed rig should fail, got %v", err)
	}
	if _, err := rigSvc.RefillEnergy(context.Background(), account, rig.ID); !errors.Is(err, services.ErrRigBusy) {
		t.Errorf("Refill on a committed rig should fail, got %v", err)
	}
	if _, err := rigSvc.Overclock(context.Background(), account, rig.ID); !errors.Is(err, services.ErrRigBusy) {
		t.Errorf("Overclock on a committed rig should fail, got %v", err)
	}
}

func TestClaimExpeditionTiming(t *testing.T) {
	expSvc, rigSvc, store, clock, account := newExpeditionTestEnv(t)

	rig, _, err := rigSvc.Purchase(context.Background(), account, "hauler")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := expSvc.Start(context.Background(), account, "flooded_cavern", rig.ID); err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Hour)
	if _, _, err := expSvc.Claim(context.Background(), account); !errors.Is(err, services.ErrExpeditionNotFinished) {
		t.Errorf("Early claim should fail, got %v", err)
	}
	if account.ActiveExpedition == nil {
		t.Fatal("Failed claim must not consume the run")
	}

	// Inside the grace window counts as finished.
	clock.Advance(3*time.Hour - 10*time.Second)
	rewards, tx, err := expSvc.Claim(context.Background(), account)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if len(rewards) == 0 {
		t.Fatal("Claim should produce at least one reward")
	}
	if tx.Type != models.TransactionTypeExpeditionReward {
		t.Errorf("Wrong transaction type %q", tx.Type)
	}
	if account.ActiveExpedition != nil {
		t.Error("Claim should release the rig")
	}

	// Rewards landed on the account and were persisted.
	stored, err := store.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Materials) == 0 && len(stored.Inventory) == 0 {
		t.Error("Persisted account should hold the rewards")
	}

	if _, _, err := expSvc.Claim(context.Background(), account); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Double claim should fail, got %v", err)
	}
}

func TestRegenEnergy(t *testing.T) {
	expSvc, _, store, _, account := newExpeditionTestEnv(t)

	account.Energy = 40
	if err := store.SaveAccount(context.Background(), account); err != nil {
		t.Fatal(err)
	}

	// One hour tick at 5/hour.
	if err := expSvc.RegenEnergy(context.Background(), time.Hour); err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Energy != 45 {
		t.Errorf("Expected energy 45 after regen, got %.2f", stored.Energy)
	}

	stored.Energy = 99
	if err := store.SaveAccount(context.Background(), stored); err != nil {
		t.Fatal(err)
	}
	if err := expSvc.RegenEnergy(context.Background(), time.Hour); err != nil {
		t.Fatal(err)
	}
	stored, _ = store.GetAccount(context.Background(), account.ID)
	if stored.Energy != models.MaxEnergy {
		t.Errorf("Regen should clamp at max, got %.2f", stored.Energy)
	}
}
