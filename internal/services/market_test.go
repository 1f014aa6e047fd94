package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

func TestNewMarketStateSeedsBasePrices(t *testing.T) {
	cat := catalog.Default()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	state := services.NewMarketState(cat, now)

	for _, tier := range cat.Tiers {
		trend := state.Trends[tier.Tier]
		if trend == nil {
			t.Fatalf("Tier %d missing from seeded market", tier.Tier)
		}
		if trend.CurrentPrice != tier.BasePrice {
			t.Errorf("Tier %d should seed at base price %.2f, got %.2f", tier.Tier, tier.BasePrice, trend.CurrentPrice)
		}
		if trend.Multiplier != 1.0 || trend.Trend != models.TrendStable {
			t.Errorf("Tier %d should seed stable at 1.0x", tier.Tier)
		}
	}
	if !state.NextUpdate.After(now) {
		t.Error("Seeded market should schedule a future update")
	}
}

func TestRefreshIfDueNoOpBeforeInterval(t *testing.T) {
	cat := catalog.Default()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	state := services.NewMarketState(cat, now)

	early := now.Add(time.Hour)
	next := services.RefreshIfDue(state, cat, early, func() float64 { return 0.9 })

	if next.UpdatedAt != now {
		t.Error("Refresh before the interval should not advance UpdatedAt")
	}
	for tier, trend := range next.Trends {
		if trend.CurrentPrice != cat.Tier(tier).BasePrice {
			t.Errorf("Tier %d price moved before the interval", tier)
		}
	}
}

func TestRefreshIfDueStaysBounded(t *testing.T) {
	cat := catalog.Default()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	state := services.NewMarketState(cat, now)

	// Push upward as hard as the walk allows for many cycles, then
	// downward; prices must stay inside the fluctuation band.
	for i := 0; i < 200; i++ {
		now = state.NextUpdate
		state = services.RefreshIfDue(state, cat, now, func() float64 { return 1.0 })
	}
	for _, tier := range cat.Tiers {
		maxBound := tier.BasePrice * (1 + cat.Market.MaxFluctuation)
		if got := state.Trends[tier.Tier].CurrentPrice; got > maxBound+1e-9 {
			t.Errorf("Tier %d exceeded upper bound: %.4f > %.4f", tier.Tier, got, maxBound)
		}
	}

	for i := 0; i < 200; i++ {
		now = state.NextUpdate
		state = services.RefreshIfDue(state, cat, now, func() float64 { return 0.0 })
	}
	for _, tier := range cat.Tiers {
		minBound := tier.BasePrice * (1 - cat.Market.MaxFluctuation)
		if got := state.Trends[tier.Tier].CurrentPrice; got < minBound-1e-9 {
			t.Errorf("Tier %d fell below lower bound: %.4f < %.4f", tier.Tier, got, minBound)
		}
	}
}

func TestRefreshIfDueTrendAndHistory(t *testing.T) {
	cat := catalog.Default()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	state := services.NewMarketState(cat, now)

	state = services.RefreshIfDue(state, cat, state.NextUpdate, func() float64 { return 1.0 })
	if state.Trends[1].Trend != models.TrendUp {
		t.Errorf("Upward step should report trend up, got %q", state.Trends[1].Trend)
	}

	state = services.RefreshIfDue(state, cat, state.NextUpdate, func() float64 { return 0.0 })
	if state.Trends[1].Trend != models.TrendDown {
		t.Errorf("Downward step should report trend down, got %q", state.Trends[1].Trend)
	}

	for i := 0; i < cat.Market.HistoryLength*2; i++ {
		state = services.RefreshIfDue(state, cat, state.NextUpdate, func() float64 { return 0.5 })
	}
	if got := len(state.Trends[1].History); got != cat.Market.HistoryLength {
		t.Errorf("History should be trimmed to %d points, got %d", cat.Market.HistoryLength, got)
	}
}

func TestMarketServiceCurrentIsLazy(t *testing.T) {
	cat := catalog.Default()
	store := services.NewMemoryStore()
	clock := newFakeClock()
	ledger := services.NewLedger(store, clock)
	market := services.NewMarketService(store, ledger, cat, clock)

	first, err := market.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}

	// A second read inside the interval returns the same step.
	clock.Advance(time.Minute)
	second, err := market.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("Reads within the interval should not advance the market")
	}

	clock.Advance(time.Duration(cat.Market.UpdateIntervalHours * float64(time.Hour)))
	third, err := market.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !third.UpdatedAt.After(first.UpdatedAt) {
		t.Error("A read past the interval should refresh the market")
	}
}

func TestSellMaterials(t *testing.T) {
	cat := catalog.Default()
	store := services.NewMemoryStore()
	clock := newFakeClock()
	ledger := services.NewLedger(store, clock)
	market := services.NewMarketService(store, ledger, cat, clock)

	account := newTestAccount(1)
	account.Materials[1] = 10
	if err := store.SaveAccount(context.Background(), account); err != nil {
		t.Fatal(err)
	}

	state, err := market.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	price, _ := state.PriceFor(1)

	tx, proceeds, err := market.SellMaterials(context.Background(), account, 1, 4)
	if err != nil {
		t.Fatalf("SellMaterials failed: %v", err)
	}
	if proceeds != price*4 {
		t.Errorf("Expected proceeds %.2f, got %.2f", price*4, proceeds)
	}
	if account.Materials[1] != 6 {
		t.Errorf("Expected 6 materials left, got %.2f", account.Materials[1])
	}
	if account.Balance != 10000+proceeds {
		t.Errorf("Balance not credited: %.2f", account.Balance)
	}
	if tx.Type != models.TransactionTypeMaterialSale {
		t.Errorf("Wrong transaction type %q", tx.Type)
	}

	if _, _, err := market.SellMaterials(context.Background(), account, 1, 100); !errors.Is(err, services.ErrInsufficientMaterials) {
		t.Errorf("Overselling should fail with ErrInsufficientMaterials, got %v", err)
	}
	if _, _, err := market.SellMaterials(context.Background(), account, 1, -2); !errors.Is(err, services.ErrInvalidBet) {
		t.Errorf("Negative quantity should fail, got %v", err)
	}
	if _, _, err := market.SellMaterials(context.Background(), account, 99, 1); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Unknown tier should fail with ErrNotFound, got %v", err)
	}
}
