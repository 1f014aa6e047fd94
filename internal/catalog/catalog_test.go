package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"rigworks-backend/internal/catalog"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := catalog.Default()
	if err := cat.Validate(); err != nil {
		t.Fatalf("Default catalog failed validation: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}
	if len(cat.Tiers) == 0 || len(cat.Rigs) == 0 || len(cat.Dungeons) == 0 {
		t.Error("Default catalog should have tiers, rigs and dungeons")
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
tiers:
  - tier: 1
    name: Iron
    base_price: 75
rigs:
  - key: test_rig
    name: Test Rig
    price: 1000
    daily_profit: 50
    duration_months: 1
market:
  volatility: 0.12
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tier := cat.Tier(1)
	if tier == nil || tier.BasePrice != 75 {
		t.Errorf("Expected tier 1 base price 75, got %+v", tier)
	}
	if cat.Market.Volatility != 0.12 {
		t.Errorf("Expected volatility override 0.12, got %.2f", cat.Market.Volatility)
	}
	// Omitted tuning values fall back to defaults.
	if cat.Market.MaxFluctuation <= 0 {
		t.Error("Omitted max_fluctuation should be defaulted")
	}
	if cat.RigEnergyDecayPerHour <= 0 {
		t.Error("Omitted rig decay rate should be defaulted")
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	cat := catalog.Default()
	cat.Dungeons[0].CommonPool = nil
	if err := cat.Validate(); err == nil {
		t.Error("Validate should reject a dungeon with an empty common pool")
	}

	cat = catalog.Default()
	cat.Dungeons[1].RarePool = nil // jackpot-eligible
	if err := cat.Validate(); err == nil {
		t.Error("Validate should reject a jackpot dungeon without a rare pool")
	}

	cat = catalog.Default()
	cat.Tiers = nil
	if err := cat.Validate(); err == nil {
		t.Error("Validate should reject a catalog with no tiers")
	}
}

func TestLookups(t *testing.T) {
	cat := catalog.Default()

	if cat.Rig("starter") == nil {
		t.Error("Expected starter rig preset")
	}
	if cat.Rig("nope") != nil {
		t.Error("Unknown rig key should return nil")
	}
	if cat.Dungeon("abandoned_shaft") == nil {
		t.Error("Expected abandoned_shaft dungeon")
	}
	if cat.Item("lucky_charm") == nil {
		t.Error("Expected lucky_charm item")
	}
}

func TestVIPBonus(t *testing.T) {
	cat := catalog.Default()

	if got := cat.VIPBonus(0); got != 0 {
		t.Errorf("No investment should give no bonus, got %.2f", got)
	}

	top := 0.0
	for _, v := range cat.VIPTiers {
		if v.YieldBonus > top {
			top = v.YieldBonus
		}
	}
	if got := cat.VIPBonus(1e12); got != top {
		t.Errorf("Huge investment should give the top bonus %.2f, got %.2f", top, got)
	}

	// Bonus is monotonic in invested amount.
	prev := -1.0
	for _, v := range cat.VIPTiers {
		got := cat.VIPBonus(v.MinInvested)
		if got < prev {
			t.Errorf("VIP bonus should not decrease with investment, got %.2f after %.2f", got, prev)
		}
		prev = got
	}
}
