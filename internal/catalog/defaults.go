package catalog

// Default returns the built-in tables used when no catalog file is
// configured (demo mode and tests). Prices and amounts are in cents.
func Default() *Catalog {
	return &Catalog{
		Tiers: []MaterialTier{
			{Tier: 1, Name: "Copper Ore", BasePrice: 50},
			{Tier: 2, Name: "Iron Ore", BasePrice: 120},
			{Tier: 3, Name: "Silver Ore", BasePrice: 400},
			{Tier: 4, Name: "Gold Ore", BasePrice: 1500},
			{Tier: 5, Name: "Crystal Shard", BasePrice: 6000},
		},
		Rigs: []RigPreset{
			{
				Key:              "starter",
				Name:             "Starter Rig",
				Price:            5000,
				DailyProfit:      150,
				DurationMonths:   3,
				EnergyRefillCost: 200,
				OverclockCost:    500,
				OverclockHours:   6,
			},
			{
				Key:              "hauler",
				Name:             "Hauler Mk.II",
				Price:            25000,
				DailyProfit:      900,
				DurationMonths:   6,
				EnergyRefillCost: 800,
				OverclockCost:    2000,
				OverclockHours:   8,
			},
			{
				Key:              "excavator",
				Name:             "Deep Excavator",
				Price:            100000,
				DailyProfit:      4200,
				DurationMonths:   12,
				EnergyRefillCost: 2500,
				OverclockCost:    6000,
				OverclockHours:   12,
			},
		},
		Items: []ItemDef{
			{Key: "drill_bit", Name: "Hardened Drill Bit", LifespanHours: 72},
			{Key: "lucky_charm", Name: "Lucky Charm", LifespanHours: 48},
			{Key: "coolant_pack", Name: "Coolant Pack", LifespanHours: 24},
			{Key: "ancient_relic", Name: "Ancient Relic", LifespanHours: 168},
		},
		Dungeons: []DungeonConfig{
			{
				Key:           "abandoned_shaft",
				Name:          "Abandoned Shaft",
				DurationHours: 1,
				EnergyCost:    10,
				CommonPool: []RewardEntry{
					{Tier: 1, Amount: 8},
					{Tier: 1, Amount: 12},
					{Tier: 2, Amount: 4},
				},
				SaltPool: []RewardEntry{
					{Tier: 1, Amount: 1},
				},
			},
			{
				Key:              "flooded_cavern",
				Name:             "Flooded Cavern",
				DurationHours:    4,
				EnergyCost:       20,
				MinRigInvestment: 25000,
				JackpotEligible:  true,
				CommonPool: []RewardEntry{
					{Tier: 2, Amount: 10},
					{Tier: 3, Amount: 5},
					{ItemKey: "drill_bit", Count: 1},
				},
				SaltPool: []RewardEntry{
					{Tier: 1, Amount: 2},
					{Tier: 2, Amount: 1},
				},
				RarePool: []RewardEntry{
					{Tier: 4, Amount: 3},
					{ItemKey: "lucky_charm", Count: 1},
				},
			},
			{
				Key:              "molten_core",
				Name:             "Molten Core",
				DurationHours:    12,
				EnergyCost:       35,
				MinRigInvestment: 100000,
				JackpotEligible:  true,
				CommonPool: []RewardEntry{
					{Tier: 3, Amount: 12},
					{Tier: 4, Amount: 4},
					{ItemKey: "coolant_pack", Count: 2},
				},
				SaltPool: []RewardEntry{
					{Tier: 2, Amount: 3},
				},
				RarePool: []RewardEntry{
					{Tier: 5, Amount: 2},
					{ItemKey: "ancient_relic", Count: 1},
				},
			},
		},
		VIPTiers: []VIPTier{
			{Name: "Bronze", MinInvested: 25000, YieldBonus: 0.02},
			{Name: "Silver", MinInvested: 100000, YieldBonus: 0.05},
			{Name: "Gold", MinInvested: 500000, YieldBonus: 0.10},
		},
		Market: MarketTuning{
			UpdateIntervalHours: 4,
			Volatility:          0.08,
			MaxFluctuation:      0.30,
			HistoryLength:       24,
		},
		EnergyRegenPerHour:     5,
		RigEnergyDecayPerHour:  2,
		ExpeditionGraceSeconds: 30,
		MinesHouseFactor:       0.97,
	}
}
