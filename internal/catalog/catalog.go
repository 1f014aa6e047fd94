// Package catalog holds the static configuration tables the game core
// reads: material tiers and base prices, rig presets, dungeon reward
// tables, VIP tiers and market tuning. Tables are loaded once from YAML
// at startup and treated as immutable afterwards.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type MaterialTier struct {
	Tier      int     `yaml:"tier" json:"tier"`
	Name      string  `yaml:"name" json:"name"`
	BasePrice float64 `yaml:"base_price" json:"base_price"`
}

type RigPreset struct {
	Key              string  `yaml:"key" json:"key"`
	Name             string  `yaml:"name" json:"name"`
	Price            float64 `yaml:"price" json:"price"`
	DailyProfit      float64 `yaml:"daily_profit" json:"daily_profit"`
	DurationMonths   int     `yaml:"duration_months" json:"duration_months"`
	EnergyRefillCost float64 `yaml:"energy_refill_cost" json:"energy_refill_cost"`
	OverclockCost    float64 `yaml:"overclock_cost" json:"overclock_cost"`
	OverclockHours   float64 `yaml:"overclock_hours" json:"overclock_hours"`
}

type ItemDef struct {
	Key           string `yaml:"key" json:"key"`
	Name          string `yaml:"name" json:"name"`
	LifespanHours int    `yaml:"lifespan_hours" json:"lifespan_hours"`
}

// RewardEntry grants either tier materials (Tier+Amount) or an
// inventory item (ItemKey+Count). Exactly one of the two is set.
type RewardEntry struct {
	Tier    int     `yaml:"tier,omitempty" json:"tier,omitempty"`
	Amount  float64 `yaml:"amount,omitempty" json:"amount,omitempty"`
	ItemKey string  `yaml:"item_key,omitempty" json:"item_key,omitempty"`
	Count   int     `yaml:"count,omitempty" json:"count,omitempty"`
}

func (e RewardEntry) IsItem() bool { return e.ItemKey != "" }

type DungeonConfig struct {
	Key              string        `yaml:"key" json:"key"`
	Name             string        `yaml:"name" json:"name"`
	DurationHours    float64       `yaml:"duration_hours" json:"duration_hours"`
	EnergyCost       float64       `yaml:"energy_cost" json:"energy_cost"`
	MinRigInvestment float64       `yaml:"min_rig_investment" json:"min_rig_investment"`
	JackpotEligible  bool          `yaml:"jackpot_eligible" json:"jackpot_eligible"`
	CommonPool       []RewardEntry `yaml:"common_pool" json:"common_pool"`
	SaltPool         []RewardEntry `yaml:"salt_pool" json:"salt_pool"`
	RarePool         []RewardEntry `yaml:"rare_pool" json:"rare_pool"`
}

type VIPTier struct {
	Name        string  `yaml:"name" json:"name"`
	MinInvested float64 `yaml:"min_invested" json:"min_invested"`
	YieldBonus  float64 `yaml:"yield_bonus" json:"yield_bonus"`
}

type MarketTuning struct {
	UpdateIntervalHours float64 `yaml:"update_interval_hours" json:"update_interval_hours"`
	Volatility          float64 `yaml:"volatility" json:"volatility"`
	MaxFluctuation      float64 `yaml:"max_fluctuation" json:"max_fluctuation"`
	HistoryLength       int     `yaml:"history_length" json:"history_length"`
}

type Catalog struct {
	Tiers    []MaterialTier  `yaml:"tiers"`
	Rigs     []RigPreset     `yaml:"rigs"`
	Items    []ItemDef       `yaml:"items"`
	Dungeons []DungeonConfig `yaml:"dungeons"`
	VIPTiers []VIPTier       `yaml:"vip_tiers"`
	Market   MarketTuning    `yaml:"market"`

	EnergyRegenPerHour     float64 `yaml:"energy_regen_per_hour"`
	RigEnergyDecayPerHour  float64 `yaml:"rig_energy_decay_per_hour"`
	ExpeditionGraceSeconds int     `yaml:"expedition_grace_seconds"`
	MinesHouseFactor       float64 `yaml:"mines_house_factor"`
}

// Load reads the catalog from a YAML file. An empty path returns the
// compiled-in default tables.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %v", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %v", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults fills tuning values a config file is allowed to omit.
func (c *Catalog) applyDefaults() {
	d := Default()
	if c.Market.UpdateIntervalHours <= 0 {
		c.Market.UpdateIntervalHours = d.Market.UpdateIntervalHours
	}
	if c.Market.Volatility <= 0 {
		c.Market.Volatility = d.Market.Volatility
	}
	if c.Market.MaxFluctuation <= 0 {
		c.Market.MaxFluctuation = d.Market.MaxFluctuation
	}
	if c.Market.HistoryLength <= 0 {
		c.Market.HistoryLength = d.Market.HistoryLength
	}
	if c.EnergyRegenPerHour <= 0 {
		c.EnergyRegenPerHour = d.EnergyRegenPerHour
	}
	if c.RigEnergyDecayPerHour <= 0 {
		c.RigEnergyDecayPerHour = d.RigEnergyDecayPerHour
	}
	if c.ExpeditionGraceSeconds <= 0 {
		c.ExpeditionGraceSeconds = d.ExpeditionGraceSeconds
	}
	if c.MinesHouseFactor <= 0 {
		c.MinesHouseFactor = d.MinesHouseFactor
	}
}

func (c *Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("catalog has no material tiers")
	}
	for _, t := range c.Tiers {
		if t.BasePrice <= 0 {
			return fmt.Errorf("tier %d has non-positive base price", t.Tier)
		}
	}
	for _, r := range c.Rigs {
		if r.Price <= 0 || r.DailyProfit <= 0 {
			return fmt.Errorf("rig preset %q has non-positive economics", r.Key)
		}
		if r.DurationMonths <= 0 {
			return fmt.Errorf("rig preset %q has no duration", r.Key)
		}
	}
	for _, dg := range c.Dungeons {
		if dg.DurationHours <= 0 {
			return fmt.Errorf("dungeon %q has no duration", dg.Key)
		}
		if len(dg.CommonPool) == 0 {
			return fmt.Errorf("dungeon %q has an empty common pool", dg.Key)
		}
		if dg.JackpotEligible && len(dg.RarePool) == 0 {
			return fmt.Errorf("dungeon %q is jackpot-eligible but has no rare pool", dg.Key)
		}
		for _, e := range append(append(append([]RewardEntry{}, dg.CommonPool...), dg.SaltPool...), dg.RarePool...) {
			if e.IsItem() {
				if c.Item(e.ItemKey) == nil {
					return fmt.Errorf("dungeon %q references unknown item %q", dg.Key, e.ItemKey)
				}
			} else if c.Tier(e.Tier) == nil {
				return fmt.Errorf("dungeon %q references unknown tier %d", dg.Key, e.Tier)
			}
		}
	}
	if c.Market.MaxFluctuation <= 0 || c.Market.MaxFluctuation >= 1 {
		return fmt.Errorf("market max_fluctuation must be in (0, 1)")
	}
	return nil
}

func (c *Catalog) Tier(tier int) *MaterialTier {
	for i := range c.Tiers {
		if c.Tiers[i].Tier == tier {
			return &c.Tiers[i]
		}
	}
	return nil
}

func (c *Catalog) Rig(key string) *RigPreset {
	for i := range c.Rigs {
		if c.Rigs[i].Key == key {
			return &c.Rigs[i]
		}
	}
	return nil
}

func (c *Catalog) Item(key string) *ItemDef {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Catalog) Dungeon(key string) *DungeonConfig {
	for i := range c.Dungeons {
		if c.Dungeons[i].Key == key {
			return &c.Dungeons[i]
		}
	}
	return nil
}

// VIPBonus returns the yield bonus for the highest VIP tier the given
// lifetime investment qualifies for.
func (c *Catalog) VIPBonus(totalInvested float64) float64 {
	bonus := 0.0
	for _, v := range c.VIPTiers {
		if totalInvested >= v.MinInvested && v.YieldBonus > bonus {
			bonus = v.YieldBonus
		}
	}
	return bonus
}
