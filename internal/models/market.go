package models

import "time"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type PricePoint struct {
	At    time.Time `json:"at"`
	Price float64   `json:"price"`
}

// TierTrend tracks the drifting price of one material tier.
type TierTrend struct {
	Tier         int          `json:"tier"`
	BasePrice    float64      `json:"base_price"`
	CurrentPrice float64      `json:"current_price"`
	Multiplier   float64      `json:"multiplier"` // current / base
	Trend        Trend        `json:"trend"`
	History      []PricePoint `json:"history"`
}

// MarketState is the process-wide price singleton. It is recomputed
// lazily on first read past NextUpdate.
type MarketState struct {
	Trends     map[int]*TierTrend `json:"trends"`
	NextUpdate time.Time          `json:"next_update"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (m *MarketState) PriceFor(tier int) (float64, bool) {
	t, ok := m.Trends[tier]
	if !ok {
		return 0, false
	}
	return t.CurrentPrice, true
}
