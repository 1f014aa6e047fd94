package models

import "time"

type RigStatus string

const (
	RigStatusActive  RigStatus = "active"
	RigStatusExpired RigStatus = "expired"
)

// ProductionUnit is a purchased rig that accrues currency yield over time.
// Accrued-but-unclaimed yield is never stored; it is derived on read from
// LastClaimAt so a claim can never double-count.
type ProductionUnit struct {
	ID        string `json:"id" redis:"id"`
	OwnerID   int64  `json:"owner_id" redis:"owner_id"`
	PresetKey string `json:"preset_key" redis:"preset_key"`
	Name      string `json:"name" redis:"name"`

	Investment    float64 `json:"investment" redis:"investment"`
	DailyProfit   float64 `json:"daily_profit" redis:"daily_profit"`
	RatePerSecond float64 `json:"rate_per_second" redis:"rate_per_second"`

	Energy   float64   `json:"energy" redis:"energy"` // gauge value at EnergyAt
	EnergyAt time.Time `json:"energy_at" redis:"energy_at"`

	LastClaimAt    time.Time `json:"last_claim_at" redis:"last_claim_at"`
	OverclockUntil time.Time `json:"overclock_until,omitempty" redis:"overclock_until"`

	PurchasedAt    time.Time `json:"purchased_at" redis:"purchased_at"`
	DurationMonths int       `json:"duration_months" redis:"duration_months"`
	Status         RigStatus `json:"status" redis:"status"`
}

func (r *ProductionUnit) ExpiresAt() time.Time {
	return r.PurchasedAt.AddDate(0, r.DurationMonths, 0)
}

func (r *ProductionUnit) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt())
}

func (r *ProductionUnit) Overclocked(now time.Time) bool {
	return now.Before(r.OverclockUntil)
}
