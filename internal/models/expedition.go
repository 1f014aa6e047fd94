package models

import "time"

// Expedition is a timed commitment of one rig to a dungeon run.
// At most one may be active per account.
type Expedition struct {
	ID         string    `json:"id" redis:"id"`
	DungeonKey string    `json:"dungeon_key" redis:"dungeon_key"`
	RigID      string    `json:"rig_id" redis:"rig_id"`
	StartTime  time.Time `json:"start_time" redis:"start_time"`
	EndTime    time.Time `json:"end_time" redis:"end_time"`
}

func (e *Expedition) Finished(now time.Time, grace time.Duration) bool {
	return !now.Before(e.EndTime.Add(-grace))
}

type RewardKind string

const (
	RewardKindMaterial RewardKind = "material"
	RewardKindItem     RewardKind = "item"
)

// Reward is a single resolved grant from an expedition roll.
type Reward struct {
	Kind     RewardKind `json:"kind"`
	Tier     int        `json:"tier,omitempty"`
	Amount   float64    `json:"amount,omitempty"`
	ItemKey  string     `json:"item_key,omitempty"`
	ItemName string     `json:"item_name,omitempty"`
	Count    int        `json:"count,omitempty"`
	Jackpot  bool       `json:"jackpot,omitempty"`
}

type RewardSet []Reward

func (rs RewardSet) HasJackpot() bool {
	for _, r := range rs {
		if r.Jackpot {
			return true
		}
	}
	return false
}
