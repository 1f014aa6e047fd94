package services

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
)

const (
	// One roll per claim: salt pool on a 15% draw, common pool
	// otherwise. Jackpot-eligible dungeons add an independent 5% roll
	// against the rare pool on top.
	saltPoolChance = 0.15
	jackpotChance  = 0.05
)

// ResolveRewards rolls the reward set for one finished dungeon run.
// rng draws uniformly from [0, 1).
func ResolveRewards(dg *catalog.DungeonConfig, cat *catalog.Catalog, rng func() float64) models.RewardSet {
	var rewards models.RewardSet

	pool := dg.CommonPool
	if rng() < saltPoolChance && len(dg.SaltPool) > 0 {
		pool = dg.SaltPool
	}
	if len(pool) > 0 {
		rewards = append(rewards, entryToReward(pool[int(rng()*float64(len(pool)))], cat, false))
	}

	if dg.JackpotEligible && len(dg.RarePool) > 0 && rng() < jackpotChance {
		rewards = append(rewards, entryToReward(dg.RarePool[int(rng()*float64(len(dg.RarePool)))], cat, true))
	}

	return rewards
}

func entryToReward(e catalog.RewardEntry, cat *catalog.Catalog, jackpot bool) models.Reward {
	if e.IsItem() {
		name := e.ItemKey
		if def := cat.Item(e.ItemKey); def != nil {
			name = def.Name
		}
		return models.Reward{
			Kind:     models.RewardKindItem,
			ItemKey:  e.ItemKey,
			ItemName: name,
			Count:    e.Count,
			Jackpot:  jackpot,
		}
	}
	return models.Reward{
		Kind:    models.RewardKindMaterial,
		Tier:    e.Tier,
		Amount:  e.Amount,
		Jackpot: jackpot,
	}
}

// ExpeditionService commits rigs to dungeon runs and settles their
// rewards through the ledger.
type ExpeditionService struct {
	store   Store
	ledger  *Ledger
	catalog *catalog.Catalog
	clock   Clock

	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewExpeditionService(store Store, ledger *Ledger, cat *catalog.Catalog, clock Clock) *ExpeditionService {
	return &ExpeditionService{
		store:   store,
		ledger:  ledger,
		catalog: cat,
		clock:   clock,
		rand:    mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

func (s *ExpeditionService) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Float64()
}

// Start commits one rig to a dungeon. The run charges the dungeon's
// energy cost from the player gauge up front; the rig stops yielding
// rig operations (claim, refill, overclock) until the run is claimed.
func (s *ExpeditionService) Start(ctx context.Context, account *models.PlayerAccount, dungeonKey, rigID string) (*models.Expedition, error) {
	if account.ActiveExpedition != nil {
		return nil, ErrExpeditionActive
	}

	dg := s.catalog.Dungeon(dungeonKey)
	if dg == nil {
		return nil, ErrNotFound
	}

	rig, err := s.store.GetRig(ctx, rigID)
	if err != nil {
		return nil, err
	}
	if rig.OwnerID != account.ID {
		return nil, ErrNotOwner
	}

	now := s.clock.Now()
	if rig.Expired(now) {
		return nil, ErrRigExpired
	}
	if rig.Investment < dg.MinRigInvestment {
		return nil, ErrRigTooSmall
	}
	if account.Energy < dg.EnergyCost {
		return nil, ErrInsufficientEnergy
	}

	account.Energy -= dg.EnergyCost
	account.ActiveExpedition = &models.Expedition{
		ID:         models.GenerateExpeditionID(),
		DungeonKey: dg.Key,
		RigID:      rig.ID,
		StartTime:  now,
		EndTime:    now.Add(time.Duration(dg.DurationHours * float64(time.Hour))),
	}
	account.Stats.ExpeditionsRun++
	account.UpdatedAt = now

	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account.ActiveExpedition, nil
}

// Claim settles a finished run: rolls the reward set, credits it
// atomically and releases the rig. Claiming before the end time (minus
// the grace window) fails without consuming the run.
func (s *ExpeditionService) Claim(ctx context.Context, account *models.PlayerAccount) (models.RewardSet, *models.Transaction, error) {
	exp := account.ActiveExpedition
	if exp == nil {
		return nil, nil, ErrNotFound
	}

	now := s.clock.Now()
	grace := time.Duration(s.catalog.ExpeditionGraceSeconds) * time.Second
	if !exp.Finished(now, grace) {
		return nil, nil, ErrExpeditionNotFinished
	}

	dg := s.catalog.Dungeon(exp.DungeonKey)
	if dg == nil {
		// Dungeon removed from the catalog mid-run; release the rig
		// without a payout.
		account.ActiveExpedition = nil
		if err := s.store.SaveAccount(ctx, account); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrNotFound
	}

	rewards := ResolveRewards(dg, s.catalog, s.roll)

	delta := Delta{
		Type:        models.TransactionTypeExpeditionReward,
		RefID:       exp.ID,
		Description: fmt.Sprintf("Expedition rewards from %s", dg.Name),
	}
	for _, r := range rewards {
		switch r.Kind {
		case models.RewardKindMaterial:
			if delta.Materials == nil {
				delta.Materials = make(map[int]float64)
			}
			delta.Materials[r.Tier] += r.Amount
		case models.RewardKindItem:
			item := models.AccessoryItem{
				ID:         models.GenerateItemID(),
				ItemKey:    r.ItemKey,
				Name:       r.ItemName,
				Count:      r.Count,
				AcquiredAt: now,
			}
			if def := s.catalog.Item(r.ItemKey); def != nil && def.LifespanHours > 0 {
				item.ExpiresAt = now.Add(time.Duration(def.LifespanHours) * time.Hour)
			}
			delta.Items = append(delta.Items, item)
		}
	}
	if rewards.HasJackpot() {
		account.Stats.JackpotsHit++
	}

	account.ActiveExpedition = nil
	tx, err := s.ledger.Commit(ctx, account, delta)
	if err != nil {
		return nil, nil, err
	}
	return rewards, tx, nil
}

// RegenEnergy tops up every account's energy gauge by one regen tick.
// Called from the scheduler; `elapsed` is the tick interval.
func (s *ExpeditionService) RegenEnergy(ctx context.Context, elapsed time.Duration) error {
	ids, err := s.store.ListAccountIDs(ctx)
	if err != nil {
		return err
	}

	gain := s.catalog.EnergyRegenPerHour * elapsed.Hours()
	for _, userID := range ids {
		account, err := s.store.GetAccount(ctx, userID)
		if err != nil {
			continue
		}
		if account.Energy >= models.MaxEnergy {
			continue
		}
		account.Energy = account.Energy + gain
		if account.Energy > models.MaxEnergy {
			account.Energy = models.MaxEnergy
		}
		if err := s.store.SaveAccount(ctx, account); err != nil {
			continue
		}
	}
	return nil
}
