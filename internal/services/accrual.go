package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
)

// ComputeYield derives the unclaimed yield of a rig at `now`. Yield is
// never stored; it is always recomputed from the LastClaimAt
// checkpoint, so a claim cannot double-count. Elapsed time only counts
// while the energy gauge is above zero, and an active overclock window
// doubles both the yield rate and the energy drain.
//
// Invariant: LastClaimAt and EnergyAt are advanced together by every
// rig mutation, so rig.Energy is the gauge value as of LastClaimAt.
func ComputeYield(rig *models.ProductionUnit, decayPerHour float64, now time.Time) float64 {
	start := rig.LastClaimAt
	if !now.After(start) {
		// Clock skew guard: never accrue negative time.
		return 0
	}
	if rig.Energy <= 0 || rig.RatePerSecond <= 0 {
		return 0
	}

	total := now.Sub(start).Seconds()
	boosted := 0.0
	if rig.OverclockUntil.After(start) {
		end := rig.OverclockUntil
		if end.After(now) {
			end = now
		}
		boosted = end.Sub(start).Seconds()
	}
	normal := total - boosted

	decayPerSec := decayPerHour / 3600
	energy := rig.Energy
	yield := 0.0

	if boosted > 0 {
		run := boosted
		if decayPerSec > 0 {
			run = math.Min(run, energy/(2*decayPerSec))
		}
		yield += run * rig.RatePerSecond * 2
		energy -= run * 2 * decayPerSec
		if energy <= 0 {
			return yield
		}
	}
	if normal > 0 {
		run := normal
		if decayPerSec > 0 {
			run = math.Min(run, energy/decayPerSec)
		}
		yield += run * rig.RatePerSecond
	}
	return yield
}

// energyAfter returns the gauge value once the elapsed drain since
// LastClaimAt is applied, floored at zero.
func energyAfter(rig *models.ProductionUnit, decayPerHour float64, now time.Time) float64 {
	start := rig.LastClaimAt
	if !now.After(start) {
		return rig.Energy
	}

	total := now.Sub(start).Seconds()
	boosted := 0.0
	if rig.OverclockUntil.After(start) {
		end := rig.OverclockUntil
		if end.After(now) {
			end = now
		}
		boosted = end.Sub(start).Seconds()
	}

	decayPerSec := decayPerHour / 3600
	drain := (2*boosted + (total - boosted)) * decayPerSec
	return math.Max(0, rig.Energy-drain)
}

// RigService owns rig purchase, yield claims and the energy economy.
type RigService struct {
	store   Store
	ledger  *Ledger
	catalog *catalog.Catalog
	clock   Clock
}

func NewRigService(store Store, ledger *Ledger, cat *catalog.Catalog, clock Clock) *RigService {
	return &RigService{store: store, ledger: ledger, catalog: cat, clock: clock}
}

// Purchase buys a rig from a catalog preset. The yield rate is fixed
// at purchase time from the preset's daily profit.
func (s *RigService) Purchase(ctx context.Context, account *models.PlayerAccount, presetKey string) (*models.ProductionUnit, *models.Transaction, error) {
	preset := s.catalog.Rig(presetKey)
	if preset == nil {
		return nil, nil, ErrNotFound
	}

	now := s.clock.Now()
	account.Stats.RigsPurchased++
	account.Stats.TotalInvested += preset.Price

	rig := &models.ProductionUnit{
		ID:             models.GenerateRigID(),
		OwnerID:        account.ID,
		PresetKey:      preset.Key,
		Name:           preset.Name,
		Investment:     preset.Price,
		DailyProfit:    preset.DailyProfit,
		RatePerSecond:  preset.DailyProfit / 86400,
		Energy:         models.MaxEnergy,
		EnergyAt:       now,
		LastClaimAt:    now,
		PurchasedAt:    now,
		DurationMonths: preset.DurationMonths,
		Status:         models.RigStatusActive,
	}

	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeRigPurchase,
		Balance:     -preset.Price,
		RefID:       rig.ID,
		Description: fmt.Sprintf("Purchased %s", preset.Name),
	})
	if err != nil {
		account.Stats.RigsPurchased--
		account.Stats.TotalInvested -= preset.Price
		return nil, nil, err
	}

	if err := s.store.SaveRig(ctx, rig); err != nil {
		return nil, nil, err
	}
	return rig, tx, nil
}

func (s *RigService) ownedRig(ctx context.Context, account *models.PlayerAccount, rigID string) (*models.ProductionUnit, error) {
	rig, err := s.store.GetRig(ctx, rigID)
	if err != nil {
		return nil, err
	}
	if rig.OwnerID != account.ID {
		return nil, ErrNotOwner
	}
	return rig, nil
}

func rigBusy(account *models.PlayerAccount, rigID string) bool {
	return account.ActiveExpedition != nil && account.ActiveExpedition.RigID == rigID
}

// Claim credits the accrued yield (with the account's VIP bonus) and
// advances the accrual checkpoint.
func (s *RigService) Claim(ctx context.Context, account *models.PlayerAccount, rigID string) (float64, *models.Transaction, error) {
	rig, err := s.ownedRig(ctx, account, rigID)
	if err != nil {
		return 0, nil, err
	}
	if rigBusy(account, rigID) {
		return 0, nil, ErrRigBusy
	}

	now := s.clock.Now()
	if rig.Expired(now) {
		rig.Status = models.RigStatusExpired
		s.store.SaveRig(ctx, rig)
		return 0, nil, ErrRigExpired
	}

	amount := ComputeYield(rig, s.catalog.RigEnergyDecayPerHour, now)
	amount *= 1 + s.catalog.VIPBonus(account.Stats.TotalInvested)

	rig.Energy = energyAfter(rig, s.catalog.RigEnergyDecayPerHour, now)
	rig.EnergyAt = now
	rig.LastClaimAt = now

	var tx *models.Transaction
	if amount > 0 {
		account.Stats.TotalClaimed += amount
		tx, err = s.ledger.Commit(ctx, account, Delta{
			Type:        models.TransactionTypeRigClaim,
			Balance:     amount,
			RefID:       rig.ID,
			Description: fmt.Sprintf("Claimed yield from %s", rig.Name),
		})
		if err != nil {
			return 0, nil, err
		}
	}

	if err := s.store.SaveRig(ctx, rig); err != nil {
		return 0, nil, err
	}
	return amount, tx, nil
}

// RefillEnergy settles the pending claim, then charges the preset's
// refill cost and restores the gauge to full.
func (s *RigService) RefillEnergy(ctx context.Context, account *models.PlayerAccount, rigID string) (*models.Transaction, error) {
	rig, err := s.ownedRig(ctx, account, rigID)
	if err != nil {
		return nil, err
	}
	if rigBusy(account, rigID) {
		return nil, ErrRigBusy
	}
	preset := s.catalog.Rig(rig.PresetKey)
	if preset == nil {
		return nil, ErrNotFound
	}

	if _, _, err := s.Claim(ctx, account, rigID); err != nil {
		return nil, err
	}
	// Claim saved the rig; reload the settled checkpoints.
	rig, err = s.store.GetRig(ctx, rigID)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeEnergyRefill,
		Balance:     -preset.EnergyRefillCost,
		RefID:       rig.ID,
		Description: fmt.Sprintf("Energy refill for %s", rig.Name),
	})
	if err != nil {
		return nil, err
	}

	rig.Energy = models.MaxEnergy
	rig.EnergyAt = s.clock.Now()
	if err := s.store.SaveRig(ctx, rig); err != nil {
		return nil, err
	}
	return tx, nil
}

// Overclock settles the pending claim, then starts a boost window in
// which yield and energy drain both run at double rate.
func (s *RigService) Overclock(ctx context.Context, account *models.PlayerAccount, rigID string) (*models.Transaction, error) {
	rig, err := s.ownedRig(ctx, account, rigID)
	if err != nil {
		return nil, err
	}
	if rigBusy(account, rigID) {
		return nil, ErrRigBusy
	}
	preset := s.catalog.Rig(rig.PresetKey)
	if preset == nil {
		return nil, ErrNotFound
	}

	if _, _, err := s.Claim(ctx, account, rigID); err != nil {
		return nil, err
	}
	rig, err = s.store.GetRig(ctx, rigID)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeOverclock,
		Balance:     -preset.OverclockCost,
		RefID:       rig.ID,
		Description: fmt.Sprintf("Overclocked %s for %.0fh", rig.Name, preset.OverclockHours),
	})
	if err != nil {
		return nil, err
	}

	rig.OverclockUntil = s.clock.Now().Add(time.Duration(preset.OverclockHours * float64(time.Hour)))
	if err := s.store.SaveRig(ctx, rig); err != nil {
		return nil, err
	}
	return tx, nil
}

// List returns the account's rigs with derived read-only fields
// refreshed (status, pending yield is left to the caller).
func (s *RigService) List(ctx context.Context, account *models.PlayerAccount) ([]*models.ProductionUnit, error) {
	rigs, err := s.store.ListRigs(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for _, rig := range rigs {
		if rig.Expired(now) {
			rig.Status = models.RigStatusExpired
		}
	}
	return rigs, nil
}

// PendingYield is the read-only variant of Claim for display.
func (s *RigService) PendingYield(rig *models.ProductionUnit, account *models.PlayerAccount) float64 {
	amount := ComputeYield(rig, s.catalog.RigEnergyDecayPerHour, s.clock.Now())
	return amount * (1 + s.catalog.VIPBonus(account.Stats.TotalInvested))
}

// SweepExpired removes rigs past their duration horizon for every
// account. Rigs committed to an active expedition are skipped until
// the run is claimed.
func (s *RigService) SweepExpired(ctx context.Context) (int, error) {
	ids, err := s.store.ListAccountIDs(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	now := s.clock.Now()
	for _, userID := range ids {
		account, err := s.store.GetAccount(ctx, userID)
		if err != nil {
			continue
		}
		rigs, err := s.store.ListRigs(ctx, userID)
		if err != nil {
			continue
		}
		for _, rig := range rigs {
			if !rig.Expired(now) || rigBusy(account, rig.ID) {
				continue
			}
			if err := s.store.DeleteRig(ctx, rig.ID); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
