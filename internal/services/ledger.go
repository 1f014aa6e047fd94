package services

import (
	"context"
	"math"

	"rigworks-backend/internal/models"
)

// balanceEpsilon absorbs float rounding from multiplier math; anything
// further below zero than this is a real overdraft.
const balanceEpsilon = 1e-9

// Delta is one logical balance/material/inventory change. All sides of
// a delta land together or not at all.
type Delta struct {
	Type        models.TransactionType
	Balance     float64                // signed
	Materials   map[int]float64        // tier -> signed quantity
	Items       []models.AccessoryItem // grants only
	RefID       string
	Description string
}

// Ledger applies deltas to player accounts and appends one immutable
// transaction record per successful apply.
type Ledger struct {
	store Store
	clock Clock
}

func NewLedger(store Store, clock Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// Apply validates the whole delta before touching the account, then
// commits it in memory and returns the transaction record. A rejected
// apply leaves the account exactly as it was.
func (l *Ledger) Apply(account *models.PlayerAccount, delta Delta) (*models.Transaction, error) {
	if account.Balance+delta.Balance < -balanceEpsilon {
		return nil, ErrInsufficientBalance
	}
	for tier, d := range delta.Materials {
		if account.Materials[tier]+d < -balanceEpsilon {
			return nil, ErrInsufficientMaterials
		}
	}

	now := l.clock.Now()
	before := account.Balance

	account.Balance = math.Max(0, account.Balance+delta.Balance)
	for tier, d := range delta.Materials {
		next := account.Materials[tier] + d
		if next <= balanceEpsilon {
			delete(account.Materials, tier)
			continue
		}
		account.Materials[tier] = next
	}
	account.Inventory = append(account.Inventory, delta.Items...)
	account.UpdatedAt = now

	return &models.Transaction{
		ID:            models.GenerateTransactionID(),
		UserID:        account.ID,
		Type:          delta.Type,
		Amount:        delta.Balance,
		BalanceBefore: before,
		BalanceAfter:  account.Balance,
		RefID:         delta.RefID,
		Description:   delta.Description,
		CreatedAt:     now,
	}, nil
}

// Commit applies the delta and persists both the account and the
// transaction record.
func (l *Ledger) Commit(ctx context.Context, account *models.PlayerAccount, delta Delta) (*models.Transaction, error) {
	tx, err := l.Apply(account, delta)
	if err != nil {
		return nil, err
	}
	if err := l.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	if err := l.store.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
