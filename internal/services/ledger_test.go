package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestAccount(id int64) *models.PlayerAccount {
	account := &models.PlayerAccount{
		ID:       id,
		Username: "miner",
		Balance:  10000,
		Energy:   models.MaxEnergy,
	}
	account.Normalize()
	return account
}

func TestLedgerApplyCredit(t *testing.T) {
	clock := newFakeClock()
	ledger := services.NewLedger(services.NewMemoryStore(), clock)
	account := newTestAccount(1)

	tx, err := ledger.Apply(account, services.Delta{
		Type:    models.TransactionTypeDeposit,
		Balance: 500,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if account.Balance != 10500 {
		t.Errorf("Expected balance 10500, got %.2f", account.Balance)
	}
	if tx.BalanceBefore != 10000 || tx.BalanceAfter != 10500 {
		t.Errorf("Transaction balances wrong: before %.2f after %.2f", tx.BalanceBefore, tx.BalanceAfter)
	}
	if tx.CreatedAt != clock.Now() {
		t.Error("Transaction should carry the clock time")
	}
}

func TestLedgerRejectsOverdraft(t *testing.T) {
	store := services.NewMemoryStore()
	ledger := services.NewLedger(store, newFakeClock())
	account := newTestAccount(1)
	account.Materials[2] = 5

	_, err := ledger.Commit(context.Background(), account, services.Delta{
		Type:      models.TransactionTypeMinesBet,
		Balance:   -20000,
		Materials: map[int]float64{2: -1},
	})
	if !errors.Is(err, services.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	// A rejected delta must leave the account untouched.
	if account.Balance != 10000 {
		t.Errorf("Balance mutated on rejected apply: %.2f", account.Balance)
	}
	if account.Materials[2] != 5 {
		t.Errorf("Materials mutated on rejected apply: %.2f", account.Materials[2])
	}

	txs, err := store.GetTransactions(context.Background(), account.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("No transaction should be recorded for a rejected apply, got %d", len(txs))
	}
}

func TestLedgerRejectsMaterialOverdraft(t *testing.T) {
	ledger := services.NewLedger(services.NewMemoryStore(), newFakeClock())
	account := newTestAccount(1)
	account.Materials[3] = 2

	_, err := ledger.Apply(account, services.Delta{
		Type:      models.TransactionTypeMaterialSale,
		Balance:   1000,
		Materials: map[int]float64{3: -5},
	})
	if !errors.Is(err, services.ErrInsufficientMaterials) {
		t.Fatalf("Expected ErrInsufficientMaterials, got %v", err)
	}
	if account.Balance != 10000 || account.Materials[3] != 2 {
		t.Error("Rejected apply must not mutate the account")
	}
}

func TestLedgerDrainsMaterialEntry(t *testing.T) {
	ledger := services.NewLedger(services.NewMemoryStore(), newFakeClock())
	account := newTestAccount(1)
	account.Materials[1] = 3

	if _, err := ledger.Apply(account, services.Delta{
		Type:      models.TransactionTypeMaterialSale,
		Balance:   150,
		Materials: map[int]float64{1: -3},
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, ok := account.Materials[1]; ok {
		t.Error("Fully sold tier should be removed from the materials map")
	}
}

func TestLedgerGrantsItems(t *testing.T) {
	ledger := services.NewLedger(services.NewMemoryStore(), newFakeClock())
	account := newTestAccount(1)

	if _, err := ledger.Apply(account, services.Delta{
		Type:  models.TransactionTypeExpeditionReward,
		Items: []models.AccessoryItem{{ID: "item_1", ItemKey: "drill_bit", Count: 1}},
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(account.Inventory) != 1 || account.Inventory[0].ItemKey != "drill_bit" {
		t.Errorf("Item grant not applied: %+v", account.Inventory)
	}
}

func TestLedgerCommitPersists(t *testing.T) {
	store := services.NewMemoryStore()
	ledger := services.NewLedger(store, newFakeClock())
	account := newTestAccount(7)
	if err := store.SaveAccount(context.Background(), account); err != nil {
		t.Fatal(err)
	}

	if _, err := ledger.Commit(context.Background(), account, services.Delta{
		Type:    models.TransactionTypeDeposit,
		Balance: 250,
	}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	stored, err := store.GetAccount(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Balance != 10250 {
		t.Errorf("Persisted balance wrong: %.2f", stored.Balance)
	}

	txs, err := store.GetTransactions(context.Background(), 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Type != models.TransactionTypeDeposit {
		t.Errorf("Expected one deposit transaction, got %+v", txs)
	}
}
