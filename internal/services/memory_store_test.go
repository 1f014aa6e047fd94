package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

func TestMemoryStoreIsolation(t *testing.T) {
	store := services.NewMemoryStore()
	ctx := context.Background()

	account := newTestAccount(1)
	account.Materials[2] = 5
	if err := store.SaveAccount(ctx, account); err != nil {
		t.Fatal(err)
	}

	// Mutating a loaded copy must not leak into the store.
	loaded, err := store.GetAccount(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	loaded.Balance = 0
	loaded.Materials[2] = 999

	fresh, err := store.GetAccount(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Balance != 10000 || fresh.Materials[2] != 5 {
		t.Errorf("Store leaked caller mutations: balance %.2f materials %.2f", fresh.Balance, fresh.Materials[2])
	}
}

func TestMemoryStoreUsernameIndex(t *testing.T) {
	store := services.NewMemoryStore()
	ctx := context.Background()

	account := newTestAccount(1)
	if err := store.SaveAccount(ctx, account); err != nil {
		t.Fatal(err)
	}

	byName, err := store.GetAccountByUsername(ctx, "miner")
	if err != nil || byName.ID != 1 {
		t.Errorf("Username lookup failed: %+v (%v)", byName, err)
	}
	if _, err := store.GetAccountByUsername(ctx, "ghost"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Unknown username should return ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreTransactionTrim(t *testing.T) {
	store := services.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < services.TransactionHistoryLimit+20; i++ {
		tx := &models.Transaction{
			ID:        fmt.Sprintf("tx_%d", i),
			UserID:    1,
			Type:      models.TransactionTypeDeposit,
			Amount:    float64(i),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := store.GetTransactions(ctx, 1, services.TransactionHistoryLimit)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != services.TransactionHistoryLimit {
		t.Errorf("History should be trimmed to %d, got %d", services.TransactionHistoryLimit, len(txs))
	}
	// Newest first.
	if txs[0].ID != fmt.Sprintf("tx_%d", services.TransactionHistoryLimit+19) {
		t.Errorf("Expected newest transaction first, got %s", txs[0].ID)
	}
}

func TestMemoryStoreDeleteAccountCascades(t *testing.T) {
	store := services.NewMemoryStore()
	ctx := context.Background()

	account := newTestAccount(1)
	if err := store.SaveAccount(ctx, account); err != nil {
		t.Fatal(err)
	}
	rig := &models.ProductionUnit{ID: "rig_1", OwnerID: 1}
	if err := store.SaveRig(ctx, rig); err != nil {
		t.Fatal(err)
	}
	if err := store.SetActiveMinesGame(ctx, 1, "game_1"); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteAccount(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetAccount(ctx, 1); !errors.Is(err, services.ErrNotFound) {
		t.Error("Account should be gone")
	}
	if _, err := store.GetRig(ctx, "rig_1"); !errors.Is(err, services.ErrNotFound) {
		t.Error("Owned rigs should be deleted with the account")
	}
	if gameID, _ := store.ActiveMinesGameID(ctx, 1); gameID != "" {
		t.Error("Active game pointer should be cleared")
	}

	ids, err := store.ListAccountIDs(ctx)
	if err != nil || len(ids) != 0 {
		t.Errorf("Deleted account should not be listed: %v (%v)", ids, err)
	}
}

func TestMemoryStoreNextAccountID(t *testing.T) {
	store := services.NewMemoryStore()
	ctx := context.Background()

	a, _ := store.NextAccountID(ctx)
	b, _ := store.NextAccountID(ctx)
	if b != a+1 {
		t.Errorf("IDs should be sequential, got %d then %d", a, b)
	}
}
