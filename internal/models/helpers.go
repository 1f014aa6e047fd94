package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateRigID() string {
	return fmt.Sprintf("rig_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateGameID() string {
	return fmt.Sprintf("game_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateExpeditionID() string {
	return fmt.Sprintf("exp_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateItemID() string {
	return fmt.Sprintf("item_%d", uuid.New().ID())
}

func GenerateClientSeed() string {
	bytes := make([]byte, 16) // 128 bits of entropy
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand does not fail on supported platforms.
		return fmt.Sprintf("seed_%d", uuid.New().ID())
	}
	return hex.EncodeToString(bytes)
}

func (br *MinesBetRequest) Validate() error {
	if br.Amount < 1 {
		return fmt.Errorf("bet amount must be at least 1 cent")
	}
	if br.Amount > 100000 {
		return fmt.Errorf("maximum bet amount is 100000 cents ($1000)")
	}
	if br.MinesCount < 1 || br.MinesCount > MinesGridSize-1 {
		return fmt.Errorf("mines count must be between 1 and %d", MinesGridSize-1)
	}
	return nil
}

func FormatCurrency(cents float64) string {
	return fmt.Sprintf("$%.2f", cents/100)
}
