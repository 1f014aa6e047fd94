package models

import "time"

type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdraw         TransactionType = "withdraw"
	TransactionTypeRigPurchase      TransactionType = "rig_purchase"
	TransactionTypeRigClaim         TransactionType = "rig_claim"
	TransactionTypeEnergyRefill     TransactionType = "energy_refill"
	TransactionTypeOverclock        TransactionType = "overclock"
	TransactionTypeExpeditionReward TransactionType = "expedition_reward"
	TransactionTypeMaterialSale     TransactionType = "material_sale"
	TransactionTypeMinesBet         TransactionType = "mines_bet"
	TransactionTypeMinesWin         TransactionType = "mines_win"
	TransactionTypeAdminAdjust      TransactionType = "admin_adjust"
)

// Transaction is an append-only record of a balance/material-affecting
// operation. Never mutated after creation.
type Transaction struct {
	ID            string          `json:"id" redis:"id"`
	UserID        int64           `json:"user_id" redis:"user_id"`
	Type          TransactionType `json:"type" redis:"type"`
	Amount        float64         `json:"amount" redis:"amount"` // signed balance delta
	BalanceBefore float64         `json:"balance_before" redis:"balance_before"`
	BalanceAfter  float64         `json:"balance_after" redis:"balance_after"`
	RefID         string          `json:"ref_id,omitempty" redis:"ref_id"`
	Description   string          `json:"description" redis:"description"`
	CreatedAt     time.Time       `json:"created_at" redis:"created_at"`
}
