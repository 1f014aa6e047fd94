package services

import "time"

const (
	KeyAccount          = "account:%d"
	KeyAccountByName    = "account:username:%s"
	KeyAccountIDs       = "account:ids"
	KeyAccountIDCounter = "account:next_id"
	KeyRig              = "rig:%s"
	KeyUserRigs         = "user:%d:rigs"
	KeyMarketState      = "market:state"
	KeyMinesGame        = "mines:game:%s"
	KeyActiveMinesGame  = "user:%d:active_mines"
	KeyTransaction      = "transaction:%s"
	KeyUserTransactions = "user:%d:transactions"
	KeyRateLimit        = "ratelimit:%d:%s"

	TTLMinesGame   = 7 * 24 * time.Hour
	TTLTransaction = 30 * 24 * time.Hour

	// Keep only the most recent transactions per user.
	TransactionHistoryLimit = 100
)
