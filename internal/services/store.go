package services

import (
	"context"
	"time"

	"rigworks-backend/internal/models"
)

// Store is the injected persistence boundary. The Redis implementation
// backs deployments; the in-memory one backs tests and demo mode. A
// single session is assumed to be the only writer for its account;
// cross-session locking is not provided.
type Store interface {
	GetAccount(ctx context.Context, userID int64) (*models.PlayerAccount, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.PlayerAccount, error)
	SaveAccount(ctx context.Context, account *models.PlayerAccount) error
	DeleteAccount(ctx context.Context, userID int64) error
	ListAccountIDs(ctx context.Context) ([]int64, error)
	NextAccountID(ctx context.Context) (int64, error)

	GetRig(ctx context.Context, rigID string) (*models.ProductionUnit, error)
	SaveRig(ctx context.Context, rig *models.ProductionUnit) error
	DeleteRig(ctx context.Context, rigID string) error
	ListRigs(ctx context.Context, userID int64) ([]*models.ProductionUnit, error)

	GetMarket(ctx context.Context) (*models.MarketState, error)
	SaveMarket(ctx context.Context, market *models.MarketState) error

	GetMinesGame(ctx context.Context, gameID string) (*models.MinesGame, error)
	SaveMinesGame(ctx context.Context, game *models.MinesGame) error
	ActiveMinesGameID(ctx context.Context, userID int64) (string, error)
	SetActiveMinesGame(ctx context.Context, userID int64, gameID string) error
	ClearActiveMinesGame(ctx context.Context, userID int64) error

	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactions(ctx context.Context, userID int64, limit int64) ([]*models.Transaction, error)

	CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error)

	Close() error
}
