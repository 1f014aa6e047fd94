package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rigworks-backend/internal/config"
	"rigworks-backend/internal/models"
)

// RedisStore persists all game state as JSON values under the key
// scheme in redis_keys.go. Transaction history is a trimmed ZSET index
// over per-transaction keys.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, out interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %v", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %v", key, err)
	}
	return nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisStore) GetAccount(ctx context.Context, userID int64) (*models.PlayerAccount, error) {
	var account models.PlayerAccount
	if err := s.getJSON(ctx, fmt.Sprintf(KeyAccount, userID), &account); err != nil {
		return nil, err
	}
	account.Normalize()
	return &account, nil
}

func (s *RedisStore) GetAccountByUsername(ctx context.Context, username string) (*models.PlayerAccount, error) {
	idStr, err := s.client.Get(ctx, fmt.Sprintf(KeyAccountByName, username)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up username: %v", err)
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt username index for %s: %v", username, err)
	}
	return s.GetAccount(ctx, userID)
}

func (s *RedisStore) SaveAccount(ctx context.Context, account *models.PlayerAccount) error {
	if err := s.setJSON(ctx, fmt.Sprintf(KeyAccount, account.ID), account, 0); err != nil {
		return fmt.Errorf("failed to save account: %v", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyAccountByName, account.Username), account.ID, 0)
	pipe.SAdd(ctx, KeyAccountIDs, account.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteAccount(ctx context.Context, userID int64) error {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf(KeyAccount, userID))
	pipe.Del(ctx, fmt.Sprintf(KeyAccountByName, account.Username))
	pipe.SRem(ctx, KeyAccountIDs, userID)
	pipe.Del(ctx, fmt.Sprintf(KeyUserRigs, userID))
	pipe.Del(ctx, fmt.Sprintf(KeyUserTransactions, userID))
	pipe.Del(ctx, fmt.Sprintf(KeyActiveMinesGame, userID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListAccountIDs(ctx context.Context) ([]int64, error) {
	raw, err := s.client.SMembers(ctx, KeyAccountIDs).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %v", err)
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) NextAccountID(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, KeyAccountIDCounter).Result()
}

func (s *RedisStore) GetRig(ctx context.Context, rigID string) (*models.ProductionUnit, error) {
	var rig models.ProductionUnit
	if err := s.getJSON(ctx, fmt.Sprintf(KeyRig, rigID), &rig); err != nil {
		return nil, err
	}
	return &rig, nil
}

func (s *RedisStore) SaveRig(ctx context.Context, rig *models.ProductionUnit) error {
	if err := s.setJSON(ctx, fmt.Sprintf(KeyRig, rig.ID), rig, 0); err != nil {
		return fmt.Errorf("failed to save rig: %v", err)
	}
	return s.client.SAdd(ctx, fmt.Sprintf(KeyUserRigs, rig.OwnerID), rig.ID).Err()
}

func (s *RedisStore) DeleteRig(ctx context.Context, rigID string) error {
	rig, err := s.GetRig(ctx, rigID)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf(KeyRig, rigID))
	pipe.SRem(ctx, fmt.Sprintf(KeyUserRigs, rig.OwnerID), rigID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListRigs(ctx context.Context, userID int64) ([]*models.ProductionUnit, error) {
	rigIDs, err := s.client.SMembers(ctx, fmt.Sprintf(KeyUserRigs, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rigs: %v", err)
	}

	var rigs []*models.ProductionUnit
	for _, rigID := range rigIDs {
		rig, err := s.GetRig(ctx, rigID)
		if err != nil {
			continue
		}
		rigs = append(rigs, rig)
	}
	return rigs, nil
}

func (s *RedisStore) GetMarket(ctx context.Context) (*models.MarketState, error) {
	var market models.MarketState
	if err := s.getJSON(ctx, KeyMarketState, &market); err != nil {
		return nil, err
	}
	return &market, nil
}

func (s *RedisStore) SaveMarket(ctx context.Context, market *models.MarketState) error {
	return s.setJSON(ctx, KeyMarketState, market, 0)
}

func (s *RedisStore) GetMinesGame(ctx context.Context, gameID string) (*models.MinesGame, error) {
	var game models.MinesGame
	if err := s.getJSON(ctx, fmt.Sprintf(KeyMinesGame, gameID), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *RedisStore) SaveMinesGame(ctx context.Context, game *models.MinesGame) error {
	return s.setJSON(ctx, fmt.Sprintf(KeyMinesGame, game.ID), game, TTLMinesGame)
}

func (s *RedisStore) ActiveMinesGameID(ctx context.Context, userID int64) (string, error) {
	gameID, err := s.client.Get(ctx, fmt.Sprintf(KeyActiveMinesGame, userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active game: %v", err)
	}
	return gameID, nil
}

func (s *RedisStore) SetActiveMinesGame(ctx context.Context, userID int64, gameID string) error {
	return s.client.Set(ctx, fmt.Sprintf(KeyActiveMinesGame, userID), gameID, TTLMinesGame).Err()
}

func (s *RedisStore) ClearActiveMinesGame(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyActiveMinesGame, userID)).Err()
}

func (s *RedisStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.setJSON(ctx, fmt.Sprintf(KeyTransaction, tx.ID), tx, TTLTransaction); err != nil {
		return fmt.Errorf("failed to save transaction: %v", err)
	}

	userTxKey := fmt.Sprintf(KeyUserTransactions, tx.UserID)
	if err := s.client.ZAdd(ctx, userTxKey, redis.Z{
		Score:  float64(tx.CreatedAt.Unix()),
		Member: tx.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index transaction: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, userTxKey, 0, -(TransactionHistoryLimit + 1))

	return nil
}

func (s *RedisStore) GetTransactions(ctx context.Context, userID int64, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > TransactionHistoryLimit {
		limit = 50
	}

	txIDs, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserTransactions, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction IDs: %v", err)
	}

	var transactions []*models.Transaction
	for _, txID := range txIDs {
		var tx models.Transaction
		if err := s.getJSON(ctx, fmt.Sprintf(KeyTransaction, txID), &tx); err != nil {
			continue
		}
		transactions = append(transactions, &tx)
	}
	return transactions, nil
}

func (s *RedisStore) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}
