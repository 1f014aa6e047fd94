package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"rigworks-backend/internal/models"
)

// MemoryStore is the demo-mode and test implementation of Store. All
// values are deep-copied on the way in and out so callers never share
// memory with the stored records.
type MemoryStore struct {
	mu sync.RWMutex

	accounts     map[int64][]byte
	usernames    map[string]int64
	nextID       int64
	rigs         map[string][]byte
	rigsByUser   map[int64]map[string]bool
	market       []byte
	minesGames   map[string][]byte
	activeMines  map[int64]string
	transactions map[int64][]*models.Transaction
	rateCounts   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[int64][]byte),
		usernames:    make(map[string]int64),
		rigs:         make(map[string][]byte),
		rigsByUser:   make(map[int64]map[string]bool),
		minesGames:   make(map[string][]byte),
		activeMines:  make(map[int64]string),
		transactions: make(map[int64][]*models.Transaction),
		rateCounts:   make(map[string]int),
	}
}

func (s *MemoryStore) Close() error { return nil }

func clone(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

func (s *MemoryStore) GetAccount(ctx context.Context, userID int64) (*models.PlayerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	var account models.PlayerAccount
	if err := clone(data, &account); err != nil {
		return nil, err
	}
	account.Normalize()
	return &account, nil
}

func (s *MemoryStore) GetAccountByUsername(ctx context.Context, username string) (*models.PlayerAccount, error) {
	s.mu.RLock()
	userID, ok := s.usernames[username]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetAccount(ctx, userID)
}

func (s *MemoryStore) SaveAccount(ctx context.Context, account *models.PlayerAccount) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = data
	s.usernames[account.Username] = account.ID
	return nil
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	var account models.PlayerAccount
	if err := clone(data, &account); err != nil {
		return err
	}
	delete(s.accounts, userID)
	delete(s.usernames, account.Username)
	delete(s.transactions, userID)
	delete(s.activeMines, userID)
	for rigID := range s.rigsByUser[userID] {
		delete(s.rigs, rigID)
	}
	delete(s.rigsByUser, userID)
	return nil
}

func (s *MemoryStore) ListAccountIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) NextAccountID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

func (s *MemoryStore) GetRig(ctx context.Context, rigID string) (*models.ProductionUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.rigs[rigID]
	if !ok {
		return nil, ErrNotFound
	}
	var rig models.ProductionUnit
	if err := clone(data, &rig); err != nil {
		return nil, err
	}
	return &rig, nil
}

func (s *MemoryStore) SaveRig(ctx context.Context, rig *models.ProductionUnit) error {
	data, err := json.Marshal(rig)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rigs[rig.ID] = data
	if s.rigsByUser[rig.OwnerID] == nil {
		s.rigsByUser[rig.OwnerID] = make(map[string]bool)
	}
	s.rigsByUser[rig.OwnerID][rig.ID] = true
	return nil
}

func (s *MemoryStore) DeleteRig(ctx context.Context, rigID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.rigs[rigID]
	if !ok {
		return ErrNotFound
	}
	var rig models.ProductionUnit
	if err := clone(data, &rig); err != nil {
		return err
	}
	delete(s.rigs, rigID)
	delete(s.rigsByUser[rig.OwnerID], rigID)
	return nil
}

func (s *MemoryStore) ListRigs(ctx context.Context, userID int64) ([]*models.ProductionUnit, error) {
	s.mu.RLock()
	rigIDs := make([]string, 0, len(s.rigsByUser[userID]))
	for rigID := range s.rigsByUser[userID] {
		rigIDs = append(rigIDs, rigID)
	}
	s.mu.RUnlock()

	sort.Strings(rigIDs)
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

func (s *MemoryStore) GetMarket(ctx context.Context) (*models.MarketState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.market == nil {
		return nil, ErrNotFound
	}
	var market models.MarketState
	if err := clone(s.market, &market); err != nil {
		return nil, err
	}
	return &market, nil
}

func (s *MemoryStore) SaveMarket(ctx context.Context, market *models.MarketState) error {
	data, err := json.Marshal(market)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market = data
	return nil
}

func (s *MemoryStore) GetMinesGame(ctx context.Context, gameID string) (*models.MinesGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.minesGames[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	var game models.MinesGame
	if err := clone(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MemoryStore) SaveMinesGame(ctx context.Context, game *models.MinesGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minesGames[game.ID] = data
	return nil
}

func (s *MemoryStore) ActiveMinesGameID(ctx context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeMines[userID], nil
}

func (s *MemoryStore) SetActiveMinesGame(ctx context.Context, userID int64, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeMines[userID] = gameID
	return nil
}

func (s *MemoryStore) ClearActiveMinesGame(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeMines, userID)
	return nil
}

func (s *MemoryStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	txs := append(s.transactions[tx.UserID], &cp)
	if len(txs) > TransactionHistoryLimit {
		txs = txs[len(txs)-TransactionHistoryLimit:]
	}
	s.transactions[tx.UserID] = txs
	return nil
}

func (s *MemoryStore) GetTransactions(ctx context.Context, userID int64, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > TransactionHistoryLimit {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := s.transactions[userID]
	var out []*models.Transaction
	for i := len(txs) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		cp := *txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	// Windows are not expired in memory mode; good enough for tests
	// and single-session demo runs.
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf(KeyRateLimit, userID, action)
	s.rateCounts[key]++
	return s.rateCounts[key] <= limit, nil
}
