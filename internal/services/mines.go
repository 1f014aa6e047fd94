package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
)

// staleGameAge is how long an untouched active game survives before
// the cleanup job settles it.
const staleGameAge = 24 * time.Hour

// MinesMultiplier is the payout multiplier after `revealed` safe tiles
// on a grid with `mines` mines. Each factor is the inverse of the
// probability of the corresponding safe pick, scaled by the house
// factor, so the multiplier is strictly increasing in both arguments.
func MinesMultiplier(revealed, mines int, houseFactor float64) float64 {
	if revealed <= 0 {
		return 0
	}
	m := houseFactor
	for i := 0; i < revealed; i++ {
		m *= float64(models.MinesGridSize-i) / float64(models.MinesGridSize-mines-i)
	}
	return m
}

// MinesEngine runs the provably fair mines game. Mine positions are
// committed before the first reveal via HMAC-SHA256 over the player's
// client seed and per-account nonce, keyed by a server seed whose hash
// is published with the game.
type MinesEngine struct {
	store   Store
	ledger  *Ledger
	catalog *catalog.Catalog
	clock   Clock

	serverSeed string
	serverHash string

	// Serializes reveals and cashouts per game so a burst of requests
	// cannot double-settle one board.
	locks sync.Map
}

func NewMinesEngine(store Store, ledger *Ledger, cat *catalog.Catalog, clock Clock, serverSeed string) *MinesEngine {
	if serverSeed == "" {
		serverSeed = models.GenerateClientSeed()
	}
	hash := sha256.Sum256([]byte(serverSeed))
	return &MinesEngine{
		store:      store,
		ledger:     ledger,
		catalog:    cat,
		clock:      clock,
		serverSeed: serverSeed,
		serverHash: hex.EncodeToString(hash[:]),
	}
}

// ServerHash is the public commitment to the server seed.
func (s *MinesEngine) ServerHash() string { return s.serverHash }

func (s *MinesEngine) gameLock(gameID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// minePositions derives `count` distinct tile indices from the seed
// pair and nonce. The HMAC stream is consumed 4 bytes at a time; a
// collision falls through to the next draw, with extra rounds appended
// to the message when the stream runs dry.
func (s *MinesEngine) minePositions(clientSeed string, nonce int64, count int) []int {
	positions := make([]int, 0, count)
	taken := make(map[int]bool, count)

	for round := 0; len(positions) < count; round++ {
		mac := hmac.New(sha256.New, []byte(s.serverSeed))
		fmt.Fprintf(mac, "mines:%s:%d:%d", clientSeed, nonce, round)
		digest := mac.Sum(nil)

		for i := 0; i+4 <= len(digest) && len(positions) < count; i += 4 {
			pos := int(binary.BigEndian.Uint32(digest[i:i+4]) % models.MinesGridSize)
			if taken[pos] {
				continue
			}
			taken[pos] = true
			positions = append(positions, pos)
		}
	}
	return positions
}

// VerifyGame recomputes the mine layout from the game's seeds and
// reports whether it matches what was committed.
func (s *MinesEngine) VerifyGame(game *models.MinesGame) bool {
	expected := s.minePositions(game.ClientSeed, game.Nonce, game.MinesCount)
	if len(expected) != len(game.Positions) {
		return false
	}
	for i, pos := range expected {
		if game.Positions[i] != pos {
			return false
		}
	}
	return true
}

// PlaceBet debits the stake and deals a new committed board. One
// active game per account.
func (s *MinesEngine) PlaceBet(ctx context.Context, account *models.PlayerAccount, req *models.MinesBetRequest) (*models.MinesGame, *models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBet, err)
	}

	activeID, err := s.store.ActiveMinesGameID(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	if activeID != "" {
		game, err := s.store.GetMinesGame(ctx, activeID)
		if err == nil && game.Status == models.MinesStatusActive {
			return nil, nil, ErrGameActive
		}
		// Dangling pointer to a finished or expired game.
		s.store.ClearActiveMinesGame(ctx, account.ID)
	}

	nonce := account.Nonce
	account.Nonce++
	account.Stats.TotalWagered += req.Amount

	now := s.clock.Now()
	game := &models.MinesGame{
		ID:         models.GenerateGameID(),
		UserID:     account.ID,
		BetAmount:  req.Amount,
		MinesCount: req.MinesCount,
		Positions:  s.minePositions(account.ClientSeed, nonce, req.MinesCount),
		Revealed:   []int{},
		Status:     models.MinesStatusActive,
		ClientSeed: account.ClientSeed,
		ServerHash: s.serverHash,
		Nonce:      nonce,
		CreatedAt:  now,
	}

	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeMinesBet,
		Balance:     -req.Amount,
		RefID:       game.ID,
		Description: fmt.Sprintf("Mines bet: %d mines", req.MinesCount),
	})
	if err != nil {
		account.Nonce--
		account.Stats.TotalWagered -= req.Amount
		return nil, nil, err
	}

	if err := s.store.SaveMinesGame(ctx, game); err != nil {
		return nil, nil, err
	}
	if err := s.store.SetActiveMinesGame(ctx, account.ID, game.ID); err != nil {
		return nil, nil, err
	}
	return game, tx, nil
}

// Reveal opens one tile. A mine ends the game with the stake lost; a
// safe tile advances the multiplier.
func (s *MinesEngine) Reveal(ctx context.Context, account *models.PlayerAccount, gameID string, position int) (*models.MinesGame, error) {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.store.GetMinesGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != account.ID {
		return nil, ErrNotOwner
	}
	if game.Status != models.MinesStatusActive {
		return nil, ErrGameNotActive
	}
	if position < 0 || position >= models.MinesGridSize {
		return nil, ErrInvalidBet
	}
	if game.IsRevealed(position) {
		return nil, ErrTileAlreadyRevealed
	}

	if game.IsMine(position) {
		game.Status = models.MinesStatusExploded
		game.EndedAt = s.clock.Now()
		game.CurrentMultiplier = 0
		game.PotentialWin = 0
		if err := s.store.SaveMinesGame(ctx, game); err != nil {
			return nil, err
		}
		s.store.ClearActiveMinesGame(ctx, account.ID)
		s.locks.Delete(gameID)
		return game, nil
	}

	game.Revealed = append(game.Revealed, position)
	game.CurrentMultiplier = MinesMultiplier(len(game.Revealed), game.MinesCount, s.catalog.MinesHouseFactor)
	game.PotentialWin = game.BetAmount * game.CurrentMultiplier
	if err := s.store.SaveMinesGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Cashout settles an active game at the current multiplier. At least
// one safe reveal is required.
func (s *MinesEngine) Cashout(ctx context.Context, account *models.PlayerAccount, gameID string) (*models.MinesGame, *models.Transaction, error) {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.store.GetMinesGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if game.UserID != account.ID {
		return nil, nil, ErrNotOwner
	}
	if game.Status != models.MinesStatusActive {
		return nil, nil, ErrGameNotActive
	}
	if len(game.Revealed) == 0 {
		return nil, nil, ErrNothingRevealed
	}

	win := game.BetAmount * game.CurrentMultiplier
	game.Status = models.MinesStatusCashed
	game.EndedAt = s.clock.Now()
	game.PotentialWin = win

	account.Stats.TotalWon += win
	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeMinesWin,
		Balance:     win,
		RefID:       game.ID,
		Description: fmt.Sprintf("Mines cashout at %.2fx", game.CurrentMultiplier),
	})
	if err != nil {
		account.Stats.TotalWon -= win
		return nil, nil, err
	}

	if err := s.store.SaveMinesGame(ctx, game); err != nil {
		return nil, nil, err
	}
	s.store.ClearActiveMinesGame(ctx, account.ID)
	s.locks.Delete(gameID)
	return game, tx, nil
}

// CleanupStale settles active games abandoned past staleGameAge:
// boards with at least one reveal are cashed out at their current
// multiplier, untouched boards are refunded.
func (s *MinesEngine) CleanupStale(ctx context.Context) (int, error) {
	ids, err := s.store.ListAccountIDs(ctx)
	if err != nil {
		return 0, err
	}

	settled := 0
	now := s.clock.Now()
	for _, userID := range ids {
		gameID, err := s.store.ActiveMinesGameID(ctx, userID)
		if err != nil || gameID == "" {
			continue
		}
		game, err := s.store.GetMinesGame(ctx, gameID)
		if err != nil {
			s.store.ClearActiveMinesGame(ctx, userID)
			continue
		}
		if game.Status != models.MinesStatusActive || now.Sub(game.CreatedAt) < staleGameAge {
			continue
		}

		account, err := s.store.GetAccount(ctx, userID)
		if err != nil {
			continue
		}
		if len(game.Revealed) > 0 {
			if _, _, err := s.Cashout(ctx, account, gameID); err != nil {
				continue
			}
		} else {
			game.Status = models.MinesStatusCashed
			game.EndedAt = now
			game.PotentialWin = game.BetAmount
			if _, err := s.ledger.Commit(ctx, account, Delta{
				Type:        models.TransactionTypeMinesWin,
				Balance:     game.BetAmount,
				RefID:       game.ID,
				Description: "Mines refund for abandoned game",
			}); err != nil {
				continue
			}
			if err := s.store.SaveMinesGame(ctx, game); err != nil {
				continue
			}
			s.store.ClearActiveMinesGame(ctx, userID)
		}
		settled++
	}
	return settled, nil
}
