package services

import (
	"context"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/models"
)

// NewMarketState seeds every configured tier at its base price.
func NewMarketState(cat *catalog.Catalog, now time.Time) *models.MarketState {
	trends := make(map[int]*models.TierTrend, len(cat.Tiers))
	for _, t := range cat.Tiers {
		trends[t.Tier] = &models.TierTrend{
			Tier:         t.Tier,
			BasePrice:    t.BasePrice,
			CurrentPrice: t.BasePrice,
			Multiplier:   1.0,
			Trend:        models.TrendStable,
			History:      []models.PricePoint{{At: now, Price: t.BasePrice}},
		}
	}
	return &models.MarketState{
		Trends:     trends,
		NextUpdate: now.Add(updateInterval(cat)),
		UpdatedAt:  now,
	}
}

func updateInterval(cat *catalog.Catalog) time.Duration {
	return time.Duration(cat.Market.UpdateIntervalHours * float64(time.Hour))
}

// RefreshIfDue advances the market one step when the refresh interval
// has elapsed. Before NextUpdate it returns the state untouched, so
// redundant calls within the same interval are no-ops. Each tier takes
// a bounded multiplicative random walk clamped to
// [base*(1-maxFluctuation), base*(1+maxFluctuation)].
func RefreshIfDue(m *models.MarketState, cat *catalog.Catalog, now time.Time, rng func() float64) *models.MarketState {
	if m == nil {
		return NewMarketState(cat, now)
	}
	if now.Before(m.NextUpdate) {
		return m
	}

	for _, t := range cat.Tiers {
		trend, ok := m.Trends[t.Tier]
		if !ok {
			// Tier added to the catalog after the market was seeded.
			trend = &models.TierTrend{
				Tier:         t.Tier,
				BasePrice:    t.BasePrice,
				CurrentPrice: t.BasePrice,
				Multiplier:   1.0,
				Trend:        models.TrendStable,
			}
			m.Trends[t.Tier] = trend
		}

		prev := trend.CurrentPrice
		step := 1 + (rng()*2-1)*cat.Market.Volatility
		next := prev * step

		minBound := trend.BasePrice * (1 - cat.Market.MaxFluctuation)
		maxBound := trend.BasePrice * (1 + cat.Market.MaxFluctuation)
		if next < minBound {
			next = minBound
		}
		if next > maxBound {
			next = maxBound
		}

		trend.CurrentPrice = next
		trend.Multiplier = next / trend.BasePrice
		switch {
		case next > prev:
			trend.Trend = models.TrendUp
		case next < prev:
			trend.Trend = models.TrendDown
		default:
			trend.Trend = models.TrendStable
		}

		trend.History = append(trend.History, models.PricePoint{At: now, Price: next})
		if len(trend.History) > cat.Market.HistoryLength {
			trend.History = trend.History[len(trend.History)-cat.Market.HistoryLength:]
		}
	}

	m.NextUpdate = now.Add(updateInterval(cat))
	m.UpdatedAt = now
	return m
}

// MarketService owns the process-wide market singleton. Reads are
// frequent and refreshes rare; the mutex makes redundant refresh
// attempts from concurrent readers a check-then-set no-op instead of a
// double advance of NextUpdate.
type MarketService struct {
	store   Store
	ledger  *Ledger
	catalog *catalog.Catalog
	clock   Clock

	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewMarketService(store Store, ledger *Ledger, cat *catalog.Catalog, clock Clock) *MarketService {
	return &MarketService{
		store:   store,
		ledger:  ledger,
		catalog: cat,
		clock:   clock,
		rand:    mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Current returns the market state, refreshing it first if due.
func (s *MarketService) Current(ctx context.Context) (*models.MarketState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMarket(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	due := m == nil || !now.Before(m.NextUpdate)
	m = RefreshIfDue(m, s.catalog, now, s.rand.Float64)
	if due {
		if err := s.store.SaveMarket(ctx, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SellMaterials converts a material quantity into balance at the
// current tier price, as one atomic ledger apply.
func (s *MarketService) SellMaterials(ctx context.Context, account *models.PlayerAccount, tier int, quantity float64) (*models.Transaction, float64, error) {
	if quantity <= 0 {
		return nil, 0, ErrInvalidBet
	}

	m, err := s.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	price, ok := m.PriceFor(tier)
	if !ok {
		return nil, 0, ErrNotFound
	}

	proceeds := price * quantity
	tx, err := s.ledger.Commit(ctx, account, Delta{
		Type:        models.TransactionTypeMaterialSale,
		Balance:     proceeds,
		Materials:   map[int]float64{tier: -quantity},
		Description: sellDescription(tier, quantity, price),
	})
	if err != nil {
		return nil, 0, err
	}
	return tx, proceeds, nil
}

func sellDescription(tier int, quantity, price float64) string {
	return fmt.Sprintf("Sold %.2f tier-%d materials at %s each", quantity, tier, models.FormatCurrency(price))
}
