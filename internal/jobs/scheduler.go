// Package jobs runs the periodic maintenance work: market refreshes,
// expired-rig sweeps, stale mines settlement and energy regeneration.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"rigworks-backend/internal/config"
	"rigworks-backend/internal/logger"
	"rigworks-backend/internal/services"
)

type Scheduler struct {
	cron        *cron.Cron
	market      *services.MarketService
	rigs        *services.RigService
	mines       *services.MinesEngine
	expeditions *services.ExpeditionService
	regenEvery  time.Duration
}

func NewScheduler(market *services.MarketService, rigs *services.RigService, mines *services.MinesEngine, expeditions *services.ExpeditionService, regenEvery time.Duration) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		market:      market,
		rigs:        rigs,
		mines:       mines,
		expeditions: expeditions,
		regenEvery:  regenEvery,
	}
}

// Start registers all jobs and launches the cron loop.
func (s *Scheduler) Start(cfg *config.Config) error {
	if _, err := s.cron.AddFunc(cfg.MarketRefreshSpec, s.refreshMarket); err != nil {
		return fmt.Errorf("failed to schedule market refresh: %v", err)
	}
	if _, err := s.cron.AddFunc(cfg.SweepSpec, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %v", err)
	}
	spec := fmt.Sprintf("@every %s", s.regenEvery)
	if _, err := s.cron.AddFunc(spec, s.regenEnergy); err != nil {
		return fmt.Errorf("failed to schedule energy regen: %v", err)
	}

	s.cron.Start()
	logger.Info("scheduler started",
		zap.String("market_refresh", cfg.MarketRefreshSpec),
		zap.String("sweep", cfg.SweepSpec),
		zap.Duration("energy_regen", s.regenEvery))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) refreshMarket() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.market.Current(ctx); err != nil {
		logger.Error("market refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := s.rigs.SweepExpired(ctx)
	if err != nil {
		logger.Error("rig sweep failed", zap.Error(err))
	} else if removed > 0 {
		logger.Info("swept expired rigs", zap.Int("removed", removed))
	}

	settled, err := s.mines.CleanupStale(ctx)
	if err != nil {
		logger.Error("mines cleanup failed", zap.Error(err))
	} else if settled > 0 {
		logger.Info("settled stale mines games", zap.Int("settled", settled))
	}
}

func (s *Scheduler) regenEnergy() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.expeditions.RegenEnergy(ctx, s.regenEvery); err != nil {
		logger.Error("energy regen failed", zap.Error(err))
	}
}
