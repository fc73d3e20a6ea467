/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/Zuplu/sc-overlay/internal/assistant"
	"github.com/Zuplu/sc-overlay/internal/status"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"golang.org/x/sync/errgroup"
)

const (
	STATUS_REFRESH_INTERVAL = 60 * time.Second
	HEALTH_REFRESH_INTERVAL = 300 * time.Second
)

// refresher keeps the status cache warm and tracks assistant health, logging
// only when either changes.
type refresher struct {
	services       *Services
	statusInterval time.Duration
	healthInterval time.Duration

	mu         sync.Mutex
	lastState  status.State
	lastHealth *assistant.Health
}

func newRefresher(s *Services) *refresher {
	return &refresher{
		services:       s,
		statusInterval: STATUS_REFRESH_INTERVAL,
		healthInterval: HEALTH_REFRESH_INTERVAL,
	}
}

func (r *refresher) refreshStatus(ctx context.Context) status.State {
	v := r.services.StatusView(ctx)
	state := v.Classification.State
	r.mu.Lock()
	defer r.mu.Unlock()
	if state != r.lastState {
		if v.Error {
			log.Warnf("RSI status unavailable: %s", v.Details)
		} else {
			log.Infof("RSI status: %s (%s)", v.Classification.Label, v.OverallText)
		}
		r.lastState = state
	}
	return state
}

func (r *refresher) refreshHealth(ctx context.Context) assistant.Health {
	h := r.services.Assistant.Health(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastHealth == nil || *r.lastHealth != h {
		if h.OK {
			log.Info("Assistant reachable")
		} else {
			log.Warnf("Assistant unavailable (%s)", h.Reason)
		}
		r.lastHealth = &h
	}
	return h
}

// run refreshes both once concurrently, then on their own tickers until ctx ends.
func (r *refresher) run(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.refreshStatus(gctx)
		return nil
	})
	g.Go(func() error {
		r.refreshHealth(gctx)
		return nil
	})
	g.Wait()

	statusTicker := time.NewTicker(r.statusInterval)
	defer statusTicker.Stop()
	healthTicker := time.NewTicker(r.healthInterval)
	defer healthTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-statusTicker.C:
			r.refreshStatus(ctx)
		case <-healthTicker.C:
			r.refreshHealth(ctx)
		}
	}
}
