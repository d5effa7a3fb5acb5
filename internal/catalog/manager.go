// Package catalog keeps a polled copy of the backend's reference data: the
// time-period tree with its events, locations and event types.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/histotrails/internal/config"
	"github.com/mr1hm/histotrails/internal/metrics"
	"github.com/mr1hm/histotrails/internal/models"
)

var ErrNotLoaded = errors.New("catalog not loaded")

type Source interface {
	TimePeriodRoots(ctx context.Context) ([]models.TimePeriod, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	ListEventTypes(ctx context.Context) ([]models.EventType, error)
}

// Snapshot is never modified after it is published.
type Snapshot struct {
	Periods    []models.TimePeriod
	Locations  []models.Location
	EventTypes []models.EventType
	FetchedAt  time.Time
}

type Manager struct {
	cfg     config.CatalogConfig
	source  Source
	current atomic.Pointer[Snapshot]
	trigger chan struct{}
	wg      sync.WaitGroup
}

func NewManager(cfg config.CatalogConfig, source Source) *Manager {
	return &Manager{
		cfg:     cfg,
		source:  source,
		trigger: make(chan struct{}, 1),
	}
}

func (m *Manager) Start(ctx context.Context) {
	if !m.cfg.Enabled {
		slog.Info("catalog poller disabled")
		return
	}
	m.wg.Add(1)
	go m.runPoller(ctx)
}

func (m *Manager) runPoller(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting catalog poller", "interval", m.cfg.PollInterval)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		case <-m.trigger:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("catalog refresh failed", "error", err)
	}
}

// Invalidate asks the poller to refresh as soon as possible. Calls while a
// refresh is already pending are dropped.
func (m *Manager) Invalidate() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Refresh fetches all reference data concurrently and publishes a new
// snapshot only when every fetch succeeded.
func (m *Manager) Refresh(ctx context.Context) error {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		periods, err := m.source.TimePeriodRoots(ctx)
		if err != nil {
			return fmt.Errorf("error fetching time periods: %w", err)
		}
		snap.Periods = periods
		return nil
	})
	g.Go(func() error {
		locations, err := m.source.ListLocations(ctx)
		if err != nil {
			return fmt.Errorf("error fetching locations: %w", err)
		}
		snap.Locations = locations
		return nil
	})
	g.Go(func() error {
		types, err := m.source.ListEventTypes(ctx)
		if err != nil {
			return fmt.Errorf("error fetching event types: %w", err)
		}
		snap.EventTypes = types
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failure").Inc()
		return err
	}

	snap.FetchedAt = time.Now()
	m.current.Store(&snap)
	metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	metrics.CatalogLastRefresh.Set(float64(snap.FetchedAt.Unix()))
	slog.Debug("catalog refreshed", "periods", len(snap.Periods),
		"locations", len(snap.Locations), "event_types", len(snap.EventTypes))
	return nil
}

// Snapshot returns the latest data, loading it on first use when the poller
// has not produced one yet.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := m.current.Load(); snap != nil {
		return snap, nil
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return m.current.Load(), nil
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("catalog manager stopped")
}
