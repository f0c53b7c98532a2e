// Package livesync bridges live store subscriptions into the state
// container. One manager serves one session: it fans out a subscription
// per collection, normalizes snapshots, seeds default categories for fresh
// accounts and signals a single "initial load complete" transition once
// every collection has reported.
package livesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/observability"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/state"
	"github.com/iflow-pos/iflow/internal/store"
)

// ErrAlreadySyncing indicates Start was called while a sync is running.
// Stop must run before starting a sync for a different identity, so stale
// data never leaks across accounts.
var ErrAlreadySyncing = errors.New("livesync: sync already running")

// Manager owns the subscription fan-out for one container.
type Manager struct {
	store       store.Store
	container   *state.Container
	logger      *slog.Logger
	metrics     *observability.Metrics
	debounce    time.Duration
	defaultRate float64

	mu            sync.Mutex
	generation    uint64
	cancel        context.CancelFunc
	group         *errgroup.Group
	pending       map[string]struct{}
	loadSignaled  bool
	seeded        bool
	debounceTimer *time.Timer
}

// Options tunes manager construction.
type Options struct {
	Debounce    time.Duration
	DefaultRate float64
	Metrics     *observability.Metrics
}

// NewManager builds a Manager for the given container.
func NewManager(st store.Store, container *state.Container, logger *slog.Logger, opts Options) *Manager {
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	return &Manager{
		store:       st,
		container:   container,
		logger:      logger,
		metrics:     opts.Metrics,
		debounce:    opts.Debounce,
		defaultRate: opts.DefaultRate,
	}
}

// Start opens one live subscription per collection, scoped to the
// identity. Collection-level failures are contained: the failing
// collection merges its empty default and still counts as received.
func (m *Manager) Start(ctx context.Context, identity shared.Identity) error {
	if identity.ID == "" {
		return shared.ErrNoIdentity
	}

	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrAlreadySyncing
	}
	syncCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.generation++
	gen := m.generation
	colls := collections()
	m.pending = make(map[string]struct{}, len(colls))
	for _, c := range colls {
		m.pending[c.key] = struct{}{}
	}
	m.loadSignaled = false
	m.seeded = false
	group := new(errgroup.Group)
	m.group = group
	m.mu.Unlock()

	for _, c := range colls {
		c := c
		group.Go(func() error {
			m.run(syncCtx, gen, identity.ID, c)
			return nil
		})
	}
	return nil
}

// Stop cancels every open subscription and guards the container against
// late callbacks from the cancelled sync. Safe to call repeatedly.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return
	}
	m.cancel()
	m.cancel = nil
	// Bumping the generation invalidates in-flight callbacks even when
	// closing the remote subscription itself is still in progress.
	m.generation++
	m.pending = nil
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
		m.debounceTimer = nil
	}
	group := m.group
	m.group = nil
	m.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}
}

func (m *Manager) run(ctx context.Context, gen uint64, account string, c collection) {
	ch, err := m.store.Subscribe(ctx, account, c.key)
	if err != nil {
		m.logger.Error("open subscription failed",
			slog.String("collection", c.key), slog.Any("error", err))
		m.applyError(gen, c)
		return
	}
	first := true
	for snap := range ch {
		m.applySnapshot(ctx, gen, account, c, snap, first)
		first = false
	}
}

func (m *Manager) applySnapshot(ctx context.Context, gen uint64, account string, c collection, snap store.Snapshot, first bool) {
	if snap.Err != nil {
		m.logger.Error("collection snapshot failed",
			slog.String("collection", c.key), slog.Any("error", snap.Err))
		m.applyError(gen, c)
		return
	}
	partial, err := c.normalize(snap.Docs, m.defaultRate)
	if err != nil {
		m.logger.Error("normalize snapshot failed",
			slog.String("collection", c.key), slog.Any("error", err))
		m.applyError(gen, c)
		return
	}

	if c.key == store.CollCategories {
		m.maybeSeedCategories(ctx, gen, account, partial)
	}

	m.apply(gen, c.key, partial)
	if first {
		m.markReceived(gen, c.key)
	}
}

// applyError merges the collection's empty default so renderers never see
// missing fields, and still counts the collection as received.
func (m *Manager) applyError(gen uint64, c collection) {
	m.apply(gen, c.key, c.empty(m.defaultRate))
	m.markReceived(gen, c.key)
}

// apply merges under the manager lock so a Stop issued concurrently can
// never lose the race to a stale callback.
func (m *Manager) apply(gen uint64, key string, partial state.Partial) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	m.container.Merge(partial)
	if m.metrics != nil {
		m.metrics.SnapshotApplied(key)
	}
}

func (m *Manager) markReceived(gen uint64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	delete(m.pending, key)
	if len(m.pending) > 0 || m.loadSignaled {
		return
	}
	m.loadSignaled = true
	// Debounce so concurrent last-arriving snapshots settle into one
	// notification before loading flips off.
	m.debounceTimer = time.AfterFunc(m.debounce, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.generation {
			return
		}
		m.container.Merge(state.Partial{IsDataLoading: state.Bool(false)})
	})
}

// maybeSeedCategories installs the default category set the first time an
// account's category collection reports empty. The session flag plus the
// default-id check keep the seed from re-running on repeated empty
// snapshots before the write is reflected back.
func (m *Manager) maybeSeedCategories(ctx context.Context, gen uint64, account string, partial state.Partial) {
	cats := []categories.Category{}
	if partial.Categories != nil {
		cats = *partial.Categories
	}

	m.mu.Lock()
	if gen != m.generation || m.seeded {
		m.mu.Unlock()
		return
	}
	if len(cats) > 0 {
		if categories.IsSeeded(cats) {
			m.seeded = true
		}
		m.mu.Unlock()
		return
	}
	m.seeded = true
	m.mu.Unlock()

	ops, err := categories.SeedOps()
	if err != nil {
		m.logger.Error("build category seed failed", slog.Any("error", err))
		return
	}
	if err := m.store.BatchWrite(ctx, account, ops); err != nil {
		// A failed seed stays failed for this session; the next Start
		// observes the still-empty collection and tries again.
		m.logger.Error("seed default categories failed", slog.Any("error", err))
	}
}
