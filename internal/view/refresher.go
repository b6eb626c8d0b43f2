package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	appLog "calgrid/internal/log"
	"calgrid/internal/refresh"
)

// RefresherOptions configures a Refresher.
type RefresherOptions struct {
	ActiveDelay time.Duration
	IdleDelay   time.Duration
	// Cron is a five-field schedule; empty disables periodic refresh.
	Cron string
}

// Refresher keeps the latest snapshot of a Builder published. Rebuilds are
// requested through Notify and coalesced by a debouncer.
type Refresher struct {
	builder   *Builder
	debouncer *refresh.Debouncer
	cronSpec  string
	now       func() time.Time

	current atomic.Pointer[Snapshot]

	// buildMu serializes rebuilds; a window can open while one is running.
	buildMu sync.Mutex

	ctxMu sync.Mutex
	ctx   context.Context
}

// NewRefresher returns a Refresher for b. Nothing is built until Notify,
// Rebuild or Run is called.
func NewRefresher(b *Builder, opts RefresherOptions) *Refresher {
	r := &Refresher{
		builder:  b,
		cronSpec: opts.Cron,
		now:      time.Now,
		ctx:      context.Background(),
	}
	r.debouncer = refresh.NewDebouncer(opts.ActiveDelay, opts.IdleDelay, r.rebuildAsync)
	return r
}

// Builder returns the builder the refresher publishes from.
func (r *Refresher) Builder() *Builder { return r.builder }

// Current returns the latest published snapshot, or nil before the first
// successful build.
func (r *Refresher) Current() *Snapshot { return r.current.Load() }

// Notify requests a rebuild. It reports whether a new coalescing window was
// opened.
func (r *Refresher) Notify() bool { return r.debouncer.Notify() }

// SetActive selects the short debounce window while the view is watched.
func (r *Refresher) SetActive(active bool) { r.debouncer.SetActive(active) }

// Pending reports whether a rebuild is scheduled.
func (r *Refresher) Pending() bool { return r.debouncer.Pending() }

// Rebuild builds a snapshot for the current time and publishes it. On
// failure the previous snapshot stays published.
func (r *Refresher) Rebuild(ctx context.Context) (*Snapshot, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	start := time.Now()
	snap, err := r.builder.Build(ctx, r.now())
	if err != nil {
		appLog.Error("view rebuild failed; keeping previous snapshot", err)
		return nil, err
	}
	r.current.Store(snap)
	appLog.Info("view snapshot published",
		"kind", snap.Kind,
		"pages", len(snap.Pages),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return snap, nil
}

func (r *Refresher) rebuildAsync() {
	r.ctxMu.Lock()
	ctx := r.ctx
	r.ctxMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	_, _ = r.Rebuild(ctx)
}

// Run builds the first snapshot, starts the periodic schedule and blocks
// until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.ctxMu.Lock()
	r.ctx = ctx
	r.ctxMu.Unlock()

	var c *refresh.Cron
	if r.cronSpec != "" {
		var err error
		c, err = refresh.NewCron(r.cronSpec, r.builder.Location(), r)
		if err != nil {
			return err
		}
	}

	_, _ = r.Rebuild(ctx)

	if c != nil {
		c.Start()
		defer c.Stop()
	}

	<-ctx.Done()
	r.debouncer.Stop()
	appLog.Info("refresher stopped")
	return nil
}
