package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/angeloszaimis/source-dashboard/internal/metrics"
	"github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"
	"github.com/angeloszaimis/source-dashboard/internal/source"
	"github.com/angeloszaimis/source-dashboard/internal/status"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

var (
	ErrNotMounted     = errors.New("dashboard: not mounted")
	ErrAlreadyMounted = errors.New("dashboard: already mounted")
	ErrClosed         = errors.New("dashboard: closed")
)

// Options configures a Dashboard.
type Options struct {
	// Store supplies endpoints. Required.
	Store *runtimeconfig.Store
	// Sources defaults to DefaultSources.
	Sources []Source
	// Client is shared by the HTTP fetchers.
	Client *http.Client
	// NewFetcher overrides the HTTP fetcher built for each source.
	NewFetcher func(Source) source.Fetcher
	Logger     *slog.Logger
	Events     chan<- metrics.MetricEvent
	Now        func() time.Time
}

type panelState struct {
	src    Source
	loader *source.Loader
	memo   status.Memo
}

// Stats counts view recomputations.
type Stats struct {
	Views       uint64
	Projections uint64
}

// Dashboard owns one Loader per Source and composes their states into a
// ViewModel.
type Dashboard struct {
	store   *runtimeconfig.Store
	sources []Source
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	panels  []*panelState
	mounted bool
	closed  bool

	viewKey   []uint64
	viewValid bool
	view      ViewModel
	stats     Stats
}

// New returns an unmounted Dashboard.
func New(opts Options) (*Dashboard, error) {
	if opts.Store == nil {
		return nil, errors.New("dashboard: store required")
	}

	sources := opts.Sources
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	for _, src := range sources {
		if src.Name == "" || src.Endpoint == nil {
			return nil, fmt.Errorf("dashboard: source %q needs a name and an endpoint", src.Title)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Dashboard{
		store:   opts.Store,
		sources: slices.Clone(sources),
		opts:    opts,
		logger:  log,
	}, nil
}

// Mount creates a loader per source and starts its first cycle. Every
// endpoint must be resolvable, otherwise nothing is started.
func (d *Dashboard) Mount(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.mounted {
		return ErrAlreadyMounted
	}

	endpoints, err := d.endpoints()
	if err != nil {
		return err
	}

	panels := make([]*panelState, 0, len(d.sources))
	for _, src := range d.sources {
		loader, err := source.NewLoader(ctx, source.Options{
			Name:    src.Name,
			Fetcher: d.fetcherFor(src),
			Logger:  d.logger,
			Events:  d.opts.Events,
			Now:     d.opts.Now,
		})
		if err != nil {
			for _, p := range panels {
				p.loader.Close()
			}
			return err
		}
		panels = append(panels, &panelState{src: src, loader: loader})
	}

	d.panels = panels
	d.mounted = true

	for i, p := range d.panels {
		p.loader.SetEndpoint(endpoints[i])
	}

	d.logger.Info("Dashboard mounted", slog.Int("sources", len(d.panels)))
	return nil
}

// Apply re-reads every endpoint from the store and restarts the loaders
// whose endpoint changed. It reports how many cycles were started.
func (d *Dashboard) Apply() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if !d.mounted {
		return 0, ErrNotMounted
	}

	endpoints, err := d.endpoints()
	if err != nil {
		return 0, err
	}

	started := 0
	for i, p := range d.panels {
		if p.loader.SetEndpoint(endpoints[i]) {
			started++
			d.logger.Info("Endpoint changed",
				slog.String("source", p.src.Name),
				slog.String("url", endpoints[i]))
		}
	}

	return started, nil
}

// Refresh starts a new cycle for every source at its current endpoint.
func (d *Dashboard) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if !d.mounted {
		return ErrNotMounted
	}

	for _, p := range d.panels {
		p.loader.Trigger(p.loader.Endpoint())
	}
	return nil
}

// View returns the current view model. It is rebuilt only when the store or
// a loader changed since the previous call; the result must not be modified.
func (d *Dashboard) View() ViewModel {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.currentKey()
	if d.viewValid && slices.Equal(key, d.viewKey) {
		return d.view
	}

	d.view = d.buildView()
	d.viewKey = key
	d.viewValid = true
	d.stats.Views++

	return d.view
}

// Stats reports how often the view and the per-panel projections were
// recomputed.
func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close tears every loader down. Pending outcomes are discarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	for _, p := range d.panels {
		p.loader.Close()
	}
	d.logger.Info("Dashboard closed")
}

// Wait blocks until every loader goroutine has returned.
func (d *Dashboard) Wait() {
	d.mu.Lock()
	panels := slices.Clone(d.panels)
	d.mu.Unlock()

	for _, p := range panels {
		p.loader.Wait()
	}
}

func (d *Dashboard) endpoints() ([]string, error) {
	endpoints := make([]string, len(d.sources))
	for i, src := range d.sources {
		e, err := src.Endpoint(d.store)
		if err != nil {
			return nil, err
		}
		endpoints[i] = e
	}
	return endpoints, nil
}

func (d *Dashboard) fetcherFor(src Source) source.Fetcher {
	if d.opts.NewFetcher != nil {
		return d.opts.NewFetcher(src)
	}
	return source.NewHTTPFetcher(d.opts.Client, src.Path)
}

func (d *Dashboard) currentKey() []uint64 {
	key := make([]uint64, 0, len(d.panels)+1)
	key = append(key, d.store.Version())
	for _, p := range d.panels {
		key = append(key, p.loader.Version())
	}
	return key
}

func (d *Dashboard) buildView() ViewModel {
	vm := ViewModel{Panels: make([]Panel, 0, len(d.panels))}

	if cfg, err := d.store.Snapshot(); err == nil {
		vm.Environment = cfg.EnvironmentLabel
		vm.PrimaryEndpoint = cfg.PrimaryEndpoint
		vm.SecondaryEndpoint = cfg.SecondaryEndpoint
	}

	for _, p := range d.panels {
		st := p.loader.State()
		health, recomputed := p.memo.Project(st.IsLoading, st.Error)
		if recomputed {
			d.stats.Projections++
		}
		vm.Panels = append(vm.Panels, newPanel(p.src, st, health))
	}

	return vm
}
