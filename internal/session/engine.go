package session

import (
	"context"
	"errors"
	"sync"

	"rigup/internal/catalog"
	"rigup/internal/execute"
	"rigup/internal/plan"
	"rigup/internal/resolve"
	"rigup/internal/sysinfo"
)

// EntryResolver turns a catalog entry into a concrete resolution.
type EntryResolver = resolve.EntryResolver

// PlanRunner executes one entry's action plan.
type PlanRunner interface {
	Run(ctx context.Context, p plan.Plan, dryRun bool) execute.Report
}

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// ErrRunInFlight is returned when a resolve or install run is requested
// while another run is still active.
var ErrRunInFlight = errors.New("another run is in flight")

// DefaultWorkers bounds entry-level parallelism for both phases.
const DefaultWorkers = 4

// Engine drives resolution and installation for the session's selected
// entries. Each phase runs a bounded worker pool; all state flows through
// the Session store. ResolveSelected and InstallSelected block until the
// run finishes; interactive callers run them from their own goroutine and
// use Cancel to stop a run early.
type Engine struct {
	Catalog  catalog.Catalog
	Profile  sysinfo.Profile
	Session  *Session
	Resolver EntryResolver
	Runner   PlanRunner
	Workers  int
	PlanOpts plan.Options
	Logger   Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewEngine wires an engine with real collaborators.
func NewEngine(cat catalog.Catalog, profile sysinfo.Profile, sess *Session) *Engine {
	return &Engine{
		Catalog:  cat,
		Profile:  profile,
		Session:  sess,
		Resolver: resolve.New(profile),
		Runner:   execute.New(),
		Workers:  DefaultWorkers,
		Logger:   noopLogger{},
	}
}

func (e *Engine) logf(format string, v ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, v...)
	}
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return DefaultWorkers
}

// begin claims the engine for one run and derives a cancellable context.
func (e *Engine) begin(ctx context.Context) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return nil, ErrRunInFlight
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	return runCtx, nil
}

func (e *Engine) end() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Cancel stops the in-flight run, if any. Workers observe the cancelled
// context and finish promptly; entries they never reached are moved to
// cancelled once the pool drains.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// ResolveSelected resolves every selected entry through a worker pool,
// streaming each outcome into the session as it lands. Blocks until the
// pool drains; entry failures are recorded per entry, never returned.
func (e *Engine) ResolveSelected(ctx context.Context) error {
	runCtx, err := e.begin(ctx)
	if err != nil {
		return err
	}
	defer e.end()

	entries := e.claimForResolve(e.Session.SelectedIDs())
	e.resolvePool(runCtx, entries)
	e.Session.CancelInFlight()
	return runCtx.Err()
}

// claimForResolve marks entries resolving and returns those claimed.
// Entries already in flight are skipped, which keeps resolution at most
// once per entry at a time.
func (e *Engine) claimForResolve(ids []string) []catalog.Entry {
	var entries []catalog.Entry
	for _, id := range ids {
		entry, ok := e.Catalog.Get(id)
		if !ok {
			continue
		}
		if e.Session.BeginResolve(id) {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (e *Engine) resolvePool(ctx context.Context, entries []catalog.Entry) {
	resolve.ResolveAll(ctx, e.Resolver, entries, e.workers(), func(u resolve.Update) {
		if u.Err != nil {
			e.logf("resolve %s: %v", u.EntryID, u.Err)
		} else {
			e.logf("resolve %s: %s %s", u.EntryID, u.Resolution.Version, u.Resolution.Display())
		}
		e.Session.FinishResolve(u.EntryID, u.Resolution, u.Err)
	})
}

// InstallSelected installs every selected entry: entries without a current
// resolution are resolved first, then each resolved entry's plan is built
// and executed through a worker pool. Blocks until the pool drains.
func (e *Engine) InstallSelected(ctx context.Context) error {
	runCtx, err := e.begin(ctx)
	if err != nil {
		return err
	}
	defer e.end()

	ids := e.Session.SelectedIDs()

	// Resolve whatever is missing so install never runs unresolved. A
	// finished entry re-resolves rather than reusing its old resolution.
	var unresolved []catalog.Entry
	for _, id := range ids {
		if st, _ := e.Session.Status(id); st == StatusResolved {
			continue
		}
		if entry, ok := e.Catalog.Get(id); ok && e.Session.BeginResolve(id) {
			unresolved = append(unresolved, entry)
		}
	}
	e.resolvePool(runCtx, unresolved)

	if runCtx.Err() == nil {
		e.installPool(runCtx, ids)
	}
	e.Session.CancelInFlight()
	return runCtx.Err()
}

func (e *Engine) installPool(ctx context.Context, ids []string) {
	feed := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < e.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range feed {
				e.installOne(ctx, id)
			}
		}()
	}
	for _, id := range ids {
		select {
		case feed <- id:
		case <-ctx.Done():
			close(feed)
			wg.Wait()
			return
		}
	}
	close(feed)
	wg.Wait()
}

func (e *Engine) installOne(ctx context.Context, id string) {
	res, ok := e.Session.Resolution(id)
	if !ok {
		// Resolution failed earlier this run; its status already says so.
		return
	}
	entry, ok := e.Catalog.Get(id)
	if !ok {
		return
	}
	if !e.Session.BeginInstall(id) {
		return
	}

	p := plan.Build(entry, e.Profile, res, e.PlanOpts)
	report := e.Runner.Run(ctx, p, e.Session.DryRun())

	for _, r := range report.Results {
		e.logf("install %s: [%s] %s: %s", id, r.Outcome, r.Action.Kind, r.Message)
	}
	e.Session.FinishInstall(id, report.Err, report.Cancelled())
}
