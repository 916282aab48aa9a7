package resolve

import (
	"context"
	"sync"

	"rigup/internal/catalog"
)

// DefaultWorkers bounds concurrent resolutions so index hosts and the
// GitHub API are not hammered.
const DefaultWorkers = 4

// EntryResolver is the single-entry resolution contract ResolveAll fans
// out over. *Resolver satisfies it.
type EntryResolver interface {
	Resolve(ctx context.Context, entry catalog.Entry) (Resolution, error)
}

// Update is one streaming resolution outcome.
type Update struct {
	EntryID    string
	Resolution Resolution
	Err        error
}

// ResolveAll resolves entries through a bounded worker pool, invoking report
// as each entry finishes. Failures are entry-local: one entry's error never
// stops the others. report may be called from multiple goroutines; callers
// synchronize. Blocks until every entry reported or ctx is cancelled.
func ResolveAll(ctx context.Context, r EntryResolver, entries []catalog.Entry, workers int, report func(Update)) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers == 0 {
		return
	}

	work := make(chan catalog.Entry)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for entry := range work {
				res, err := r.Resolve(ctx, entry)
				report(Update{EntryID: entry.ID, Resolution: res, Err: err})
			}
		}()
	}

	for _, entry := range entries {
		select {
		case work <- entry:
		case <-ctx.Done():
			// Unqueued entries report cancellation so no entry is left
			// silently pending.
			report(Update{EntryID: entry.ID, Err: ctx.Err()})
		}
	}
	close(work)
	wg.Wait()
}

var _ EntryResolver = (*Resolver)(nil)
